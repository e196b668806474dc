package models

import "time"

type Employee struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	LinkedUserID *uint     `gorm:"index" json:"linked_user_id"`
	LinkedUser   *User     `gorm:"foreignKey:LinkedUserID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LinkedTo reports whether the employee is linked to the given user.
func (e Employee) LinkedTo(userID uint) bool {
	return e.LinkedUserID != nil && *e.LinkedUserID == userID
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionMarkAttendance = "MARK_ATTENDANCE"
	ActionExportCSV      = "EXPORT_CSV"
	ActionLinkEmployee   = "LINK_EMPLOYEE"
	ActionDeleteEmployee = "DELETE_EMPLOYEE"
	ActionResetPassword  = "RESET_PASSWORD"
)

type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Action    string         `gorm:"size:64;not null;index" json:"action"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Timestamp time.Time      `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
	Details   datatypes.JSON `json:"details"`
}

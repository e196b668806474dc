package models

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusLate    AttendanceStatus = "Late"
	// StatusAbsent is never stored; it means no record exists for the day.
	StatusAbsent AttendanceStatus = "Absent"
)

func ParseStatus(value string) (AttendanceStatus, bool) {
	switch AttendanceStatus(value) {
	case StatusPresent, StatusLate:
		return AttendanceStatus(value), true
	}
	return "", false
}

type Attendance struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	EmployeeID  uint             `gorm:"not null;uniqueIndex:uk_attendance_employee_date,priority:1" json:"employee_id"`
	Employee    *Employee        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DateBS      string           `gorm:"column:date_bs;size:10;not null;uniqueIndex:uk_attendance_employee_date,priority:2;index" json:"date_bs"`
	DateAD      string           `gorm:"column:date_ad;size:10;not null" json:"date_ad"`
	TimeISO     string           `gorm:"column:time_iso;size:32;not null" json:"time_iso"`
	TimeDisplay string           `gorm:"size:32;not null" json:"time_display"`
	Status      AttendanceStatus `gorm:"size:20;not null" json:"status"`
	MarkedBy    *uint            `json:"marked_by"`
	Marker      *User            `gorm:"foreignKey:MarkedBy" json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (Attendance) TableName() string { return "attendance" }

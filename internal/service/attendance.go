package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/report"
)

const (
	dateADLayout      = "2006-01-02"
	timeISOLayout     = "15:04:05"
	timeDisplayLayout = "3:04:05 PM"
	maxTimeFieldLen   = 32
)

type AttendanceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{db: db, now: time.Now}
}

// WithClock replaces the clock used for defaulted date and time fields.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// MarkInput carries a mark request. Empty optional fields are filled from the clock.
type MarkInput struct {
	EmployeeID  int64
	DateBS      string
	DateAD      string
	TimeISO     string
	TimeDisplay string
	Status      string
}

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// Mark records attendance for one employee on one business date, replacing any
// earlier record for the same pair.
func (s *AttendanceService) Mark(ctx context.Context, actor Actor, in MarkInput) (uint, error) {
	if in.EmployeeID <= 0 {
		return 0, apperr.Validation("Valid employee_id required")
	}
	if !IsBSDate(in.DateBS) {
		return 0, apperr.Validation("date_bs must be YYYY-MM-DD")
	}
	if in.DateAD != "" && !IsBSDate(in.DateAD) {
		return 0, apperr.Validation("date_ad must be YYYY-MM-DD")
	}
	if len(in.TimeISO) > maxTimeFieldLen || len(in.TimeDisplay) > maxTimeFieldLen {
		return 0, apperr.Validation("time fields too long")
	}
	status := models.StatusPresent
	if in.Status != "" {
		parsed, ok := models.ParseStatus(in.Status)
		if !ok {
			return 0, apperr.Validation("status must be Present or Late")
		}
		status = parsed
	}

	employeeID := uint(in.EmployeeID)
	var employee models.Employee
	err := s.db.WithContext(ctx).First(&employee, employeeID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if actor.Is(models.RoleEmployee) {
			return 0, apperr.Forbidden()
		}
		return 0, apperr.NotFound("Employee not found")
	case err != nil:
		return 0, apperr.Internal("load employee", err)
	}
	if actor.Is(models.RoleEmployee) && !employee.LinkedTo(actor.ID) {
		return 0, apperr.Forbidden()
	}

	now := s.now()
	record := models.Attendance{
		EmployeeID:  employeeID,
		DateBS:      in.DateBS,
		DateAD:      orDefault(in.DateAD, now.Format(dateADLayout)),
		TimeISO:     orDefault(in.TimeISO, now.Format(timeISOLayout)),
		TimeDisplay: orDefault(in.TimeDisplay, now.Format(timeDisplayLayout)),
		Status:      status,
		MarkedBy:    actor.ref(),
		CreatedAt:   now,
	}

	var stored models.Attendance
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "date_bs"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"date_ad", "time_iso", "time_display", "status", "marked_by", "created_at",
			}),
		}
		if err := tx.Clauses(upsert).Create(&record).Error; err != nil {
			return apperr.Internal("upsert attendance", err)
		}
		if err := tx.Select("id").Where("employee_id = ? AND date_bs = ?", employeeID, in.DateBS).
			First(&stored).Error; err != nil {
			return apperr.Internal("reload attendance", err)
		}
		return appendAudit(tx, models.ActionMarkAttendance, actor.ref(), map[string]any{
			"employee_id": employeeID,
			"date_bs":     in.DateBS,
		})
	})
	if err != nil {
		return 0, err
	}
	logger.Debug("attendance.marked", "id", stored.ID, "employee_id", employeeID, "date_bs", in.DateBS, "actor_id", actor.ID)
	return stored.ID, nil
}

// List returns records ordered by id, optionally for a single business date.
func (s *AttendanceService) List(ctx context.Context, dateBS string) ([]models.Attendance, error) {
	if dateBS != "" && !IsBSDate(dateBS) {
		return nil, apperr.Validation("date_bs must be YYYY-MM-DD")
	}
	query := s.db.WithContext(ctx).Order("id asc")
	if dateBS != "" {
		query = query.Where("date_bs = ?", dateBS)
	}
	var records []models.Attendance
	if err := query.Find(&records).Error; err != nil {
		return nil, apperr.Internal("list attendance", err)
	}
	return records, nil
}

// DaySummary counts attendance for one business date. Absent is derived from
// employees without a record.
type DaySummary struct {
	DateBS    string `json:"date_bs"`
	Employees int64  `json:"employees"`
	Present   int64  `json:"present"`
	Late      int64  `json:"late"`
	Absent    int64  `json:"absent"`
}

func (s *AttendanceService) Summary(ctx context.Context, dateBS string) (DaySummary, error) {
	summary := DaySummary{DateBS: dateBS}
	if !IsBSDate(dateBS) {
		return summary, apperr.Validation("date_bs must be YYYY-MM-DD")
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Employee{}).Count(&summary.Employees).Error; err != nil {
		return summary, apperr.Internal("count employees", err)
	}
	var counts []struct {
		Status models.AttendanceStatus
		Total  int64
	}
	err := db.Model(&models.Attendance{}).
		Select("status, COUNT(*) AS total").
		Where("date_bs = ?", dateBS).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return summary, apperr.Internal("count attendance", err)
	}
	for _, c := range counts {
		switch c.Status {
		case models.StatusPresent:
			summary.Present = c.Total
		case models.StatusLate:
			summary.Late = c.Total
		}
	}
	summary.Absent = max(summary.Employees-summary.Present-summary.Late, 0)
	return summary, nil
}

// Export renders the attendance table for download and records the export.
func (s *AttendanceService) Export(ctx context.Context, actor Actor, dateBS string, format report.Format) (*Export, error) {
	if !actor.Is(models.RoleAdmin, models.RoleManager) {
		return nil, apperr.Forbidden()
	}
	records, err := s.List(ctx, dateBS)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRows(ctx, records)
	if err != nil {
		return nil, err
	}
	body, err := report.Render(format, rows)
	if err != nil {
		return nil, apperr.Internal("render export", err)
	}

	var businessDate any
	if dateBS != "" {
		businessDate = dateBS
	}
	if err := appendAudit(s.db.WithContext(ctx), models.ActionExportCSV, actor.ref(), map[string]any{
		"business_date": businessDate,
		"format":        string(format),
	}); err != nil {
		return nil, err
	}

	return &Export{
		Filename:    format.Filename(dateBS),
		ContentType: format.ContentType(),
		Body:        body,
		Rows:        len(rows),
	}, nil
}

func (s *AttendanceService) reportRows(ctx context.Context, records []models.Attendance) ([]report.Row, error) {
	employeeIDs := make([]uint, 0, len(records))
	markerIDs := make([]uint, 0, len(records))
	for _, r := range records {
		employeeIDs = append(employeeIDs, r.EmployeeID)
		if r.MarkedBy != nil {
			markerIDs = append(markerIDs, *r.MarkedBy)
		}
	}

	employeeNames := map[uint]string{}
	if len(employeeIDs) > 0 {
		var employees []models.Employee
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", employeeIDs).Find(&employees).Error; err != nil {
			return nil, apperr.Internal("load employee names", err)
		}
		for _, e := range employees {
			employeeNames[e.ID] = e.Name
		}
	}
	markerNames := map[uint]string{}
	if len(markerIDs) > 0 {
		var users []models.User
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", markerIDs).Find(&users).Error; err != nil {
			return nil, apperr.Internal("load marker names", err)
		}
		for _, u := range users {
			markerNames[u.ID] = u.Name
		}
	}

	rows := make([]report.Row, 0, len(records))
	for _, r := range records {
		name, ok := employeeNames[r.EmployeeID]
		if !ok {
			name = strconv.FormatUint(uint64(r.EmployeeID), 10)
		}
		markedBy := ""
		if r.MarkedBy != nil {
			markedBy = markerNames[*r.MarkedBy]
		}
		rows = append(rows, report.Row{
			Name:     name,
			DateBS:   r.DateBS,
			Time:     r.TimeDisplay,
			Status:   string(r.Status),
			MarkedBy: markedBy,
		})
	}
	return rows, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/dbtest"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/report"
)

var fixedNow = time.Date(2025, 4, 14, 10, 5, 0, 0, time.UTC)

func newLedger(f fixture) *AttendanceService {
	return NewAttendanceService(f.db).WithClock(func() time.Time { return fixedNow })
}

func TestMarkThenList(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	employee := dbtest.CreateEmployee(t, f.db, "Mango", nil)

	id, err := ledger.Mark(ctx, f.manager, MarkInput{EmployeeID: int64(employee.ID), DateBS: "2082-01-01"})
	require.NoError(t, err)

	records, err := ledger.List(ctx, "2082-01-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, employee.ID, got.EmployeeID)
	assert.Equal(t, "2025-04-14", got.DateAD)
	assert.Equal(t, "10:05:00", got.TimeISO)
	assert.Equal(t, "10:05:00 AM", got.TimeDisplay)
	assert.Equal(t, models.StatusPresent, got.Status)
	require.NotNil(t, got.MarkedBy)
	assert.Equal(t, f.manager.ID, *got.MarkedBy)

	other, err := ledger.List(ctx, "2082-01-02")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMarkReplacesSameDay(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	employee := dbtest.CreateEmployee(t, f.db, "Mango", nil)

	_, err := ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(employee.ID), DateBS: "2082-01-01", TimeDisplay: "9:55:00 AM"})
	require.NoError(t, err)
	id, err := ledger.Mark(ctx, f.manager, MarkInput{
		EmployeeID: int64(employee.ID), DateBS: "2082-01-01", TimeDisplay: "10:20:00 AM", Status: "Late",
	})
	require.NoError(t, err)

	records, err := ledger.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, models.StatusLate, records[0].Status)
	assert.Equal(t, "10:20:00 AM", records[0].TimeDisplay)
	assert.Equal(t, f.manager.ID, *records[0].MarkedBy)

	assert.Len(t, auditLogs(t, f.db, models.ActionMarkAttendance), 2)
}

func TestMarkValidation(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	employee := dbtest.CreateEmployee(t, f.db, "Mango", nil)

	for name, in := range map[string]MarkInput{
		"zero employee":  {EmployeeID: 0, DateBS: "2082-01-01"},
		"bad date":       {EmployeeID: int64(employee.ID), DateBS: "2082/01/01"},
		"short date":     {EmployeeID: int64(employee.ID), DateBS: "82-01-01"},
		"absent status":  {EmployeeID: int64(employee.ID), DateBS: "2082-01-01", Status: "Absent"},
		"unknown status": {EmployeeID: int64(employee.ID), DateBS: "2082-01-01", Status: "present"},
		"bad date_ad":    {EmployeeID: int64(employee.ID), DateBS: "2082-01-01", DateAD: "yesterday"},
		"long time":      {EmployeeID: int64(employee.ID), DateBS: "2082-01-01", TimeISO: strings.Repeat("1", 33)},
	} {
		_, err := ledger.Mark(ctx, f.admin, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%s: %v", name, err)
	}
	assert.Empty(t, auditLogs(t, f.db, models.ActionMarkAttendance))
}

func TestEmployeeMayOnlyMarkLinkedEmployee(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	own := dbtest.CreateEmployee(t, f.db, "Mango", ptr(f.employee.ID))
	other := dbtest.CreateEmployee(t, f.db, "Sita", nil)

	_, err := ledger.Mark(ctx, f.employee, MarkInput{EmployeeID: int64(other.ID), DateBS: "2082-01-01"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = ledger.Mark(ctx, f.employee, MarkInput{EmployeeID: 9999, DateBS: "2082-01-01"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: 9999, DateBS: "2082-01-01"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = ledger.Mark(ctx, f.employee, MarkInput{EmployeeID: int64(own.ID), DateBS: "2082-01-01"})
	require.NoError(t, err)

	records, err := ledger.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, own.ID, records[0].EmployeeID)
}

func TestListRejectsMalformedDate(t *testing.T) {
	_, err := newLedger(newFixture(t)).List(context.Background(), "2082-1-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	mango := dbtest.CreateEmployee(t, f.db, "Mango", nil)
	sita := dbtest.CreateEmployee(t, f.db, "Rai, Sita", nil)

	_, err := ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(mango.ID), DateBS: "2082-01-01", TimeDisplay: "10:05:00 AM"})
	require.NoError(t, err)
	_, err = ledger.Mark(ctx, f.manager, MarkInput{EmployeeID: int64(sita.ID), DateBS: "2082-01-01", TimeDisplay: "10:20:00 AM", Status: "Late"})
	require.NoError(t, err)
	_, err = ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(mango.ID), DateBS: "2082-01-02"})
	require.NoError(t, err)

	_, err = ledger.Export(ctx, f.employee, "2082-01-01", report.FormatCSV)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	out, err := ledger.Export(ctx, f.manager, "2082-01-01", report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "attendance_2082-01-01.csv", out.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", out.ContentType)
	assert.Equal(t, 2, out.Rows)
	assert.Equal(t,
		"Name,Date (BS),Time,Status,Marked By\n"+
			"Mango,2082-01-01,10:05:00 AM,Present,Admin\n"+
			"\"Rai, Sita\",2082-01-01,10:20:00 AM,Late,Manny",
		string(out.Body))

	all, err := ledger.Export(ctx, f.admin, "", report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "attendance_all.csv", all.Filename)
	assert.Equal(t, 3, all.Rows)

	logs := auditLogs(t, f.db, models.ActionExportCSV)
	require.Len(t, logs, 2)
	assert.JSONEq(t, `{"business_date":"2082-01-01","format":"csv"}`, string(logs[0].Details))
	assert.JSONEq(t, `{"business_date":null,"format":"csv"}`, string(logs[1].Details))
}

func TestExportLeavesMarkerBlankForSystemRows(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	employee := dbtest.CreateEmployee(t, f.db, "Mango", nil)
	require.NoError(t, f.db.Create(&models.Attendance{
		EmployeeID: employee.ID, DateBS: "2082-01-01", DateAD: "2025-04-14",
		TimeISO: "10:00:00", TimeDisplay: "10:00:00 AM", Status: models.StatusPresent,
	}).Error)

	out, err := ledger.Export(ctx, f.admin, "2082-01-01", report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Name,Date (BS),Time,Status,Marked By\nMango,2082-01-01,10:00:00 AM,Present,", string(out.Body))
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	employee := dbtest.CreateEmployee(t, f.db, "Mango", nil)
	_, err := ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(employee.ID), DateBS: "2082-01-01"})
	require.NoError(t, err)

	out, err := ledger.Export(ctx, f.admin, "2082-01-01", report.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "attendance_2082-01-01.xlsx", out.Filename)
	assert.NotEmpty(t, out.Body)

	logs := auditLogs(t, f.db, models.ActionExportCSV)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"business_date":"2082-01-01","format":"xlsx"}`, string(logs[0].Details))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ledger := newLedger(f)
	ctx := context.Background()
	mango := dbtest.CreateEmployee(t, f.db, "Mango", nil)
	sita := dbtest.CreateEmployee(t, f.db, "Sita", nil)
	dbtest.CreateEmployee(t, f.db, "Hari", nil)

	_, err := ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(mango.ID), DateBS: "2082-01-01"})
	require.NoError(t, err)
	_, err = ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(sita.ID), DateBS: "2082-01-01", Status: "Late"})
	require.NoError(t, err)
	_, err = ledger.Mark(ctx, f.admin, MarkInput{EmployeeID: int64(sita.ID), DateBS: "2082-01-02"})
	require.NoError(t, err)

	summary, err := ledger.Summary(ctx, "2082-01-01")
	require.NoError(t, err)
	assert.Equal(t, DaySummary{DateBS: "2082-01-01", Employees: 3, Present: 1, Late: 1, Absent: 1}, summary)

	_, err = ledger.Summary(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestConcurrentMarksKeepOneRow(t *testing.T) {
	f := seedFixture(t, dbtest.OpenFile(t))
	ledger := newLedger(f)
	ctx := context.Background()
	employee := dbtest.CreateEmployee(t, f.db, "Mango", nil)

	const marks = 8
	ids := make([]uint, marks)
	errs := make([]error, marks)
	var wg sync.WaitGroup
	for i := 0; i < marks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := f.admin
			if i%2 == 1 {
				actor = f.manager
			}
			ids[i], errs[i] = ledger.Mark(ctx, actor, MarkInput{
				EmployeeID:  int64(employee.ID),
				DateBS:      "2082-01-01",
				TimeDisplay: fmt.Sprintf("10:%02d:00 AM", i),
			})
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i], "mark %d", i)
		assert.Equal(t, ids[0], ids[i], "mark %d", i)
	}
	records, err := ledger.List(ctx, "2082-01-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ids[0], records[0].ID)
	assert.Len(t, auditLogs(t, f.db, models.ActionMarkAttendance), marks)
}

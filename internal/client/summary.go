package client

import "github.com/MANGOpali/attendance-backend/internal/models"

type DaySummary struct {
	DateBS    string `json:"date_bs"`
	Employees int64  `json:"employees"`
	Present   int64  `json:"present"`
	Late      int64  `json:"late"`
	Absent    int64  `json:"absent"`
}

// Summarize counts one day's attendance from already fetched lists. Employees
// without a record for dateBS are absent.
func Summarize(dateBS string, employees []models.Employee, records []models.Attendance) DaySummary {
	byEmployee := make(map[uint]models.AttendanceStatus, len(records))
	for _, r := range records {
		if r.DateBS == dateBS {
			byEmployee[r.EmployeeID] = r.Status
		}
	}

	summary := DaySummary{DateBS: dateBS, Employees: int64(len(employees))}
	for _, e := range employees {
		status, ok := byEmployee[e.ID]
		if !ok {
			continue
		}
		if status == models.StatusPresent {
			summary.Present++
		} else {
			summary.Late++
		}
	}
	summary.Absent = summary.Employees - summary.Present - summary.Late
	return summary
}

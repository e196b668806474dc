// Package report renders attendance rows as downloadable files.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is attendance_<date>.<ext>, or attendance_all when no date is given.
func (f Format) Filename(dateBS string) string {
	if dateBS == "" {
		dateBS = "all"
	}
	return fmt.Sprintf("attendance_%s.%s", dateBS, f)
}

var Header = []string{"Name", "Date (BS)", "Time", "Status", "Marked By"}

type Row struct {
	Name     string
	DateBS   string
	Time     string
	Status   string
	MarkedBy string
}

func (r Row) fields() []string {
	return []string{r.Name, r.DateBS, r.Time, r.Status, r.MarkedBy}
}

func Render(format Format, rows []Row) ([]byte, error) {
	if format == FormatXLSX {
		return XLSX(rows)
	}
	return []byte(CSV(rows)), nil
}

// CSV writes the header line followed by one line per row. Lines are joined
// with "\n" and the last row has no trailing newline.
func CSV(rows []Row) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	b.WriteByte('\n')
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row.fields() {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteField(field))
		}
	}
	return b.String()
}

func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

const sheetName = "Attendance"

func XLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{row.Name, row.DateBS, row.Time, row.Status, row.MarkedBy}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "E", 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

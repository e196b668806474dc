package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MANGOpali/attendance-backend/internal/models"
)

func TestParseTimeToMinutes(t *testing.T) {
	tests := map[string]int{
		"10:15 AM":    615,
		"10:05:00 AM": 605,
		"12:00 AM":    0,
		"12:30 PM":    750,
		"1:05 pm":     785,
		"09:30":       570,
		" 18:45 ":     1125,
		"":            0,
		"noon":        0,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseTimeToMinutes(input), input)
	}
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, models.StatusPresent, ClassifyStatus("10:15 AM"))
	assert.Equal(t, models.StatusPresent, ClassifyStatus("9:59 AM"))
	assert.Equal(t, models.StatusLate, ClassifyStatus("10:16 AM"))
	assert.Equal(t, models.StatusLate, ClassifyStatus("12:01 PM"))
	assert.Equal(t, models.StatusPresent, ClassifyStatus("garbage"))
}

func TestFormat12Hour(t *testing.T) {
	assert.Equal(t, "9:05 AM", Format12Hour(time.Date(2025, 4, 14, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, "12:00 PM", Format12Hour(time.Date(2025, 4, 14, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12:30 AM", Format12Hour(time.Date(2025, 4, 14, 0, 30, 0, 0, time.UTC)))
}

func TestReadingOn(t *testing.T) {
	day := time.Date(2025, 4, 14, 18, 40, 7, 0, time.UTC)

	tests := map[string]time.Time{
		"10:30 AM":   time.Date(2025, 4, 14, 10, 30, 0, 0, time.UTC),
		"12:05 am":   time.Date(2025, 4, 14, 0, 5, 0, 0, time.UTC),
		"1:02:03 PM": time.Date(2025, 4, 14, 13, 2, 3, 0, time.UTC),
		"23:59":      time.Date(2025, 4, 14, 23, 59, 0, 0, time.UTC),
		" 09:15:30 ": time.Date(2025, 4, 14, 9, 15, 30, 0, time.UTC),
	}
	for in, want := range tests {
		got, err := ReadingOn(in, day)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "soon", "25:00", "10:75 AM"} {
		_, err := ReadingOn(in, day)
		assert.Error(t, err, in)
	}
}

func TestNewMarkRequestSharesOneReading(t *testing.T) {
	at := time.Date(2025, 4, 14, 10, 30, 0, 0, time.UTC)
	req := NewMarkRequest(3, "2082-01-01", at)

	assert.Equal(t, MarkRequest{
		EmployeeID:  3,
		DateBS:      "2082-01-01",
		DateAD:      "2025-04-14",
		TimeISO:     "10:30:00",
		TimeDisplay: "10:30 AM",
	}, req)
	assert.Equal(t, ParseTimeToMinutes(req.TimeISO), ParseTimeToMinutes(req.TimeDisplay))
}

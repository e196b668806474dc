package client

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MANGOpali/attendance-backend/internal/models"
)

// LateAfter is the last on-time clock reading, 10:15 in minutes after midnight.
const LateAfter = 10*60 + 15

var (
	meridiemPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp][Mm])`)
	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?`)
)

// parseClock finds "H:MM[:SS] AM/PM" or a bare 24h "HH:MM[:SS]" in s and
// returns it on a 24h clock.
func parseClock(s string) (hour, minute, second int, ok bool) {
	s = strings.TrimSpace(s)
	if m := meridiemPattern.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		second, _ = strconv.Atoi(m[3])
		switch strings.ToUpper(m[4]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
		return hour, minute, second, true
	}
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		second, _ = strconv.Atoi(m[3])
		return hour, minute, second, true
	}
	return 0, 0, 0, false
}

// ParseTimeToMinutes reads a clock reading anywhere in s as minutes after
// midnight. Unparseable input counts as midnight.
func ParseTimeToMinutes(s string) int {
	hour, minute, _, _ := parseClock(s)
	return hour*60 + minute
}

// ReadingOn places the clock reading s on day's calendar date, in day's
// location.
func ReadingOn(s string, day time.Time) (time.Time, error) {
	hour, minute, second, ok := parseClock(s)
	if !ok || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("invalid time %q, want e.g. \"10:05 AM\"", s)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, second, 0, day.Location()), nil
}

// ClassifyStatus marks a clock reading at or before the cutoff as Present.
func ClassifyStatus(timeDisplay string) models.AttendanceStatus {
	if ParseTimeToMinutes(timeDisplay) <= LateAfter {
		return models.StatusPresent
	}
	return models.StatusLate
}

// Format12Hour renders t as "H:MM AM".
func Format12Hour(t time.Time) string {
	return t.Format("3:04 PM")
}

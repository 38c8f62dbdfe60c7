package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// clockPattern accepts "HH:MM AM/PM" route times.
var clockPattern = regexp.MustCompile(`(?i)^([0-1]?[0-9]|2[0-3]):[0-5][0-9] (AM|PM)$`)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseDateTime parses "YYYY-MM-DD HH:MM:SS" in local timezone.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDateTime, strings.TrimSpace(s), time.Local)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

// IsClockTime reports whether s is a valid "HH:MM AM/PM" value.
func IsClockTime(s string) bool {
	return clockPattern.MatchString(strings.TrimSpace(s))
}

// ClockMinutes converts "HH:MM AM/PM" to minutes since midnight.
// 12 AM is midnight and 12 PM is noon. Anything unparseable, including "N/A",
// yields +Inf so it orders after every real time.
func ClockMinutes(s string) float64 {
	s = strings.TrimSpace(s)
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return math.Inf(1)
	}
	hm := strings.SplitN(parts[0], ":", 2)
	if len(hm) != 2 {
		return math.Inf(1)
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 23 {
		return math.Inf(1)
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 {
		return math.Inf(1)
	}
	switch strings.ToUpper(parts[1]) {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h < 12 {
			h += 12
		}
	default:
		return math.Inf(1)
	}
	return float64(h*60 + m)
}

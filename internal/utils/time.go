package utils

import (
	"time"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// LogicalDate shifts now by delta in loc and returns the calendar date (YYYY-MM-DD).
// Days move the wall-clock date; hours and minutes are then added as elapsed time.
func LogicalDate(now time.Time, loc *time.Location, delta config.Delta) string {
	if loc == nil {
		loc = time.Local
	}
	days, hours, minutes := delta.Parts()
	shifted := now.In(loc).AddDate(0, 0, days).
		Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
	return shifted.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateFormat, s)
}

package util

import "time"

const (
	DateTimeFormat = "2006-01-02 15:04:05"
	ISO8601Format  = "2006-01-02T15:04:05Z"

	// CheckInDateFormat is the layout used in check-in validation
	// messages shown to scanning operators (dd/MM/yyyy - hh:mm).
	CheckInDateFormat = "02/01/2006 - 03:04"
)

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(DateTimeFormat, s)
}

func TimeToISO8601Str(t time.Time) string {
	return t.Format(ISO8601Format)
}

func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(ISO8601Format, s)
}

// FormatCheckInBound renders an optional check-in window bound in the
// given location. An absent bound renders as "..".
func FormatCheckInBound(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ".."
	}
	return t.In(loc).Format(CheckInDateFormat)
}

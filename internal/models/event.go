package models

import "time"

type Event struct {
	ID          int64  `json:"id"`
	ShortName   string `json:"short_name"`
	DisplayName string `json:"display_name"`
	// PrivateKey is the per-event secret every ticket code is derived
	// from. It never leaves the server side.
	PrivateKey string `json:"-"`
	TimeZone   string `json:"time_zone"`
	Currency   string `json:"currency"`
}

// Location resolves the event's IANA time zone, falling back to UTC
// when the stored zone name cannot be loaded.
func (e *Event) Location() *time.Location {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

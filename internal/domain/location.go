package domain

import (
	"fmt"
	"strings"
	"time"
)

// LocationCode is a canonical 3-letter city/airport identifier (IATA style).
type LocationCode string

// ParseLocationCode accepts exactly three ASCII letters and upper-cases them.
func ParseLocationCode(s string) (LocationCode, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return "", false
		}
	}
	return LocationCode(strings.ToUpper(s)), true
}

func (c LocationCode) String() string { return string(c) }

// CalendarDate is a YYYY-MM-DD date string.
type CalendarDate string

const DateLayout = "2006-01-02"

func DateOf(t time.Time) CalendarDate { return CalendarDate(t.Format(DateLayout)) }

func (d CalendarDate) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar date %q: %w", string(d), err)
	}
	return t, nil
}

func (d CalendarDate) String() string { return string(d) }

// Before reports whether d is strictly earlier than o. Both must be canonical.
func (d CalendarDate) Before(o CalendarDate) bool { return string(d) < string(o) }

type GeoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is one record from the primary location-lookup provider.
type Location struct {
	IATACode string
	ID       string
	Name     string
	SubType  string // CITY | AIRPORT
	Geo      *GeoCode
}

// Code prefers the explicit IATA field and falls back to the generic id.
func (l Location) Code() string {
	if l.IATACode != "" {
		return l.IATACode
	}
	return l.ID
}

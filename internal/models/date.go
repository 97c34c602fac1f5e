package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted textual date formats, in order of preference.
// "Jan 2, 2006" is the format used by the incident dataset.
var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
}

// Date is a plain calendar date. The zero value means "missing".
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// ParseDate parses s with the accepted layouts. The second result is false
// when s does not hold a recognizable date.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
		}
	}
	return Date{}, false
}

// Valid reports whether the date is present.
func (d Date) Valid() bool {
	return d.Year != 0
}

// String formats the date as YYYY-MM-DD, or "" when missing.
func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as "YYYY-MM-DD" or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

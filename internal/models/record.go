package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record represents one incident row. Missing numeric values are NaN and a
// missing date is the zero Date.
type Record struct {
	Case              string  `json:"case"`
	Location          string  `json:"location"`
	Date              Date    `json:"date"`
	Year              int     `json:"year,omitempty"` // explicit year column, used when Date is missing
	Summary           string  `json:"summary,omitempty"`
	Fatalities        float64 `json:"fatalities"`
	Injured           float64 `json:"injured"`
	TotalVictims      float64 `json:"total_victims"`
	AgeOfShooter      float64 `json:"age_of_shooter"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	LocationCategory  string  `json:"location_category"`
	Type              string  `json:"type"`
	Race              string  `json:"race"`
	Gender            string  `json:"gender"`
	PriorMentalHealth string  `json:"prior_signs_mental_health_issues"`
	WeaponsLegal      string  `json:"weapons_obtained_legally"`
	WeaponType        string  `json:"weapon_type,omitempty"`
}

// Missing is the value stored in numeric fields that failed coercion.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is a missing numeric value
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// YearValue returns the record's year, preferring the parsed date.
func (r *Record) YearValue() (int, bool) {
	if r.Date.Valid() {
		return r.Date.Year, true
	}
	if r.Year != 0 {
		return r.Year, true
	}
	return 0, false
}

// Number returns the numeric value of a quantitative attribute. For the date
// attribute the value is the year. The second result is false when the value
// is missing or the attribute is not numeric.
func (r *Record) Number(attr string) (float64, bool) {
	var v float64
	switch attr {
	case AttrDate, AttrYear:
		y, ok := r.YearValue()
		return float64(y), ok
	case AttrFatalities:
		v = r.Fatalities
	case AttrInjured:
		v = r.Injured
	case AttrTotalVictims:
		v = r.TotalVictims
	case AttrAgeOfShooter:
		v = r.AgeOfShooter
	case AttrLatitude:
		v = r.Latitude
	case AttrLongitude:
		v = r.Longitude
	default:
		return 0, false
	}
	if IsMissing(v) {
		return 0, false
	}
	return v, true
}

// Category returns the value of a nominal attribute
func (r *Record) Category(attr string) string {
	switch attr {
	case AttrLocationCategory:
		return r.LocationCategory
	case AttrType:
		return r.Type
	case AttrRace:
		return r.Race
	case AttrGender:
		return r.Gender
	case AttrPriorMentalHealth:
		return r.PriorMentalHealth
	case AttrWeaponsLegal:
		return r.WeaponsLegal
	default:
		return ""
	}
}

// HasPosition reports whether both coordinates are present
func (r *Record) HasPosition() bool {
	return !IsMissing(r.Latitude) && !IsMissing(r.Longitude)
}

// formatNumber renders a numeric field for tooltips
func formatNumber(v float64) string {
	if IsMissing(v) {
		return "unknown"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TooltipLines returns the attribute lines shown when a marker is hovered.
func (r *Record) TooltipLines() []string {
	date := r.Date.String()
	if date == "" {
		if y, ok := r.YearValue(); ok {
			date = strconv.Itoa(y)
		} else {
			date = "unknown"
		}
	}
	lines := []string{
		fmt.Sprintf("%s (%s)", r.Case, r.Location),
		fmt.Sprintf("Date: %s", date),
		fmt.Sprintf("Fatalities: %s, Injured: %s, Total victims: %s",
			formatNumber(r.Fatalities), formatNumber(r.Injured), formatNumber(r.TotalVictims)),
		fmt.Sprintf("Age of shooter: %s", formatNumber(r.AgeOfShooter)),
		fmt.Sprintf("Type: %s, Location: %s", r.Type, r.LocationCategory),
		fmt.Sprintf("Race: %s, Gender: %s", r.Race, r.Gender),
	}
	if r.Summary != "" {
		lines = append(lines, r.Summary)
	}
	return lines
}

// MarshalJSON writes missing numeric values as null; encoding/json rejects NaN.
func (r Record) MarshalJSON() ([]byte, error) {
	type alias Record
	return json.Marshal(struct {
		alias
		Fatalities   *float64 `json:"fatalities"`
		Injured      *float64 `json:"injured"`
		TotalVictims *float64 `json:"total_victims"`
		AgeOfShooter *float64 `json:"age_of_shooter"`
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
	}{
		alias:        alias(r),
		Fatalities:   nullable(r.Fatalities),
		Injured:      nullable(r.Injured),
		TotalVictims: nullable(r.TotalVictims),
		AgeOfShooter: nullable(r.AgeOfShooter),
		Latitude:     nullable(r.Latitude),
		Longitude:    nullable(r.Longitude),
	})
}

func nullable(v float64) *float64 {
	if IsMissing(v) {
		return nil
	}
	return &v
}

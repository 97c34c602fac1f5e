package models

// Attribute names used by filters, aggregates and color mapping
const (
	AttrCase              = "case"
	AttrLocation          = "location" // place name, descriptive only
	AttrDate              = "date"     // filtered by year
	AttrSummary           = "summary"  // descriptive only
	AttrFatalities        = "fatalities"
	AttrInjured           = "injured"
	AttrTotalVictims      = "total_victims"
	AttrAgeOfShooter      = "age_of_shooter"
	AttrLatitude          = "latitude"
	AttrLongitude         = "longitude"
	AttrLocationCategory  = "location_category" // Workplace, School, Religious, ...
	AttrType              = "type"              // Mass, Spree
	AttrRace              = "race"
	AttrGender            = "gender"
	AttrPriorMentalHealth = "prior_signs_mental_health_issues"
	AttrWeaponsLegal      = "weapons_obtained_legally"
	AttrWeaponType        = "weapon_type" // descriptive only
	AttrYear              = "year"
)

// AllOption is the nominal sentinel meaning "no restriction".
const AllOption = "All"

// AttributeKind distinguishes range-filtered from category-filtered attributes
type AttributeKind int

const (
	// Quantitative attributes are filtered by an inclusive [low, high] range
	Quantitative AttributeKind = iota
	// Nominal attributes are filtered by a set of admissible categories
	Nominal
)

func (k AttributeKind) String() string {
	switch k {
	case Quantitative:
		return "quantitative"
	case Nominal:
		return "nominal"
	default:
		return "unknown"
	}
}

// MarshalText lets AttributeKind appear as a string in JSON
func (k AttributeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Attribute describes one filterable attribute
type Attribute struct {
	Name  string        `json:"name"`
	Label string        `json:"label"`
	Kind  AttributeKind `json:"kind"`
}

// Filterable lists every filterable attribute in widget order.
var Filterable = []Attribute{
	{Name: AttrDate, Label: "Year", Kind: Quantitative},
	{Name: AttrFatalities, Label: "Fatalities", Kind: Quantitative},
	{Name: AttrInjured, Label: "Injured", Kind: Quantitative},
	{Name: AttrTotalVictims, Label: "Total victims", Kind: Quantitative},
	{Name: AttrAgeOfShooter, Label: "Age of shooter", Kind: Quantitative},
	{Name: AttrLocationCategory, Label: "Location", Kind: Nominal},
	{Name: AttrType, Label: "Type", Kind: Nominal},
	{Name: AttrRace, Label: "Race", Kind: Nominal},
	{Name: AttrGender, Label: "Gender", Kind: Nominal},
	{Name: AttrPriorMentalHealth, Label: "Prior signs of mental illness", Kind: Nominal},
	{Name: AttrWeaponsLegal, Label: "Weapons obtained legally", Kind: Nominal},
}

// SummedAttributes are the numeric attributes the aggregator totals.
var SummedAttributes = []string{AttrFatalities, AttrInjured, AttrTotalVictims}

// LookupAttribute finds a filterable attribute by name
func LookupAttribute(name string) (Attribute, bool) {
	for _, a := range Filterable {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Range is the observed [Min, Max] of a quantitative attribute over the full
// dataset. Valid is false when no record carries a value.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid bool    `json:"valid"`
}

package model

// ExperienceBracket is one discrete experience-duration choice. Each bracket
// maps to the canonical year value the backend stores.
type ExperienceBracket struct {
	Key   string
	Label string
	Years float64
}

// ExperienceBrackets lists the selectable brackets in display order.
var ExperienceBrackets = []ExperienceBracket{
	{Key: "fresher", Label: "Fresher", Years: 0},
	{Key: "1_6_months", Label: "1-6 months", Years: 0.5},
	{Key: "1_year", Label: "1 year", Years: 1},
	{Key: "2_years", Label: "2 years", Years: 2},
	{Key: "3_years", Label: "3 years", Years: 3},
	{Key: "4_years", Label: "4 years", Years: 4},
	{Key: "5_plus_years", Label: "5+ years", Years: 5},
}

// BracketYears returns the canonical year value for a bracket key.
// The second return is false for unknown keys.
func BracketYears(key string) (float64, bool) {
	for _, b := range ExperienceBrackets {
		if b.Key == key {
			return b.Years, true
		}
	}
	return 0, false
}

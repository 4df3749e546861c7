package hubapi

import (
	"strings"
	"time"
)

// scoreDataset rates how well a catalog entry matches the query on a 0-100
// scale. The scale is internal to this source; the engine's threshold
// policy decides what is acceptable.
//
// Weights: entity-name token overlap 50, terminology variant in the dataset
// name 20, state mention 15, recency 10, non-empty record count 5.
func scoreDataset(d Dataset, entityName, state, variant string) float64 {
	if d.Attributes.Name == "" {
		return 0
	}

	dsName := strings.ToLower(d.Attributes.Name)
	haystack := dsName + " " + strings.ToLower(d.Attributes.SearchDescription) +
		" " + strings.ToLower(strings.Join(d.Attributes.Tags, " ")) +
		" " + strings.ToLower(d.Attributes.OrgName)

	var score float64

	// Fields on a blank name yields zero tokens; dividing by that would
	// produce NaN, which no threshold comparison can reject.
	if tokens := strings.Fields(strings.ToLower(entityName)); len(tokens) > 0 {
		matched := 0
		for _, tok := range tokens {
			if strings.Contains(dsName, tok) {
				matched++
			}
		}
		score += 50 * float64(matched) / float64(len(tokens))
	}

	if variant != "" && strings.Contains(dsName, strings.ToLower(variant)) {
		score += 20
	}

	st := strings.ToLower(state)
	if st != "" && (strings.Contains(haystack, " "+st+" ") || strings.HasSuffix(haystack, " "+st) ||
		strings.Contains(haystack, stateName(state))) {
		score += 15
	}

	if d.Attributes.Modified > 0 {
		age := time.Since(time.UnixMilli(d.Attributes.Modified))
		switch {
		case age < 2*365*24*time.Hour:
			score += 10
		case age < 5*365*24*time.Hour:
			score += 5
		}
	}

	if d.Attributes.RecordCount > 0 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// stateName maps a postal abbreviation to its lowercase full name, for
// matching catalogs that spell the state out.
func stateName(abbr string) string {
	names := map[string]string{
		"AL": "alabama", "AK": "alaska", "AZ": "arizona", "AR": "arkansas",
		"CA": "california", "CO": "colorado", "CT": "connecticut", "DE": "delaware",
		"DC": "district of columbia", "FL": "florida", "GA": "georgia", "HI": "hawaii",
		"ID": "idaho", "IL": "illinois", "IN": "indiana", "IA": "iowa",
		"KS": "kansas", "KY": "kentucky", "LA": "louisiana", "ME": "maine",
		"MD": "maryland", "MA": "massachusetts", "MI": "michigan", "MN": "minnesota",
		"MS": "mississippi", "MO": "missouri", "MT": "montana", "NE": "nebraska",
		"NV": "nevada", "NH": "new hampshire", "NJ": "new jersey", "NM": "new mexico",
		"NY": "new york", "NC": "north carolina", "ND": "north dakota", "OH": "ohio",
		"OK": "oklahoma", "OR": "oregon", "PA": "pennsylvania", "RI": "rhode island",
		"SC": "south carolina", "SD": "south dakota", "TN": "tennessee", "TX": "texas",
		"UT": "utah", "VT": "vermont", "VA": "virginia", "WA": "washington",
		"WV": "west virginia", "WI": "wisconsin", "WY": "wyoming",
	}
	return names[strings.ToUpper(abbr)]
}

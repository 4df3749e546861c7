package discovery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// Routing preference tags carried on classifications. Strategies read these
// to decide which authoritative dataset to inject.
const (
	PrefStandard         = "standard"
	PrefCountyEquivalent = "county_equivalent"
	PrefPlaceLevel       = "place_level"
	PrefAuthoritative    = "authoritative"
	PrefFreshnessFirst   = "freshness_first"
	PrefCatalogFirst     = "catalog_first"
)

// stripDiacritics removes combining marks after NFD decomposition, so
// "Doña Ana" and "Dona Ana" normalize identically.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizePlaceName lowercases a place name, strips diacritics and
// punctuation, and collapses whitespace, producing the key format the edge
// case registry is indexed by. "St. Louis" and "st  louis" both become
// "st louis".
func NormalizePlaceName(name string) string {
	cleaned, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		cleaned = name
	}
	cleaned = strings.ToLower(cleaned)

	var b strings.Builder
	b.Grow(len(cleaned))
	lastSpace := true
	for _, r := range cleaned {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '.' || r == ',' || r == '\'':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Classify tags a (location, boundary type) pair with its administrative
// classification and a routing preference. It is total: every input yields
// a valid classification, falling through to "standard" when no special
// case applies. It performs no I/O.
func Classify(location boundary.LocationQuery, t boundary.Type) boundary.Classification {
	// Legislative, electoral, and catalog-only categories are driven by the
	// boundary type itself, not the place name.
	switch t {
	case boundary.StateHouse, boundary.StateSenate:
		return boundary.Classification{
			Type:              boundary.ClassStateLegislative,
			RoutingPreference: PrefAuthoritative,
		}
	case boundary.Congressional:
		return boundary.Classification{
			Type:              boundary.ClassCongressional,
			RoutingPreference: PrefAuthoritative,
		}
	case boundary.VotingPrecinct:
		return boundary.Classification{
			Type:              boundary.ClassVotingPrecinct,
			RoutingPreference: PrefFreshnessFirst,
		}
	case boundary.SchoolBoard:
		return boundary.Classification{
			Type:              boundary.ClassSchoolBoard,
			RoutingPreference: PrefStandard,
		}
	case boundary.SpecialDistrict, boundary.Judicial:
		return boundary.Classification{
			Type:              boundary.ClassHubAPIOnly,
			RoutingPreference: PrefCatalogFirst,
		}
	}

	// Municipal and county lookups go through the edge case table.
	if location.Name != "" {
		if edge, ok := registry.EdgeCaseFor(NormalizePlaceName(location.Name), location.State); ok {
			return classifyEdgeCase(edge)
		}
	}

	return boundary.Classification{
		Type:              boundary.ClassStandard,
		RoutingPreference: PrefStandard,
	}
}

func classifyEdgeCase(edge registry.EdgeCase) boundary.Classification {
	meta := map[string]string{"fips": edge.FIPS}
	switch edge.Class {
	case boundary.ClassIndependentCity, boundary.ClassConsolidatedCityCounty, boundary.ClassFederalDistrict:
		// These have no separate county layer; county-equivalent data covers
		// the whole jurisdiction.
		return boundary.Classification{
			Type:              edge.Class,
			Metadata:          meta,
			RoutingPreference: PrefCountyEquivalent,
		}
	case boundary.ClassMultiCountyCity:
		// County data splits the city; place-level data is the usable unit.
		return boundary.Classification{
			Type:              edge.Class,
			Metadata:          meta,
			RoutingPreference: PrefPlaceLevel,
		}
	}
	return boundary.Classification{
		Type:              boundary.ClassStandard,
		RoutingPreference: PrefStandard,
	}
}

package registry_test

import (
	"testing"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// TestPortalFor verifies the embedded portal registry loads and keys by
// (state, boundary type).
func TestPortalFor(t *testing.T) {
	portal, ok := registry.PortalFor("CA", boundary.Congressional)
	if !ok {
		t.Fatal("expected a CA congressional portal")
	}
	if portal.State != "CA" {
		t.Errorf("expected state CA, got %s", portal.State)
	}
	if portal.Authority == "" || portal.URL == "" {
		t.Errorf("portal missing authority or URL: %+v", portal)
	}
	if portal.LastRedistricting.IsZero() {
		t.Error("portal missing a redistricting date")
	}

	if _, ok := registry.PortalFor("ZZ", boundary.Congressional); ok {
		t.Error("unknown state should have no portal")
	}
	if _, ok := registry.PortalFor("CA", boundary.SpecialDistrict); ok {
		t.Error("CA portal does not serve special districts")
	}
}

// TestPortalFor_CaseInsensitiveState verifies state lookups fold case.
func TestPortalFor_CaseInsensitiveState(t *testing.T) {
	upper, ok := registry.PortalFor("CA", boundary.Congressional)
	if !ok {
		t.Fatal("expected a CA congressional portal")
	}
	lower, ok := registry.PortalFor("ca", boundary.Congressional)
	if !ok {
		t.Fatal("lowercase state should find the same portal")
	}
	if upper.URL != lower.URL {
		t.Errorf("case-folded lookups disagree: %q vs %q", upper.URL, lower.URL)
	}
}

// TestPortalFor_NYSplitRegistries verifies NY's separately-dated
// congressional and legislative portals load as distinct entries.
func TestPortalFor_NYSplitRegistries(t *testing.T) {
	congressional, ok := registry.PortalFor("NY", boundary.Congressional)
	if !ok {
		t.Fatal("expected a NY congressional portal")
	}
	legislative, ok := registry.PortalFor("NY", boundary.StateSenate)
	if !ok {
		t.Fatal("expected a NY state senate portal")
	}
	if congressional.LastRedistricting.Equal(legislative.LastRedistricting) {
		t.Error("NY congressional and legislative portals should carry different redistricting dates")
	}
	if !congressional.LastRedistricting.After(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NY congressional redistricting should be the 2024 remedial map, got %v",
			congressional.LastRedistricting)
	}
}

// TestAuthorityFor verifies the special-district authority registry.
func TestAuthorityFor(t *testing.T) {
	authority, ok := registry.AuthorityFor("ca")
	if !ok {
		t.Fatal("expected a CA special-district authority")
	}
	if authority.State != "CA" || authority.Authority == "" {
		t.Errorf("unexpected authority: %+v", authority)
	}

	if _, ok := registry.AuthorityFor("WY"); ok {
		t.Error("WY has no registered authority")
	}
}

// TestEdgeCaseFor verifies classifier edge cases key on normalized name
// plus state.
func TestEdgeCaseFor(t *testing.T) {
	cases := []struct {
		name  string
		state string
		class boundary.ClassificationType
	}{
		{"st louis", "MO", boundary.ClassIndependentCity},
		{"baltimore", "MD", boundary.ClassIndependentCity},
		{"san francisco", "CA", boundary.ClassConsolidatedCityCounty},
		{"washington", "DC", boundary.ClassFederalDistrict},
		{"new york", "NY", boundary.ClassMultiCountyCity},
	}
	for _, c := range cases {
		edge, ok := registry.EdgeCaseFor(c.name, c.state)
		if !ok {
			t.Errorf("%s/%s: expected an edge case", c.name, c.state)
			continue
		}
		if edge.Class != c.class {
			t.Errorf("%s/%s: expected class %s, got %s", c.name, c.state, c.class, edge.Class)
		}
		if edge.FIPS == "" {
			t.Errorf("%s/%s: expected a FIPS code", c.name, c.state)
		}
	}

	// Same name in the wrong state is no match.
	if _, ok := registry.EdgeCaseFor("st louis", "IL"); ok {
		t.Error("st louis IL should not match the MO edge case")
	}
}

// TestDescriptorFor verifies the descriptor table covers every source id
// and the policy-relevant support flags.
func TestDescriptorFor(t *testing.T) {
	tiger, ok := registry.DescriptorFor(registry.SourceTIGER)
	if !ok {
		t.Fatal("expected a TIGER descriptor")
	}
	if !tiger.Supports.CoverageGuarantee {
		t.Error("TIGER must carry the coverage guarantee")
	}
	if tiger.Supports.AuthorityTier != boundary.TierFederal {
		t.Errorf("TIGER tier should be federal, got %s", tiger.Supports.AuthorityTier)
	}

	hub, ok := registry.DescriptorFor(registry.SourceHubAPI)
	if !ok {
		t.Fatal("expected a catalog descriptor")
	}
	if hub.Supports.CoverageGuarantee {
		t.Error("the community catalog has no coverage guarantee")
	}
	if hub.Supports.AuthorityTier != boundary.TierCommunity {
		t.Errorf("catalog tier should be community, got %s", hub.Supports.AuthorityTier)
	}

	if _, ok := registry.DescriptorFor("unknown"); ok {
		t.Error("unknown source id should have no descriptor")
	}
}

// TestNeedsFor verifies policy flags per boundary type, including the
// zero-value default.
func TestNeedsFor(t *testing.T) {
	if n := registry.NeedsFor(boundary.Congressional); !n.PreferFreshness || !n.RequireCoverageGuarantee {
		t.Errorf("congressional needs freshness and coverage, got %+v", n)
	}
	if n := registry.NeedsFor(boundary.SpecialDistrict); n.PreferAuthorityTier != boundary.TierState {
		t.Errorf("special districts prefer the state tier, got %+v", n)
	}
	if n := registry.NeedsFor(boundary.Municipal); n != (boundary.Needs{}) {
		t.Errorf("municipal should use the zero default, got %+v", n)
	}
}

// TestTerminologyVariants verifies every boundary type has a non-empty
// ordered variant list with no duplicates.
func TestTerminologyVariants(t *testing.T) {
	for _, bt := range boundary.AllTypes {
		variants := registry.TerminologyVariants(bt)
		if len(variants) == 0 {
			t.Errorf("%s: expected at least one terminology variant", bt)
			continue
		}
		seen := map[string]bool{}
		for _, v := range variants {
			if v == "" {
				t.Errorf("%s: empty variant", bt)
			}
			if seen[v] {
				t.Errorf("%s: duplicate variant %q", bt, v)
			}
			seen[v] = true
		}
	}
}

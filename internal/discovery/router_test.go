package discovery_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// nullSource satisfies boundary.DataSource without ever being fetched;
// router tests only look at decisions.
type nullSource struct{ name string }

func (n nullSource) Name() string          { return n.name }
func (n nullSource) ID() boundary.SourceID { return "" }
func (n nullSource) Fetch(ctx context.Context, req boundary.FetchRequest) (*boundary.SourceResult, error) {
	return nil, nil
}

func routerConfig() discovery.Config {
	return discovery.Config{
		Sources: discovery.SourceFactories{
			HubAPI: func() boundary.DataSource { return nullSource{"hub_api"} },
			TIGER: func(t boundary.Type) boundary.DataSource {
				return nullSource{fmt.Sprintf("tiger:%s", t)}
			},
			StatePortal: func(state string, t boundary.Type) boundary.DataSource {
				return nullSource{fmt.Sprintf("state_portal:%s", state)}
			},
			SpecialDistrict: func(state string) boundary.DataSource {
				return nullSource{"special_district_authority"}
			},
		},
	}
}

func contextFor(t boundary.Type, state string, at time.Time) boundary.RoutingContext {
	location := boundary.LocationQuery{State: state}
	return boundary.RoutingContext{
		BoundaryType:   t,
		Location:       location,
		State:          state,
		Classification: discovery.Classify(location, t),
		RequestedAt:    at,
		Needs:          registry.NeedsFor(t),
	}
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

// TestBuildRouter_CoverageGuarantee verifies every boundary type with a
// federal dataset always has the TIGER fallback in its chain, and the
// catalog-only types never do.
func TestBuildRouter_CoverageGuarantee(t *testing.T) {
	router := discovery.BuildRouter(routerConfig())

	for _, bt := range boundary.AllTypes {
		decision := router.Decide(contextFor(bt, "KS", time.Now()))
		names := decision.SourceNames()

		tigerName := fmt.Sprintf("tiger:%s", bt)
		if bt.HubAPIOnly() {
			if contains(names, tigerName) {
				t.Errorf("%s: catalog-only type must not route to TIGER, got %v", bt, names)
			}
			continue
		}
		if !contains(names, tigerName) {
			t.Errorf("%s: expected %s in decision, got %v", bt, tigerName, names)
		}
	}
}

// TestBuildRouter_CatalogAlwaysPresent verifies the community catalog is in
// every chain for every boundary type.
func TestBuildRouter_CatalogAlwaysPresent(t *testing.T) {
	router := discovery.BuildRouter(routerConfig())

	for _, bt := range boundary.AllTypes {
		decision := router.Decide(contextFor(bt, "TX", time.Now()))
		if !contains(decision.SourceNames(), "hub_api") {
			t.Errorf("%s: expected hub_api in decision, got %v", bt, decision.SourceNames())
		}
	}
}

// TestBuildRouter_FreshnessWindowBoundary verifies the state portal is
// included at exactly 36 thirty-day months after redistricting and
// excluded at 37.
func TestBuildRouter_FreshnessWindowBoundary(t *testing.T) {
	portal, ok := registry.PortalFor("CA", boundary.Congressional)
	if !ok {
		t.Fatal("expected a CA congressional portal in the registry")
	}

	router := discovery.BuildRouter(routerConfig())
	month := 30 * 24 * time.Hour

	cases := []struct {
		months int
		want   bool
	}{
		{35, true},
		{36, true},
		{37, false},
	}
	for _, c := range cases {
		at := portal.LastRedistricting.Add(time.Duration(c.months) * month)
		decision := router.Decide(contextFor(boundary.Congressional, "CA", at))
		got := contains(decision.SourceNames(), "state_portal:CA")
		if got != c.want {
			t.Errorf("at %d months: portal included=%v, want %v", c.months, got, c.want)
		}
	}
}

// TestBuildRouter_FreshnessRequiresPreference verifies boundary types
// without the freshness need never route to the portal even right after a
// redistricting.
func TestBuildRouter_FreshnessRequiresPreference(t *testing.T) {
	portal, ok := registry.PortalFor("CA", boundary.Congressional)
	if !ok {
		t.Fatal("expected a CA congressional portal in the registry")
	}

	router := discovery.BuildRouter(routerConfig())
	ctx := contextFor(boundary.Municipal, "CA", portal.LastRedistricting.Add(24*time.Hour))

	if contains(router.Decide(ctx).SourceNames(), "state_portal:CA") {
		t.Error("municipal has no freshness preference; portal should be absent")
	}
}

// TestBuildRouter_SpecialDistrictAuthorityFirst verifies the state
// authority source leads the chain for special districts in a state with a
// registered authority, ahead of the catalog.
func TestBuildRouter_SpecialDistrictAuthorityFirst(t *testing.T) {
	router := discovery.BuildRouter(routerConfig())
	decision := router.Decide(contextFor(boundary.SpecialDistrict, "CA", time.Now()))

	names := decision.SourceNames()
	if len(names) < 2 {
		t.Fatalf("expected at least 2 sources, got %v", names)
	}
	if names[0] != "special_district_authority" {
		t.Errorf("expected authority first, got %v", names)
	}
	if names[1] != "hub_api" {
		t.Errorf("expected hub_api second, got %v", names)
	}
}

// TestBuildRouter_SpecialDistrictWithoutAuthority verifies a state with no
// registered authority falls straight to the catalog.
func TestBuildRouter_SpecialDistrictWithoutAuthority(t *testing.T) {
	router := discovery.BuildRouter(routerConfig())
	decision := router.Decide(contextFor(boundary.SpecialDistrict, "WY", time.Now()))

	names := decision.SourceNames()
	if len(names) == 0 || names[0] != "hub_api" {
		t.Errorf("expected hub_api first for WY, got %v", names)
	}
	if contains(names, "special_district_authority") {
		t.Errorf("WY has no authority; got %v", names)
	}
}

// TestBuildRouter_ClassificationInjectsCountyEquivalent verifies an
// independent city's county request routes the county TIGER layer ahead of
// only the tail fallback, and dedups against it.
func TestBuildRouter_ClassificationInjectsCountyEquivalent(t *testing.T) {
	router := discovery.BuildRouter(routerConfig())

	location := boundary.LocationQuery{Name: "Baltimore", State: "MD"}
	rctx := boundary.RoutingContext{
		BoundaryType:   boundary.County,
		Location:       location,
		State:          "MD",
		Classification: discovery.Classify(location, boundary.County),
		RequestedAt:    time.Now(),
		Needs:          registry.NeedsFor(boundary.County),
	}
	decision := router.Decide(rctx)

	names := decision.SourceNames()
	count := 0
	for _, n := range names {
		if n == "tiger:county" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected tiger:county exactly once, got %v", names)
	}
	// Classification-aware runs before the authoritative fallback, so the
	// county layer sits directly behind the catalog.
	if len(names) < 2 || names[1] != "tiger:county" {
		t.Errorf("expected tiger:county at position 2, got %v", names)
	}
}

// TestBuildRouter_MultiCountyCityGetsPlaceLevel verifies place-level
// injection for cities spanning counties.
func TestBuildRouter_MultiCountyCityGetsPlaceLevel(t *testing.T) {
	router := discovery.BuildRouter(routerConfig())

	location := boundary.LocationQuery{Name: "New York", State: "NY"}
	rctx := boundary.RoutingContext{
		BoundaryType:   boundary.County,
		Location:       location,
		State:          "NY",
		Classification: discovery.Classify(location, boundary.County),
		RequestedAt:    time.Now(),
		Needs:          registry.NeedsFor(boundary.County),
	}
	decision := router.Decide(rctx)

	if !contains(decision.SourceNames(), "tiger:municipal") {
		t.Errorf("expected tiger:municipal injected, got %v", decision.SourceNames())
	}
}

// TestMonthsSince verifies the 30-day month floor arithmetic.
func TestMonthsSince(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{29 * 24 * time.Hour, 0},
		{30 * 24 * time.Hour, 1},
		{36 * 30 * 24 * time.Hour, 36},
		{36*30*24*time.Hour + time.Hour, 36},
		{37 * 30 * 24 * time.Hour, 37},
	}
	for _, c := range cases {
		if got := discovery.MonthsSince(base, base.Add(c.elapsed)); got != c.want {
			t.Errorf("MonthsSince(+%v) = %d, want %d", c.elapsed, got, c.want)
		}
	}

	if got := discovery.MonthsSince(base, base.Add(-time.Hour)); got != 0 {
		t.Errorf("negative elapsed should clamp to 0, got %d", got)
	}
}

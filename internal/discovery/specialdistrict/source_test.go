package specialdistrict_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/specialdistrict"
)

func floatPtr(v float64) *float64 { return &v }

func districtFeature(name string) map[string]interface{} {
	return map[string]interface{}{
		"properties": map[string]interface{}{"DISTRICT_NAME": name},
		"geometry": map[string]interface{}{
			"type":        "Polygon",
			"coordinates": [][][]float64{{{-122.3, 37.8}, {-122.2, 37.8}, {-122.2, 37.9}, {-122.3, 37.8}}},
		},
	}
}

func authorityServer(t *testing.T, features []map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type":     "FeatureCollection",
			"features": features,
		})
	}))
}

// TestFetch_ExactDistrictName verifies exact registry matches earn the top
// authority score.
func TestFetch_ExactDistrictName(t *testing.T) {
	server := authorityServer(t, []map[string]interface{}{
		districtFeature("East Bay Municipal Utility District"),
	})
	defer server.Close()

	source := specialdistrict.NewSourceWithBaseURL("CA", server.URL)
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "East Bay Municipal Utility District", State: "CA"},
		BoundaryType: boundary.SpecialDistrict,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Score != 85 {
		t.Errorf("exact district name should score 85, got %v", result.Score)
	}
}

// TestFetch_PointOverlappingDistricts verifies a point inside several
// districts returns the first and lists the rest.
func TestFetch_PointOverlappingDistricts(t *testing.T) {
	server := authorityServer(t, []map[string]interface{}{
		districtFeature("East Bay Municipal Utility District"),
		districtFeature("Alameda County Mosquito Abatement District"),
		districtFeature("AC Transit District"),
	})
	defer server.Close()

	source := specialdistrict.NewSourceWithBaseURL("CA", server.URL)
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Lat: floatPtr(37.85), Lng: floatPtr(-122.25), State: "CA"},
		BoundaryType: boundary.SpecialDistrict,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Score != 80 {
		t.Errorf("point query should score 80, got %v", result.Score)
	}
	overlapping := result.Metadata.OverlappingDistricts
	if len(overlapping) != 2 {
		t.Fatalf("expected 2 overlapping districts, got %v", overlapping)
	}
	if overlapping[0] != "Alameda County Mosquito Abatement District" {
		t.Errorf("unexpected overlap list: %v", overlapping)
	}
}

// TestFetch_PartialNameMatch verifies partial matches return at the base
// authority score.
func TestFetch_PartialNameMatch(t *testing.T) {
	server := authorityServer(t, []map[string]interface{}{
		districtFeature("Pine Grove Fire Protection District"),
	})
	defer server.Close()

	source := specialdistrict.NewSourceWithBaseURL("CA", server.URL)
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Pine Grove", State: "CA"},
		BoundaryType: boundary.SpecialDistrict,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Score != 65 {
		t.Errorf("partial match should score 65, got %v", result.Score)
	}
}

// TestFetch_StateWithoutAuthority verifies the source degrades to no data
// for states absent from the authority registry.
func TestFetch_StateWithoutAuthority(t *testing.T) {
	server := authorityServer(t, []map[string]interface{}{districtFeature("x")})
	defer server.Close()

	source := specialdistrict.NewSourceWithBaseURL("WY", server.URL)
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Some District", State: "WY"},
		BoundaryType: boundary.SpecialDistrict,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result != nil {
		t.Errorf("expected no data, got %+v", result)
	}
}

// TestFetch_EmptyRegistryAnswer verifies an empty feature set is no data.
func TestFetch_EmptyRegistryAnswer(t *testing.T) {
	server := authorityServer(t, nil)
	defer server.Close()

	source := specialdistrict.NewSourceWithBaseURL("CA", server.URL)
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Atlantis Water District", State: "CA"},
		BoundaryType: boundary.SpecialDistrict,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result != nil {
		t.Errorf("expected no data, got %+v", result)
	}
}

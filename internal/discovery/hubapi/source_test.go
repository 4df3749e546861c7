package hubapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/hubapi"
)

func jsonBody(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

type searchPayload struct {
	Data []map[string]interface{} `json:"data"`
}

func catalogEntry(id, name, description, org string, records int) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
		"attributes": map[string]interface{}{
			"name":              name,
			"searchDescription": description,
			"orgName":           org,
			"recordCount":       records,
			"modified":          time.Now().Add(-60 * 24 * time.Hour).UnixMilli(),
		},
	}
}

func geojsonPolygon() map[string]interface{} {
	return map[string]interface{}{
		"type": "FeatureCollection",
		"features": []map[string]interface{}{{
			"type":       "Feature",
			"properties": map[string]interface{}{"NAME": "District 3"},
			"geometry": map[string]interface{}{
				"type":        "Polygon",
				"coordinates": [][][]float64{{{-89.7, 39.7}, {-89.6, 39.7}, {-89.6, 39.8}, {-89.7, 39.7}}},
			},
		}},
	}
}

// TestFetch_WinnerGeometryDownloaded verifies the full flow: variant
// fan-out, winner selection, and the geometry download for only the winning
// dataset.
func TestFetch_WinnerGeometryDownloaded(t *testing.T) {
	var downloads []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/downloads/geojson") {
			downloads = append(downloads, r.URL.Path)
			jsonBody(t, w, geojsonPolygon())
			return
		}
		jsonBody(t, w, searchPayload{Data: []map[string]interface{}{
			catalogEntry("ds-1", "Springfield City Council Districts",
				"City council districts for Springfield, Illinois",
				"City of Springfield GIS", 8),
		}})
	}))
	defer server.Close()

	source := hubapi.NewSourceWithClient(hubapi.NewClientWithBaseURL(server.URL))
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Springfield", State: "IL"},
		BoundaryType: boundary.Municipal,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}

	if result.Score < 60 {
		t.Errorf("expected a qualifying score, got %v", result.Score)
	}
	if result.Geometry.Type != "Polygon" {
		t.Errorf("expected the downloaded polygon, got %q", result.Geometry.Type)
	}
	if result.Metadata.TerminologyVariant != "city council districts" {
		t.Errorf("expected the first qualifying variant, got %q", result.Metadata.TerminologyVariant)
	}
	if result.Metadata.Publisher != "City of Springfield GIS" {
		t.Errorf("unexpected publisher %q", result.Metadata.Publisher)
	}

	if len(downloads) != 1 {
		t.Errorf("geometry should be downloaded once, got %v", downloads)
	}
	if len(downloads) == 1 && !strings.Contains(downloads[0], "ds-1") {
		t.Errorf("wrong dataset downloaded: %s", downloads[0])
	}
}

// TestFetch_NoMatches verifies an empty catalog yields a clean no-data
// answer, not an error.
func TestFetch_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonBody(t, w, searchPayload{})
	}))
	defer server.Close()

	source := hubapi.NewSourceWithClient(hubapi.NewClientWithBaseURL(server.URL))
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Nowhere", State: "KS"},
		BoundaryType: boundary.Municipal,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result != nil {
		t.Errorf("expected no data, got %+v", result)
	}
}

// TestFetch_EmptyGeometryDownload verifies an empty feature collection for
// the winner also resolves to no data.
func TestFetch_EmptyGeometryDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/downloads/geojson") {
			jsonBody(t, w, map[string]interface{}{"type": "FeatureCollection", "features": []interface{}{}})
			return
		}
		jsonBody(t, w, searchPayload{Data: []map[string]interface{}{
			catalogEntry("ds-2", "Springfield City Council Districts", "", "Springfield GIS", 8),
		}})
	}))
	defer server.Close()

	source := hubapi.NewSourceWithClient(hubapi.NewClientWithBaseURL(server.URL))
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Springfield", State: "IL"},
		BoundaryType: boundary.Municipal,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result != nil {
		t.Errorf("expected no data for an empty dataset, got %+v", result)
	}
}

// TestFetch_SearchFailuresAreNoData verifies a failing catalog backend
// degrades to no data so the engine can move down the chain.
func TestFetch_SearchFailuresAreNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	source := hubapi.NewSourceWithClient(hubapi.NewClientWithBaseURL(server.URL))
	result, err := source.Fetch(context.Background(), boundary.FetchRequest{
		Location:     boundary.LocationQuery{Name: "Springfield", State: "IL"},
		BoundaryType: boundary.Municipal,
	})
	if err != nil {
		t.Fatalf("variant failures should be isolated, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no data, got %+v", result)
	}
}

// Package specialdistrict implements the per-state special-district
// authority source. A handful of states maintain official special-purpose
// district registries; where one exists it beats community data on
// authority, though its scores reflect the uneven quality of the
// underlying filings.
package specialdistrict

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// Source is one state's special-district authority registry.
type Source struct {
	state      string
	httpClient *http.Client
	baseURL    string // overrides the registry URL when set; tests use this
}

// NewSource creates an authority source for a state. States without a
// registered authority yield no data at fetch time.
func NewSource(state string) *Source {
	return &Source{
		state: strings.ToUpper(state),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewSourceWithBaseURL creates an authority source against a fixed
// endpoint instead of the registry URL.
func NewSourceWithBaseURL(state, base string) *Source {
	s := NewSource(state)
	s.baseURL = base
	return s
}

// Name implements boundary.DataSource.
func (s *Source) Name() string { return "special_district_authority" }

// ID implements boundary.DataSource.
func (s *Source) ID() boundary.SourceID { return registry.SourceSpecialDistrict }

type queryResponse struct {
	Features []struct {
		Properties map[string]interface{} `json:"properties"`
		Geometry   boundary.Geometry      `json:"geometry"`
	} `json:"features"`
}

// Fetch queries the authority's district layer.
func (s *Source) Fetch(ctx context.Context, req boundary.FetchRequest) (*boundary.SourceResult, error) {
	authority, ok := registry.AuthorityFor(s.state)
	if !ok {
		return nil, nil
	}
	endpoint := authority.URL
	if s.baseURL != "" {
		endpoint = s.baseURL
	}

	params := url.Values{}
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("f", "geojson")

	switch {
	case req.Location.HasPoint():
		params.Set("geometry", fmt.Sprintf("%f,%f", *req.Location.Lng, *req.Location.Lat))
		params.Set("geometryType", "esriGeometryPoint")
		params.Set("inSR", "4326")
		params.Set("spatialRel", "esriSpatialRelIntersects")
	case req.Location.Name != "":
		params.Set("where", fmt.Sprintf("UPPER(DISTRICT_NAME) LIKE UPPER('%%%s%%')",
			strings.ReplaceAll(req.Location.Name, "'", "''")))
	default:
		return nil, nil
	}

	fullURL := fmt.Sprintf("%s/query?%s", endpoint, params.Encode())

	start := time.Now()
	boundary.LogRequest(s.Name(), "GET", endpoint, nil)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		boundary.LogError(s.Name(), "query", err)
		return nil, fmt.Errorf("authority query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("authority status %d", resp.StatusCode)
		boundary.LogError(s.Name(), "query", err)
		return nil, err
	}

	var page queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		boundary.LogError(s.Name(), "decode", err)
		return nil, fmt.Errorf("decode authority: %w", err)
	}

	boundary.LogResponse(s.Name(), resp.StatusCode, time.Since(start), len(page.Features))
	if len(page.Features) == 0 {
		return nil, nil
	}

	f := page.Features[0]
	score := 65.0
	if name, ok := f.Properties["DISTRICT_NAME"].(string); ok &&
		req.Location.Name != "" && strings.EqualFold(name, req.Location.Name) {
		score = 85
	}
	if req.Location.HasPoint() {
		score = 80
	}

	var overlapping []string
	for _, feat := range page.Features[1:] {
		if name, ok := feat.Properties["DISTRICT_NAME"].(string); ok {
			overlapping = append(overlapping, name)
		}
	}

	return &boundary.SourceResult{
		Geometry: f.Geometry,
		Score:    score,
		Metadata: boundary.ResultMetadata{
			Source:               s.Name(),
			Publisher:            authority.Authority,
			OverlappingDistricts: overlapping,
		},
	}, nil
}

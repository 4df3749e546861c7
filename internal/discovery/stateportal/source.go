// Package stateportal implements the per-state authoritative GIS portal
// source. Portals are registered in the state-portal registry with the
// redistricting date that makes them worth preferring over the federal
// dataset for a while.
package stateportal

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

// Source is one state's GIS portal for one boundary type.
type Source struct {
	state        string
	boundaryType boundary.Type
	httpClient   *http.Client
	baseURL      string // overrides the registry URL when set; tests use this
}

// NewSource creates a portal source for (state, boundary type). The portal
// registry is consulted at fetch time; a state without a portal entry
// yields no data rather than an error.
func NewSource(state string, t boundary.Type) *Source {
	return &Source{
		state:        strings.ToUpper(state),
		boundaryType: t,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewSourceWithBaseURL creates a portal source that queries a fixed
// endpoint instead of the registry URL.
func NewSourceWithBaseURL(state string, t boundary.Type, base string) *Source {
	s := NewSource(state, t)
	s.baseURL = base
	return s
}

// Name implements boundary.DataSource.
func (s *Source) Name() string {
	return fmt.Sprintf("state_portal:%s", s.state)
}

// ID implements boundary.DataSource.
func (s *Source) ID() boundary.SourceID { return registry.SourceStatePortal }

type queryResponse struct {
	Features []struct {
		Properties map[string]interface{} `json:"properties"`
		Geometry   boundary.Geometry      `json:"geometry"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Fetch queries the portal's feature layer by point or name.
func (s *Source) Fetch(ctx context.Context, req boundary.FetchRequest) (*boundary.SourceResult, error) {
	portal, ok := registry.PortalFor(s.state, s.boundaryType)
	if !ok {
		return nil, nil
	}
	endpoint := portal.URL
	if s.baseURL != "" {
		endpoint = s.baseURL
	}

	params := url.Values{}
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("f", "geojson")

	score := 0.0
	switch {
	case req.Location.HasPoint():
		params.Set("geometry", fmt.Sprintf("%f,%f", *req.Location.Lng, *req.Location.Lat))
		params.Set("geometryType", "esriGeometryPoint")
		params.Set("inSR", "4326")
		params.Set("spatialRel", "esriSpatialRelIntersects")
		score = 95
	case req.Location.Name != "":
		params.Set("where", fmt.Sprintf("UPPER(NAME) LIKE UPPER('%%%s%%')", escapeSQL(req.Location.Name)))
		score = 80
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
		return nil, fmt.Errorf("portal query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("portal status %d", resp.StatusCode)
		boundary.LogError(s.Name(), "query", err)
		return nil, err
	}

	var page queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		boundary.LogError(s.Name(), "decode", err)
		return nil, fmt.Errorf("decode portal: %w", err)
	}
	if page.Error != nil {
		err := fmt.Errorf("portal error %d: %s", page.Error.Code, page.Error.Message)
		boundary.LogError(s.Name(), "query", err)
		return nil, err
	}

	boundary.LogResponse(s.Name(), resp.StatusCode, time.Since(start), len(page.Features))
	if len(page.Features) == 0 {
		return nil, nil
	}

	f := page.Features[0]
	if !req.Location.HasPoint() {
		if name, ok := f.Properties["NAME"].(string); ok &&
			req.Location.Name != "" && strings.EqualFold(name, req.Location.Name) {
			score = 90
		}
	}

	return &boundary.SourceResult{
		Geometry: f.Geometry,
		Score:    score,
		Metadata: boundary.ResultMetadata{
			Source:      s.Name(),
			Publisher:   portal.Authority,
			PublishedAt: portal.LastRedistricting.Format("2006-01-02"),
			Notes:       []string{"format: " + portal.Format},
		},
	}, nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

package tiger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

const (
	// BaseURL is the TIGERweb current-vintage map service.
	BaseURL = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/tigerWMS_Current/MapServer"
)

// layerIDs maps boundary types to TIGERweb layer ids. Special districts and
// judicial boundaries have no federal layer and are absent on purpose.
var layerIDs = map[boundary.Type]int{
	boundary.Congressional:  54,
	boundary.StateSenate:    56,
	boundary.StateHouse:     58,
	boundary.County:         82,
	boundary.Municipal:      28,
	boundary.SchoolBoard:    14,
	boundary.VotingPrecinct: 60,
}

// Client is an HTTP client for TIGERweb layer queries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a TIGERweb client.
func NewClient() *Client {
	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
func NewClientWithBaseURL(base string) *Client {
	c := NewClient()
	c.baseURL = base
	return c
}

// QueryPoint returns the features of the layer containing the point.
func (c *Client) QueryPoint(ctx context.Context, layer int, lat, lng float64) ([]feature, error) {
	params := url.Values{}
	params.Set("geometry", fmt.Sprintf("%f,%f", lng, lat))
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("inSR", "4326")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("outFields", "GEOID,NAME,BASENAME,STATE,MTFCC")
	params.Set("returnGeometry", "true")
	params.Set("f", "geojson")
	return c.query(ctx, layer, params)
}

// QueryName returns the features of the layer matching a name within a
// state (by FIPS code).
func (c *Client) QueryName(ctx context.Context, layer int, name, stateFIPS string) ([]feature, error) {
	where := fmt.Sprintf("UPPER(BASENAME) LIKE UPPER('%%%s%%')", escapeSQL(name))
	if stateFIPS != "" {
		where += fmt.Sprintf(" AND STATE = '%s'", stateFIPS)
	}
	params := url.Values{}
	params.Set("where", where)
	params.Set("outFields", "GEOID,NAME,BASENAME,STATE,MTFCC")
	params.Set("returnGeometry", "true")
	params.Set("f", "geojson")
	return c.query(ctx, layer, params)
}

func (c *Client) query(ctx context.Context, layer int, params url.Values) ([]feature, error) {
	fullURL := fmt.Sprintf("%s/%d/query?%s", c.baseURL, layer, params.Encode())

	start := time.Now()
	boundary.LogRequest("tiger", "GET", fmt.Sprintf("%s/%d/query", c.baseURL, layer), nil)

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		boundary.LogError("tiger", "query", err)
		return nil, fmt.Errorf("tiger query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("tiger status %d", resp.StatusCode)
		boundary.LogError("tiger", "query", err)
		return nil, err
	}

	var page queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		boundary.LogError("tiger", "decode", err)
		return nil, fmt.Errorf("decode tiger: %w", err)
	}
	if page.Error != nil {
		err := fmt.Errorf("tiger error %d: %s", page.Error.Code, page.Error.Message)
		boundary.LogError("tiger", "query", err)
		return nil, err
	}

	boundary.LogResponse("tiger", resp.StatusCode, time.Since(start), len(page.Features))
	return page.Features, nil
}

// escapeSQL doubles single quotes for the ArcGIS where clause.
func escapeSQL(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

package hubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

const (
	// BaseURL is the ArcGIS Hub search API endpoint.
	BaseURL = "https://hub.arcgis.com/api/v3/datasets"

	// PageSize caps how many catalog entries one search pulls.
	PageSize = 25
)

// Client is an HTTP client for the ArcGIS Hub catalog. Search traffic is
// rate limited because the catalog is a shared community service and the
// terminology search fans out several queries per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Hub catalog client.
func NewClient() *Client {
	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(4), 8),
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Tests point this at an httptest server.
func NewClientWithBaseURL(base string) *Client {
	c := NewClient()
	c.baseURL = base
	return c
}

// SearchDatasets runs one catalog search and returns matching datasets.
func (c *Client) SearchDatasets(ctx context.Context, query string) ([]Dataset, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page[size]", strconv.Itoa(PageSize))
	params.Set("fields[datasets]", "name,searchDescription,owner,orgName,tags,recordCount,modified,geometryType")

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	start := time.Now()
	boundary.LogRequest("hub_api", "GET", c.baseURL, map[string]interface{}{"q": query})

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		boundary.LogError("hub_api", "search", err)
		return nil, fmt.Errorf("hub search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("hub status %d", resp.StatusCode)
		boundary.LogError("hub_api", "search", err)
		return nil, err
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		boundary.LogError("hub_api", "decode", err)
		return nil, fmt.Errorf("decode hub search: %w", err)
	}

	boundary.LogResponse("hub_api", resp.StatusCode, time.Since(start), len(page.Data))
	return page.Data, nil
}

// FetchGeometry downloads a dataset's GeoJSON and returns the geometry of
// the first feature, or nil if the dataset is empty.
func (c *Client) FetchGeometry(ctx context.Context, datasetID string) (*boundary.Geometry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	downloadURL := fmt.Sprintf("%s/%s/downloads/geojson", c.baseURL, url.PathEscape(datasetID))

	start := time.Now()
	boundary.LogRequest("hub_api", "GET", downloadURL, nil)

	req, err := http.NewRequestWithContext(ctx, "GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		boundary.LogError("hub_api", "download", err)
		return nil, fmt.Errorf("hub download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("hub download status %d", resp.StatusCode)
		boundary.LogError("hub_api", "download", err)
		return nil, err
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		boundary.LogError("hub_api", "decode", err)
		return nil, fmt.Errorf("decode hub geojson: %w", err)
	}

	boundary.LogResponse("hub_api", resp.StatusCode, time.Since(start), len(fc.Features))
	if len(fc.Features) == 0 {
		return nil, nil
	}
	geom := fc.Features[0].Geometry
	return &geom, nil
}

package hubapi

import (
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// searchResponse is the Hub search API envelope.
type searchResponse struct {
	Data []Dataset `json:"data"`
	Meta struct {
		Stats struct {
			Count      int `json:"count"`
			TotalCount int `json:"totalCount"`
		} `json:"stats"`
	} `json:"meta"`
}

// Dataset is one catalog entry from the Hub search API.
type Dataset struct {
	ID         string            `json:"id"`
	Attributes DatasetAttributes `json:"attributes"`
}

// DatasetAttributes carries the fields the scorer reads.
type DatasetAttributes struct {
	Name              string   `json:"name"`
	SearchDescription string   `json:"searchDescription"`
	Owner             string   `json:"owner"`
	OrgName           string   `json:"orgName"`
	Tags              []string `json:"tags"`
	RecordCount       int      `json:"recordCount"`
	Modified          int64    `json:"modified"` // epoch millis
	GeometryType      string   `json:"geometryType"`
}

// featureCollection is the GeoJSON download of one dataset, reduced to what
// the engine passes through.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   boundary.Geometry      `json:"geometry"`
}

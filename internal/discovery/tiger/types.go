package tiger

import (
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// queryResponse is a TIGERweb layer query result in GeoJSON form.
type queryResponse struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
	Error    *apiError `json:"error,omitempty"`
}

type feature struct {
	Type       string            `json:"type"`
	Properties properties        `json:"properties"`
	Geometry   boundary.Geometry `json:"geometry"`
}

// properties carries the TIGERweb attributes the source reads. TIGERweb
// uses uppercase field names.
type properties struct {
	GEOID    string `json:"GEOID"`
	Name     string `json:"NAME"`
	BaseName string `json:"BASENAME"`
	State    string `json:"STATE"`
	MTFCC    string `json:"MTFCC"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

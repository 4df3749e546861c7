// Package tiger implements the federal authoritative boundary source on
// top of the Census TIGERweb ArcGIS REST service. TIGER carries a legal
// complete-coverage guarantee for every boundary type it serves, which is
// why the router uses it as the fallback of last resort.
package tiger

import (
	"context"
	"fmt"
	"strings"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// stateFIPS maps postal abbreviations to state FIPS codes for name queries.
var stateFIPS = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06", "CO": "08",
	"CT": "09", "DE": "10", "DC": "11", "FL": "12", "GA": "13", "HI": "15",
	"ID": "16", "IL": "17", "IN": "18", "IA": "19", "KS": "20", "KY": "21",
	"LA": "22", "ME": "23", "MD": "24", "MA": "25", "MI": "26", "MN": "27",
	"MS": "28", "MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38", "OH": "39",
	"OK": "40", "OR": "41", "PA": "42", "RI": "44", "SC": "45", "SD": "46",
	"TN": "47", "TX": "48", "UT": "49", "VT": "50", "VA": "51", "WA": "53",
	"WV": "54", "WI": "55", "WY": "56",
}

// Source is the federal TIGER data source for one boundary type.
type Source struct {
	client       *Client
	boundaryType boundary.Type
}

// NewSource creates a TIGER source for the given boundary type.
func NewSource(t boundary.Type) *Source {
	return &Source{client: NewClient(), boundaryType: t}
}

// NewSourceWithClient creates a TIGER source with a custom client.
func NewSourceWithClient(client *Client, t boundary.Type) *Source {
	return &Source{client: client, boundaryType: t}
}

// Name implements boundary.DataSource. The boundary type is part of the
// name because the router may put a county-equivalent TIGER source and the
// requested type's TIGER source in the same chain.
func (s *Source) Name() string {
	return fmt.Sprintf("tiger:%s", s.boundaryType)
}

// ID implements boundary.DataSource.
func (s *Source) ID() boundary.SourceID { return registry.SourceTIGER }

// Fetch resolves the request against the TIGERweb layer for the source's
// boundary type. Point containment is exact, so it scores 100; name
// matches score by exactness.
func (s *Source) Fetch(ctx context.Context, req boundary.FetchRequest) (*boundary.SourceResult, error) {
	layer, ok := layerIDs[s.boundaryType]
	if !ok {
		return nil, fmt.Errorf("no TIGER layer for %s", s.boundaryType)
	}

	if req.Location.HasPoint() {
		features, err := s.client.QueryPoint(ctx, layer, *req.Location.Lat, *req.Location.Lng)
		if err != nil {
			return nil, err
		}
		if len(features) == 0 {
			return nil, nil
		}
		return s.result(features[0], 100), nil
	}

	name := req.Location.Name
	if name == "" {
		return nil, nil
	}
	features, err := s.client.QueryName(ctx, layer, name, stateFIPS[strings.ToUpper(req.Location.State)])
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, nil
	}

	best := features[0]
	score := 85.0
	for _, f := range features {
		if strings.EqualFold(f.Properties.BaseName, name) {
			best = f
			score = 100
			break
		}
	}
	return s.result(best, score), nil
}

func (s *Source) result(f feature, score float64) *boundary.SourceResult {
	return &boundary.SourceResult{
		Geometry: f.Geometry,
		Score:    score,
		Metadata: boundary.ResultMetadata{
			Source:    s.Name(),
			Publisher: "US Census Bureau",
			FIPSCode:  f.Properties.GEOID,
			Notes:     []string{"layer: " + f.Properties.Name},
		},
	}
}

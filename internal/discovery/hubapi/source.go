// Package hubapi implements the community catalog boundary source on top
// of the ArcGIS Hub search API. Governments publish the same boundary
// concept under wildly different names, so every fetch runs the
// terminology fallback search across all known variants for the boundary
// type and keeps the best match.
package hubapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/terminology"
)

// Source is the community catalog data source.
type Source struct {
	client *Client
}

// NewSource creates the catalog source with a default client.
func NewSource() *Source {
	return &Source{client: NewClient()}
}

// NewSourceWithClient creates the catalog source with a custom client.
func NewSourceWithClient(client *Client) *Source {
	return &Source{client: client}
}

// Name implements boundary.DataSource.
func (s *Source) Name() string { return "hub_api" }

// ID implements boundary.DataSource.
func (s *Source) ID() boundary.SourceID { return registry.SourceHubAPI }

// Fetch searches the catalog under every terminology variant for the
// boundary type concurrently, picks a winner, and downloads its geometry.
func (s *Source) Fetch(ctx context.Context, req boundary.FetchRequest) (*boundary.SourceResult, error) {
	variants := registry.TerminologyVariants(req.BoundaryType)
	if len(variants) == 0 {
		return nil, fmt.Errorf("no terminology variants for %s", req.BoundaryType)
	}

	variantIndex := make(map[string]int, len(variants))
	for i, v := range variants {
		variantIndex[v] = i
	}

	// Each task records the dataset behind its candidate result in its own
	// slot so the winning dataset can be resolved after selection.
	picked := make([]*Dataset, len(variants))

	winner := terminology.Search(ctx, s.Name(), variants, func(ctx context.Context, variant string) (*boundary.SourceResult, error) {
		query := buildQuery(req.Location, variant)
		datasets, err := s.client.SearchDatasets(ctx, query)
		if err != nil {
			return nil, err
		}

		var best *Dataset
		var bestScore float64
		for i := range datasets {
			score := scoreDataset(datasets[i], req.Location.Name, req.Location.State, variant)
			if best == nil || score > bestScore {
				best = &datasets[i]
				bestScore = score
			}
		}
		if best == nil || bestScore <= 0 {
			return nil, nil
		}

		picked[variantIndex[variant]] = best
		return &boundary.SourceResult{
			Score: bestScore,
			Metadata: boundary.ResultMetadata{
				Source:    s.Name(),
				Publisher: publisherOf(*best),
				UpdatedAt: modifiedOf(*best),
				Notes:     []string{"dataset: " + best.Attributes.Name},
			},
		}, nil
	})
	if winner == nil {
		return nil, nil
	}

	dataset := picked[variantIndex[winner.Variant]]
	geom, err := s.client.FetchGeometry(ctx, dataset.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch geometry for %s: %w", dataset.Attributes.Name, err)
	}
	if geom == nil {
		return nil, nil
	}

	result := winner.Result
	result.Geometry = *geom
	return result, nil
}

// buildQuery assembles one variant's catalog search string.
func buildQuery(loc boundary.LocationQuery, variant string) string {
	parts := make([]string, 0, 3)
	if loc.Name != "" {
		parts = append(parts, loc.Name)
	}
	if loc.County != "" && !strings.EqualFold(loc.County, loc.Name) {
		parts = append(parts, loc.County)
	}
	parts = append(parts, loc.State, variant)
	return strings.Join(parts, " ")
}

func publisherOf(d Dataset) string {
	if d.Attributes.OrgName != "" {
		return d.Attributes.OrgName
	}
	return d.Attributes.Owner
}

func modifiedOf(d Dataset) string {
	if d.Attributes.Modified == 0 {
		return ""
	}
	return time.UnixMilli(d.Attributes.Modified).UTC().Format("2006-01-02")
}

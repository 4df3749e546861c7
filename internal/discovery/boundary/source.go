package boundary

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrMissingState        = errors.New("location query requires a state")
	ErrUnknownBoundaryType = errors.New("unknown boundary type")
	ErrNoQueryTerms        = errors.New("location query needs a point or a name")
)

// DataSource is the contract every boundary data provider implements. It
// abstracts the differences between the community catalog, the federal
// TIGER dataset, state GIS portals, and special-district registries.
//
// Fetch returns (nil, nil) when the source legitimately has no data for the
// request. The engine treats nil and an error identically for control flow
// (move on to the next source) but logs them distinguishably.
type DataSource interface {
	// Name returns the source name used for dedup, logging, and provenance.
	Name() string

	// ID returns the descriptor registry id, or "" if the source has none.
	ID() SourceID

	// Fetch resolves the request to a single boundary, or nil if the source
	// has nothing for it.
	Fetch(ctx context.Context, req FetchRequest) (*SourceResult, error)
}

// Factory lazily constructs a DataSource. Strategies hand factories to the
// orchestrator so sources that never get selected are never built.
type Factory func() DataSource

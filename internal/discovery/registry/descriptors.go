package registry

import (
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// Source ids used across the engine. Strategies propose candidates by these
// ids; the threshold policy looks descriptors up by them.
const (
	SourceHubAPI          boundary.SourceID = "hub_api"
	SourceTIGER           boundary.SourceID = "tiger"
	SourceStatePortal     boundary.SourceID = "state_portal"
	SourceSpecialDistrict boundary.SourceID = "special_district_authority"
)

// tigerTypes lists the boundary types the federal TIGER dataset covers.
// Special districts and judicial boundaries have no federal dataset.
var tigerTypes = []boundary.Type{
	boundary.Municipal, boundary.County, boundary.StateHouse,
	boundary.StateSenate, boundary.Congressional, boundary.SchoolBoard,
	boundary.VotingPrecinct,
}

// descriptors is the static source descriptor table. It feeds the quality
// threshold policy only; dispatch order never reads it.
var descriptors = map[boundary.SourceID]boundary.SourceDescriptor{
	SourceHubAPI: {
		ID:            SourceHubAPI,
		Label:         "ArcGIS Hub community catalog",
		BoundaryTypes: nil, // any
		Supports: boundary.SourceSupports{
			QueryModes:    []boundary.QueryMode{boundary.QueryByName, boundary.QueryByPoint},
			AuthorityTier: boundary.TierCommunity,
		},
	},
	SourceTIGER: {
		ID:            SourceTIGER,
		Label:         "Census TIGERweb",
		BoundaryTypes: tigerTypes,
		Supports: boundary.SourceSupports{
			QueryModes:        []boundary.QueryMode{boundary.QueryByPoint, boundary.QueryByName},
			CoverageGuarantee: true,
			AuthorityTier:     boundary.TierFederal,
		},
	},
	SourceStatePortal: {
		ID:            SourceStatePortal,
		Label:         "State GIS portal",
		BoundaryTypes: nil,
		Supports: boundary.SourceSupports{
			QueryModes:    []boundary.QueryMode{boundary.QueryByPoint, boundary.QueryByName},
			Freshness:     true,
			AuthorityTier: boundary.TierState,
		},
	},
	SourceSpecialDistrict: {
		ID:            SourceSpecialDistrict,
		Label:         "State special-district authority",
		BoundaryTypes: []boundary.Type{boundary.SpecialDistrict},
		Supports: boundary.SourceSupports{
			QueryModes:    []boundary.QueryMode{boundary.QueryByName, boundary.QueryByPoint},
			AuthorityTier: boundary.TierState,
		},
	},
}

// DescriptorFor returns the descriptor for a source id.
func DescriptorFor(id boundary.SourceID) (boundary.SourceDescriptor, bool) {
	d, ok := descriptors[id]
	return d, ok
}

// needsTable holds the per-boundary-type routing policy flags.
var needsTable = map[boundary.Type]boundary.Needs{
	boundary.Congressional:   {PreferFreshness: true, RequireCoverageGuarantee: true},
	boundary.StateHouse:      {PreferFreshness: true, RequireCoverageGuarantee: true},
	boundary.StateSenate:     {PreferFreshness: true, RequireCoverageGuarantee: true},
	boundary.VotingPrecinct:  {PreferFreshness: true},
	boundary.SpecialDistrict: {PreferAuthorityTier: boundary.TierState},
	boundary.Judicial:        {PreferAuthorityTier: boundary.TierState},
	boundary.County:          {RequireCoverageGuarantee: true},
}

// defaultNeeds applies to any boundary type without its own entry.
var defaultNeeds = boundary.Needs{}

// NeedsFor returns the routing policy flags for a boundary type.
func NeedsFor(t boundary.Type) boundary.Needs {
	if n, ok := needsTable[t]; ok {
		return n
	}
	return defaultNeeds
}

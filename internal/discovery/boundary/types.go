package boundary

import (
	"encoding/json"
	"time"
)

// Type identifies one of the nine administrative boundary categories the
// engine resolves. The set is closed; unknown strings are rejected by Valid.
type Type string

const (
	Municipal       Type = "municipal"
	County          Type = "county"
	StateHouse      Type = "state_house"
	StateSenate     Type = "state_senate"
	Congressional   Type = "congressional"
	SchoolBoard     Type = "school_board"
	SpecialDistrict Type = "special_district"
	Judicial        Type = "judicial"
	VotingPrecinct  Type = "voting_precinct"
)

// AllTypes lists every supported boundary type.
var AllTypes = []Type{
	Municipal, County, StateHouse, StateSenate, Congressional,
	SchoolBoard, SpecialDistrict, Judicial, VotingPrecinct,
}

// Valid reports whether t is one of the nine supported boundary types.
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HubAPIOnly reports whether t has no authoritative federal dataset.
// Special districts and judicial boundaries exist only in the community
// catalog and per-state registries; everything else is covered by TIGER.
func (t Type) HubAPIOnly() bool {
	return t == SpecialDistrict || t == Judicial
}

// LocationQuery identifies the place a caller wants a boundary for: either a
// coordinate pair or a (name, state[, county]) tuple. State is always
// required. Queries are immutable once constructed.
type LocationQuery struct {
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
	Name   string   `json:"name,omitempty"`
	State  string   `json:"state"`
	County string   `json:"county,omitempty"`
}

// HasPoint reports whether the query carries a coordinate pair.
func (q LocationQuery) HasPoint() bool {
	return q.Lat != nil && q.Lng != nil
}

// ClassificationType tags the administrative structure of a location.
type ClassificationType string

const (
	ClassIndependentCity        ClassificationType = "independent_city"
	ClassConsolidatedCityCounty ClassificationType = "consolidated_city_county"
	ClassFederalDistrict        ClassificationType = "federal_district"
	ClassMultiCountyCity        ClassificationType = "multi_county_city"
	ClassStateLegislative       ClassificationType = "state_legislative"
	ClassCongressional          ClassificationType = "congressional"
	ClassVotingPrecinct         ClassificationType = "voting_precinct"
	ClassSchoolBoard            ClassificationType = "school_board"
	ClassHubAPIOnly             ClassificationType = "hub_api_only"
	ClassStandard               ClassificationType = "standard"
)

// Classification is the classifier's verdict for one (location, boundary
// type) pair. Strategies read it; nothing mutates it after construction.
type Classification struct {
	Type              ClassificationType `json:"type"`
	Metadata          map[string]string  `json:"metadata,omitempty"`
	RoutingPreference string             `json:"routing_preference"`
}

// AuthorityTier ranks how authoritative a source's publisher is.
type AuthorityTier string

const (
	TierFederal   AuthorityTier = "federal"
	TierState     AuthorityTier = "state"
	TierCommunity AuthorityTier = "community"
)

// Needs captures the per-boundary-type routing policy flags.
type Needs struct {
	PreferFreshness          bool
	RequireCoverageGuarantee bool
	PreferAuthorityTier      AuthorityTier // empty means no preference
}

// RoutingContext is the immutable per-request snapshot every strategy reads.
// Constructed once by the orchestrator, never mutated afterwards, so
// strategies produce the same ordering no matter when they run.
type RoutingContext struct {
	BoundaryType   Type
	Location       LocationQuery
	State          string
	Classification Classification
	RequestedAt    time.Time
	Needs          Needs
}

// QueryMode names a way a source can be queried.
type QueryMode string

const (
	QueryByPoint QueryMode = "point"
	QueryByName  QueryMode = "name"
)

// SourceID identifies a source in the descriptor registry.
type SourceID string

// SourceSupports describes a source's capabilities for threshold purposes.
type SourceSupports struct {
	QueryModes        []QueryMode
	Freshness         bool
	CoverageGuarantee bool
	AuthorityTier     AuthorityTier
}

// SourceDescriptor is static metadata about one source identity. It feeds
// the quality threshold policy only; dispatch order comes from strategies.
type SourceDescriptor struct {
	ID            SourceID
	Label         string
	BoundaryTypes []Type // nil means any boundary type
	Supports      SourceSupports
}

// ServesType reports whether the descriptor covers boundary type t.
func (d SourceDescriptor) ServesType(t Type) bool {
	if d.BoundaryTypes == nil {
		return true
	}
	for _, bt := range d.BoundaryTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// ResultMetadata carries provenance for a fetched boundary.
type ResultMetadata struct {
	Source               string   `json:"source"`
	Publisher            string   `json:"publisher,omitempty"`
	PublishedAt          string   `json:"published_at,omitempty"`
	UpdatedAt            string   `json:"updated_at,omitempty"`
	FIPSCode             string   `json:"fips_code,omitempty"`
	TerminologyVariant   string   `json:"terminology_variant,omitempty"`
	Notes                []string `json:"notes,omitempty"`
	OverlappingDistricts []string `json:"overlapping_districts,omitempty"`
}

// SourceResult is one source's answer for one request. Score is on a 0-100
// scale internal to the source; it is only meaningful once passed through
// the threshold policy for the boundary type and descriptor in question.
type SourceResult struct {
	Geometry Geometry       `json:"geometry"`
	Score    float64        `json:"score"`
	Metadata ResultMetadata `json:"metadata"`
}

// Geometry is a GeoJSON geometry. Coordinates are kept as raw JSON because
// the engine never interprets them; it only passes them through.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// FetchRequest bundles everything a source needs to answer one request.
type FetchRequest struct {
	Location       LocationQuery
	BoundaryType   Type
	Classification Classification
}

// SourceCandidate is a strategy's proposal of one source: a name for
// deduplication and logging, the descriptor id for threshold lookup, and a
// lazy constructor so unselected sources are never instantiated.
type SourceCandidate struct {
	Name string
	ID   SourceID
	New  Factory
}

// RoutingDecision is the composed, deduplicated source order for one
// request, with the names of the strategies that produced it.
type RoutingDecision struct {
	Sources      []SourceCandidate
	StrategyName string
	Reasoning    []string
}

// SourceNames returns the ordered source names, for logs and error messages.
func (d RoutingDecision) SourceNames() []string {
	names := make([]string, 0, len(d.Sources))
	for _, s := range d.Sources {
		names = append(names, s.Name)
	}
	return names
}

// Result is the final outcome of one discovery request. It is the only
// entity that outlives the request and is never mutated after construction.
type Result struct {
	Success        bool            `json:"success"`
	Data           *SourceResult   `json:"data,omitempty"`
	Source         string          `json:"source,omitempty"`
	Classification Classification  `json:"classification"`
	Score          float64         `json:"score,omitempty"`
	Attempts       []SourceAttempt `json:"attempts,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// SourceAttempt records what happened with one tried source, for diagnosis.
type SourceAttempt struct {
	Source    string  `json:"source"`
	Outcome   string  `json:"outcome"` // "accepted", "no_data", "error", "below_threshold"
	Score     float64 `json:"score,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Detail    string  `json:"detail,omitempty"`
}

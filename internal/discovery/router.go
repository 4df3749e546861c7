package discovery

import (
	"fmt"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// FreshnessWindowMonths is how long after a redistricting event a state's
// own portal is considered more current than the federal dataset. Months
// are 30-day months; the boundary is inclusive.
const FreshnessWindowMonths = 36

// Router turns a routing context into an ordered, deduplicated source list.
// It is built once per orchestrator configuration; per-request Decide calls
// do no registry construction.
type Router struct {
	decide func(ctx boundary.RoutingContext) boundary.RoutingDecision
}

// Decide produces the routing decision for one request. When the needs
// require guaranteed coverage it checks that at least one proposed source
// carries the guarantee and records a warning when none does, so a chain
// that can exhaust without a guaranteed source is visible in the decision.
func (r *Router) Decide(ctx boundary.RoutingContext) boundary.RoutingDecision {
	decision := r.decide(ctx)
	if ctx.Needs.RequireCoverageGuarantee && !hasGuaranteedSource(decision.Sources) {
		decision.Reasoning = append(decision.Reasoning,
			"warning: coverage guarantee required but no proposed source provides one")
	}
	return decision
}

func hasGuaranteedSource(sources []boundary.SourceCandidate) bool {
	for _, cand := range sources {
		if d, ok := registry.DescriptorFor(cand.ID); ok && d.Supports.CoverageGuarantee {
			return true
		}
	}
	return false
}

// BuildRouter wires the five concrete strategies into one pipeline, in
// fixed priority order:
//
//  1. state-authority special districts
//  2. catalog first
//  3. classification aware
//  4. freshness aware
//  5. authoritative fallback
//
// Strategies that involve the federal dataset are scoped to boundary types
// TIGER covers; the catalog strategy covers every type.
func BuildRouter(cfg Config) *Router {
	hasFederal := func(ctx boundary.RoutingContext) bool {
		return !ctx.BoundaryType.HubAPIOnly()
	}
	anyType := func(ctx boundary.RoutingContext) bool {
		return ctx.BoundaryType.Valid()
	}

	pipeline := []Strategy{
		stateAuthorityStrategy(cfg),
		Conditional(anyType, catalogFirstStrategy(cfg)),
		Conditional(hasFederal, classificationAwareStrategy(cfg)),
		Conditional(hasFederal, freshnessAwareStrategy(cfg)),
		Conditional(hasFederal, authoritativeFallbackStrategy(cfg)),
	}

	return &Router{decide: Compose(pipeline)}
}

// stateAuthorityStrategy proposes the per-state special-district authority
// when the request is for special districts, the needs prefer state
// authority, and the state has a registered authority.
func stateAuthorityStrategy(cfg Config) Strategy {
	return Strategy{
		Name: "state_authority_special_district",
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			if ctx.BoundaryType != boundary.SpecialDistrict {
				return nil
			}
			if ctx.Needs.PreferAuthorityTier != boundary.TierState {
				return nil
			}
			if cfg.Sources.SpecialDistrict == nil {
				return nil
			}
			if _, ok := registry.AuthorityFor(ctx.State); !ok {
				return nil
			}
			state := ctx.State
			return []boundary.SourceCandidate{{
				Name: "special_district_authority",
				ID:   registry.SourceSpecialDistrict,
				New:  func() boundary.DataSource { return cfg.Sources.SpecialDistrict(state) },
			}}
		},
	}
}

// catalogFirstStrategy proposes the community catalog: the only option for
// catalog-only boundary types, and a fast first attempt for the rest.
func catalogFirstStrategy(cfg Config) Strategy {
	return Strategy{
		Name: "catalog_first",
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			return []boundary.SourceCandidate{{
				Name: "hub_api",
				ID:   registry.SourceHubAPI,
				New:  func() boundary.DataSource { return cfg.Sources.HubAPI() },
			}}
		},
	}
}

// classificationAwareStrategy injects a county-equivalent or place-level
// authoritative source for locations whose administrative structure makes
// the default layer wrong: independent cities, consolidated city-counties,
// and the federal district have no separate county layer, and multi-county
// cities are only usable at place level.
func classificationAwareStrategy(cfg Config) Strategy {
	return Strategy{
		Name: "classification_aware",
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			switch ctx.Classification.Type {
			case boundary.ClassIndependentCity, boundary.ClassConsolidatedCityCounty, boundary.ClassFederalDistrict:
				return []boundary.SourceCandidate{tigerCandidate(cfg, boundary.County)}
			case boundary.ClassMultiCountyCity:
				return []boundary.SourceCandidate{tigerCandidate(cfg, boundary.Municipal)}
			}
			return nil
		},
	}
}

// freshnessAwareStrategy injects the state portal when the boundary type
// prefers freshness and the state redistricted within the freshness window
// of the request time.
func freshnessAwareStrategy(cfg Config) Strategy {
	return Strategy{
		Name: "freshness_aware",
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			if !ctx.Needs.PreferFreshness {
				return nil
			}
			portal, ok := registry.PortalFor(ctx.State, ctx.BoundaryType)
			if !ok {
				return nil
			}
			if MonthsSince(portal.LastRedistricting, ctx.RequestedAt) > FreshnessWindowMonths {
				return nil
			}
			state, bt := ctx.State, ctx.BoundaryType
			return []boundary.SourceCandidate{{
				Name: fmt.Sprintf("state_portal:%s", state),
				ID:   registry.SourceStatePortal,
				New:  func() boundary.DataSource { return cfg.Sources.StatePortal(state, bt) },
			}}
		},
	}
}

// authoritativeFallbackStrategy guarantees eventual coverage: every boundary
// type with a federal dataset always ends with TIGER in its chain.
func authoritativeFallbackStrategy(cfg Config) Strategy {
	return Strategy{
		Name: "authoritative_fallback",
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			return []boundary.SourceCandidate{tigerCandidate(cfg, ctx.BoundaryType)}
		},
	}
}

func tigerCandidate(cfg Config, t boundary.Type) boundary.SourceCandidate {
	return boundary.SourceCandidate{
		Name: fmt.Sprintf("tiger:%s", t),
		ID:   registry.SourceTIGER,
		New:  func() boundary.DataSource { return cfg.Sources.TIGER(t) },
	}
}

// MonthsSince counts whole 30-day months between two times, flooring.
func MonthsSince(since, now time.Time) int {
	if now.Before(since) {
		return 0
	}
	return int(now.Sub(since) / (30 * 24 * time.Hour))
}

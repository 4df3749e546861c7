package discovery

import (
	"fmt"
	"strings"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// Strategy is a named, pure routing function: given an immutable routing
// context it proposes an ordered list of source candidates. Strategies must
// not perform I/O or mutate the context; for a fixed context and fixed
// factory behavior they are deterministic.
type Strategy struct {
	Name string
	Plan func(ctx boundary.RoutingContext) []boundary.SourceCandidate
}

// Conditional scopes a strategy: it runs only when the predicate holds and
// yields nothing otherwise. A strategy that yields nothing is a no-op in
// composition, never an error.
func Conditional(pred func(ctx boundary.RoutingContext) bool, s Strategy) Strategy {
	return Strategy{
		Name: s.Name,
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			if !pred(ctx) {
				return nil
			}
			return s.Plan(ctx)
		},
	}
}

// Parallel concatenates the outputs of the given strategies in argument
// order. Despite the name it merges decision results only; no I/O happens
// here or in any strategy.
func Parallel(strategies ...Strategy) Strategy {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name
	}
	return Strategy{
		Name: strings.Join(names, "+"),
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			var out []boundary.SourceCandidate
			for _, s := range strategies {
				out = append(out, s.Plan(ctx)...)
			}
			return out
		},
	}
}

// Fallback yields the primary strategy's sources, or the secondary's when
// the primary proposes none.
func Fallback(primary, secondary Strategy) Strategy {
	return Strategy{
		Name: primary.Name + "|" + secondary.Name,
		Plan: func(ctx boundary.RoutingContext) []boundary.SourceCandidate {
			if sources := primary.Plan(ctx); len(sources) > 0 {
				return sources
			}
			return secondary.Plan(ctx)
		},
	}
}

// Compose flattens the ordered outputs of every strategy and deduplicates
// by source name, keeping the first occurrence and its position. Strategy
// order is authoritative priority order: a later strategy can never
// displace a source an earlier one already proposed.
func Compose(strategies []Strategy) func(ctx boundary.RoutingContext) boundary.RoutingDecision {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name
	}
	strategyName := strings.Join(names, " > ")

	return func(ctx boundary.RoutingContext) boundary.RoutingDecision {
		var (
			sources   []boundary.SourceCandidate
			reasoning []string
			seen      = make(map[string]struct{})
		)
		for _, s := range strategies {
			proposed := s.Plan(ctx)
			if len(proposed) == 0 {
				continue
			}
			var kept []string
			for _, cand := range proposed {
				if _, dup := seen[cand.Name]; dup {
					reasoning = append(reasoning, fmt.Sprintf("%s: %s already proposed, dropped", s.Name, cand.Name))
					continue
				}
				seen[cand.Name] = struct{}{}
				sources = append(sources, cand)
				kept = append(kept, cand.Name)
			}
			if len(kept) > 0 {
				reasoning = append(reasoning, fmt.Sprintf("%s: %s", s.Name, strings.Join(kept, ", ")))
			}
		}
		return boundary.RoutingDecision{
			Sources:      sources,
			StrategyName: strategyName,
			Reasoning:    reasoning,
		}
	}
}

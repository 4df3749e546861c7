// Package terminology implements the fallback search the catalog source
// uses to cope with inconsistent government naming: the same boundary
// concept is published as "council districts", "supervisorial districts",
// "wards", and so on. Every known variant is searched concurrently and a
// single winner is chosen after all searches settle.
package terminology

import (
	"context"
	"sync"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// AcceptScore is the score at which the first variant (in list order) wins
// outright, without comparing against later variants.
const AcceptScore = 60

// SearchFunc runs one variant's search. A nil result with a nil error means
// the variant found nothing.
type SearchFunc func(ctx context.Context, variant string) (*boundary.SourceResult, error)

// Winner is the selected result and the variant that produced it.
type Winner struct {
	Result  *boundary.SourceResult
	Variant string
}

// Search fans out one search task per terminology variant, waits for every
// task to settle, then selects a winner:
//
//  1. the first variant in list order whose score is at least AcceptScore;
//  2. otherwise the highest-scoring non-nil result across all variants;
//  3. otherwise nil.
//
// Tasks are isolated: one variant failing or coming back empty does not
// cancel or affect the others. Losing tasks are never cancelled after an
// early winner; the search trades tail latency for coverage, since
// terminology ambiguity is the catalog's dominant failure mode.
func Search(ctx context.Context, source string, variants []string, search SearchFunc) *Winner {
	if len(variants) == 0 {
		return nil
	}

	results := make([]*boundary.SourceResult, len(variants))
	var wg sync.WaitGroup
	for i, variant := range variants {
		wg.Add(1)
		go func(i int, variant string) {
			defer wg.Done()
			res, err := search(ctx, variant)
			if err != nil {
				boundary.LogError(source, "variant "+variant, err)
				return
			}
			results[i] = res
		}(i, variant)
	}
	wg.Wait()

	for i, res := range results {
		if res != nil && res.Score >= AcceptScore {
			return tag(res, variants[i])
		}
	}

	best := -1
	for i, res := range results {
		if res == nil {
			continue
		}
		if best == -1 || res.Score > results[best].Score {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	return tag(results[best], variants[best])
}

func tag(res *boundary.SourceResult, variant string) *Winner {
	res.Metadata.TerminologyVariant = variant
	return &Winner{Result: res, Variant: variant}
}

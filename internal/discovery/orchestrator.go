package discovery

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// Request is one discovery request: where, and which boundary category.
type Request struct {
	Location     boundary.LocationQuery `json:"location"`
	BoundaryType boundary.Type          `json:"boundary_type"`
}

// Validate checks the request is answerable at all.
func (r Request) Validate() error {
	if !r.BoundaryType.Valid() {
		return fmt.Errorf("%w: %q", boundary.ErrUnknownBoundaryType, r.BoundaryType)
	}
	if strings.TrimSpace(r.Location.State) == "" {
		return boundary.ErrMissingState
	}
	if !r.Location.HasPoint() && strings.TrimSpace(r.Location.Name) == "" {
		return boundary.ErrNoQueryTerms
	}
	return nil
}

// Orchestrator is the engine entry point. It classifies the location,
// obtains the source chain from the router, and trials sources one at a
// time against the quality policy until one is accepted or all are
// exhausted. It is the only component with side effects; strategies stay
// pure.
type Orchestrator struct {
	cfg    Config
	router *Router
}

// NewOrchestrator validates the config and builds the routing pipeline once.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Orchestrator{cfg: cfg, router: BuildRouter(cfg)}, nil
}

// Discover resolves one request to one source's full result, or to a
// failure naming every source attempted. Sources are tried strictly
// sequentially: a later source's I/O only starts after the previous one
// failed, returned nothing, or scored below threshold. Speculative fan-out
// across sources would waste requests against slow authoritative backends
// even when a fast community source would have qualified.
func (o *Orchestrator) Discover(ctx context.Context, req Request) boundary.Result {
	classification := Classify(req.Location, req.BoundaryType)

	if err := req.Validate(); err != nil {
		return boundary.Result{
			Classification: classification,
			Error:          err.Error(),
		}
	}

	rctx := boundary.RoutingContext{
		BoundaryType:   req.BoundaryType,
		Location:       req.Location,
		State:          strings.ToUpper(req.Location.State),
		Classification: classification,
		RequestedAt:    time.Now(),
		Needs:          registry.NeedsFor(req.BoundaryType),
	}

	decision := o.router.Decide(rctx)
	if o.cfg.LogRouting {
		log.Printf("[discovery] %s/%s routed via %s: %s",
			req.BoundaryType, rctx.State, decision.StrategyName,
			strings.Join(decision.SourceNames(), " -> "))
		for _, reason := range decision.Reasoning {
			log.Printf("[discovery]   %s", reason)
		}
	}

	fetchReq := boundary.FetchRequest{
		Location:       req.Location,
		BoundaryType:   req.BoundaryType,
		Classification: classification,
	}

	attempts := make([]boundary.SourceAttempt, 0, len(decision.Sources))
	for _, cand := range decision.Sources {
		src := cand.New()

		result, err := src.Fetch(ctx, fetchReq)
		if err != nil {
			// A fetch error may mean a misconfigured source rather than true
			// absence of data, so it is logged with detail, but control flow
			// treats it like no-data: move on.
			boundary.LogError(src.Name(), "fetch", err)
			attempts = append(attempts, boundary.SourceAttempt{
				Source: cand.Name, Outcome: "error", Detail: err.Error(),
			})
			continue
		}
		if result == nil {
			boundary.LogSkip(cand.Name, "no data")
			attempts = append(attempts, boundary.SourceAttempt{
				Source: cand.Name, Outcome: "no_data",
			})
			continue
		}

		threshold := Threshold(req.BoundaryType, o.cfg, descriptorFor(cand.ID))
		if result.Score < threshold {
			boundary.LogSkip(cand.Name, fmt.Sprintf("score %.0f below threshold %.0f", result.Score, threshold))
			attempts = append(attempts, boundary.SourceAttempt{
				Source: cand.Name, Outcome: "below_threshold",
				Score: result.Score, Threshold: threshold,
			})
			continue
		}

		attempts = append(attempts, boundary.SourceAttempt{
			Source: cand.Name, Outcome: "accepted",
			Score: result.Score, Threshold: threshold,
		})
		return boundary.Result{
			Success:        true,
			Data:           result,
			Source:         cand.Name,
			Classification: classification,
			Score:          result.Score,
			Attempts:       attempts,
		}
	}

	return boundary.Result{
		Classification: classification,
		Attempts:       attempts,
		Error: fmt.Sprintf("no source found valid data for %s in %s; tried %d sources: %s",
			req.BoundaryType, rctx.State, len(decision.Sources),
			strings.Join(decision.SourceNames(), ", ")),
	}
}

// DiscoverBatch runs independent Discover calls concurrently, one per
// request. Requests share nothing mutable: each owns its routing context
// and result slot; only the read-only registries are shared.
func (o *Orchestrator) DiscoverBatch(ctx context.Context, reqs []Request) []boundary.Result {
	results := make([]boundary.Result, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			results[i] = o.Discover(ctx, req)
		}(i, req)
	}
	wg.Wait()
	return results
}

func descriptorFor(id boundary.SourceID) *boundary.SourceDescriptor {
	if id == "" {
		return nil
	}
	desc, ok := registry.DescriptorFor(id)
	if !ok {
		return nil
	}
	return &desc
}

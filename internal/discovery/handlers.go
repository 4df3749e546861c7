package discovery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// batchLimit caps how many requests one batch call may carry.
const batchLimit = 50

// DiscoverBoundary handles POST /discover: one request, one result. Fresh
// cache rows short-circuit the engine entirely.
func DiscoverBoundary(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cacheStart := time.Now()
	if cached, ok := LookupCache(r.Context(), req); ok {
		addServerTiming(w, [2]string{"cacheread", fmt.Sprintf("%.1f", msSince(cacheStart))})
		w.Header().Set("X-Data-Status", "cached")
		writeJSON(w, cached)
		return
	}
	cacheMS := msSince(cacheStart)

	discoverStart := time.Now()
	result := orchestrator.Discover(r.Context(), req)
	addServerTiming(w,
		[2]string{"cacheread", fmt.Sprintf("%.1f", cacheMS)},
		[2]string{"discover", fmt.Sprintf("%.1f", msSince(discoverStart))},
	)

	if result.Success {
		StoreCache(r.Context(), req, result)
		w.Header().Set("X-Data-Status", "fresh")
	}
	writeJSON(w, result)
}

// DiscoverBatchHandler handles POST /batch: independent discoveries run
// concurrently, results returned in request order.
func DiscoverBatchHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []Request `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(body.Requests) == 0 {
		http.Error(w, "No requests provided", http.StatusBadRequest)
		return
	}
	if len(body.Requests) > batchLimit {
		http.Error(w, fmt.Sprintf("Too many requests (max %d)", batchLimit), http.StatusBadRequest)
		return
	}

	start := time.Now()
	results := orchestrator.DiscoverBatch(r.Context(), body.Requests)
	addServerTiming(w, [2]string{"batch", fmt.Sprintf("%.1f", msSince(start))})

	for i, result := range results {
		if result.Success {
			StoreCache(r.Context(), body.Requests[i], result)
		}
	}
	writeJSON(w, map[string]any{"results": results})
}

// GetBoundaryTypes handles GET /types.
func GetBoundaryTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"boundary_types": boundary.AllTypes})
}

// GetSources handles GET /sources: the descriptor registry entries, so
// callers can see what each source claims to cover.
func GetSources(w http.ResponseWriter, r *http.Request) {
	type sourceOut struct {
		ID                string          `json:"id"`
		Label             string          `json:"label"`
		BoundaryTypes     []boundary.Type `json:"boundary_types,omitempty"`
		AuthorityTier     string          `json:"authority_tier"`
		CoverageGuarantee bool            `json:"coverage_guarantee"`
	}

	ids := []boundary.SourceID{
		registry.SourceHubAPI, registry.SourceTIGER,
		registry.SourceStatePortal, registry.SourceSpecialDistrict,
	}
	out := make([]sourceOut, 0, len(ids))
	for _, id := range ids {
		desc, ok := registry.DescriptorFor(id)
		if !ok {
			continue
		}
		out = append(out, sourceOut{
			ID:                string(desc.ID),
			Label:             desc.Label,
			BoundaryTypes:     desc.BoundaryTypes,
			AuthorityTier:     string(desc.Supports.AuthorityTier),
			CoverageGuarantee: desc.Supports.CoverageGuarantee,
		})
	}
	writeJSON(w, map[string]any{"sources": out})
}

// FlushCacheHandler handles DELETE /cache, optionally scoped with ?state=.
// Admin only.
func FlushCacheHandler(w http.ResponseWriter, r *http.Request) {
	deleted, err := FlushCache(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"deleted": deleted})
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/CivicAtlas/CA-Boundaries/internal/db"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// rewarm re-runs discovery for stale cache rows so interactive requests
// keep hitting fresh cache instead of paying full discovery latency.
func main() {
	godotenv.Load(".env.local")

	var (
		state  = flag.String("state", "", "only rewarm rows for this state")
		dryRun = flag.Bool("dry-run", false, "list stale rows without refetching")
	)
	flag.Parse()

	db.Connect()
	if db.DB == nil {
		log.Fatal("DATABASE_URL not set")
	}
	discovery.Init()

	cutoff := time.Now().Add(-discovery.CacheTTL)
	q := db.DB.Where("last_refreshed < ?", cutoff)
	if *state != "" {
		q = q.Where("state = ?", *state)
	}

	var stale []discovery.CachedBoundary
	if err := q.Find(&stale).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}
	fmt.Printf("Found %d stale cache rows (older than %s)\n", len(stale), cutoff.Format("2006-01-02"))
	if *dryRun {
		for _, row := range stale {
			fmt.Printf("  - %s\n", row.QueryKey)
		}
		return
	}

	cfg := discovery.DefaultConfig().LoadFromEnv()
	orch, err := discovery.NewOrchestrator(cfg)
	if err != nil {
		log.Fatalf("Orchestrator error: %v", err)
	}

	ctx := context.Background()
	refreshed, failed := 0, 0
	for _, row := range stale {
		req := discovery.Request{
			BoundaryType: boundary.Type(row.BoundaryType),
			Location: boundary.LocationQuery{
				Name:  row.Name,
				State: row.State,
				Lat:   row.Lat,
				Lng:   row.Lng,
			},
		}

		result := orch.Discover(ctx, req)
		if !result.Success {
			failed++
			log.Printf("rewarm %s failed: %s", row.QueryKey, result.Error)
			continue
		}
		discovery.StoreCache(ctx, req, result)
		refreshed++
	}

	fmt.Printf("✓ Refreshed %d rows (%d failed)\n", refreshed, failed)
}

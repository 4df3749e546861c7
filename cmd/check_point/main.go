package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/registry"
)

// check_point prints the routing decision for a query without fetching
// anything, so a misrouted request can be diagnosed offline.
func main() {
	godotenv.Load(".env.local")

	var (
		state = flag.String("state", "", "two-letter state code")
		name  = flag.String("name", "", "place name")
		lat   = flag.Float64("lat", 0, "latitude")
		lng   = flag.Float64("lng", 0, "longitude")
	)
	flag.Parse()

	if *state == "" {
		flag.Usage()
		os.Exit(2)
	}

	location := boundary.LocationQuery{Name: *name, State: *state}
	if *lat != 0 || *lng != 0 {
		location.Lat = lat
		location.Lng = lng
	}

	router := discovery.BuildRouter(discovery.DefaultConfig())

	for _, t := range boundary.AllTypes {
		classification := discovery.Classify(location, t)
		decision := router.Decide(boundary.RoutingContext{
			BoundaryType:   t,
			Location:       location,
			State:          *state,
			Classification: classification,
			RequestedAt:    time.Now(),
			Needs:          registry.NeedsFor(t),
		})

		fmt.Printf("=== %s (classified %s) ===\n", t, classification.Type)
		for i, src := range decision.Sources {
			fmt.Printf("  %d. %s\n", i+1, src.Name)
		}
		for _, reason := range decision.Reasoning {
			fmt.Printf("     - %s\n", reason)
		}
		fmt.Println()
	}
}

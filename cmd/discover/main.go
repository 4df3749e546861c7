package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

func main() {
	godotenv.Load(".env.local")

	var (
		boundaryType = flag.String("type", "", "boundary type (municipal, county, congressional, ...)")
		state        = flag.String("state", "", "two-letter state code")
		name         = flag.String("name", "", "place name")
		lat          = flag.Float64("lat", 0, "latitude")
		lng          = flag.Float64("lng", 0, "longitude")
		logRouting   = flag.Bool("v", false, "log the routing decision")
	)
	flag.Parse()

	if *boundaryType == "" || *state == "" {
		flag.Usage()
		os.Exit(2)
	}

	req := discovery.Request{
		BoundaryType: boundary.Type(*boundaryType),
		Location:     boundary.LocationQuery{Name: *name, State: *state},
	}
	if *lat != 0 || *lng != 0 {
		req.Location.Lat = lat
		req.Location.Lng = lng
	}
	if err := req.Validate(); err != nil {
		log.Fatalf("Invalid request: %v", err)
	}

	cfg := discovery.DefaultConfig().LoadFromEnv()
	cfg.LogRouting = cfg.LogRouting || *logRouting

	orch, err := discovery.NewOrchestrator(cfg)
	if err != nil {
		log.Fatalf("Orchestrator error: %v", err)
	}

	result := orch.Discover(context.Background(), req)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Encode error: %v", err)
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}

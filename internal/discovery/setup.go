package discovery

import (
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/CivicAtlas/CA-Boundaries/internal/db"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/hubapi"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/specialdistrict"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/stateportal"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/tiger"
)

// orchestrator is the process-wide engine instance, initialized in Init().
var orchestrator *Orchestrator

// DefaultConfig wires the production sources: the Hub community catalog,
// Census TIGER, state GIS portals, and state special-district authorities.
func DefaultConfig() Config {
	return Config{
		Sources: SourceFactories{
			HubAPI: func() boundary.DataSource { return hubapi.NewSource() },
			TIGER:  func(t boundary.Type) boundary.DataSource { return tiger.NewSource(t) },
			StatePortal: func(state string, t boundary.Type) boundary.DataSource {
				return stateportal.NewSource(state, t)
			},
			SpecialDistrict: func(state string) boundary.DataSource {
				return specialdistrict.NewSource(state)
			},
		},
	}
}

// Init prepares the discovery schema and builds the engine. The database is
// optional: without one the engine runs with caching disabled.
func Init() {
	if db.DB != nil {
		if err := db.EnsureSchema(db.DB, "discovery"); err != nil {
			log.Fatal("Failed to ensure schema discovery: ", err)
		}
		if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			// IF NOT EXISTS still races when several instances boot at once;
			// a duplicate error means another instance got there first.
			var pgErr *pgconn.PgError
			if !errors.As(err, &pgErr) || (pgErr.Code != "23505" && pgErr.Code != "42710") {
				log.Fatal("Failed to enable uuid-ossp extension:", err)
			}
		}
		if err := db.DB.AutoMigrate(&CachedBoundary{}); err != nil {
			log.Fatal("Failed to auto-migrate tables", err)
		}
	} else {
		log.Printf("[discovery] no database connection; result caching disabled")
	}

	cfg := DefaultConfig().LoadFromEnv()
	var err error
	orchestrator, err = NewOrchestrator(cfg)
	if err != nil {
		log.Fatal("Failed to build discovery orchestrator: ", err)
	}
	threshold := cfg.QualityThreshold
	if threshold == 0 {
		threshold = DefaultQualityThreshold
	}
	log.Printf("[discovery] orchestrator ready (threshold=%.0f)", threshold)
}

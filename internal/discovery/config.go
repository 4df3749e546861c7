package discovery

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// Common errors
var (
	ErrMissingHubAPIFactory      = errors.New("config requires a hub API source factory")
	ErrMissingTIGERFactory       = errors.New("config requires a TIGER source factory")
	ErrMissingStatePortalFactory = errors.New("config requires a state portal source factory")
	ErrBadThreshold              = errors.New("quality threshold must be between 0 and 100")
)

// SourceFactories holds the lazy constructors for every source kind. A
// factory is only invoked when a strategy actually selects that source for
// a request, so unused sources are never instantiated. Factories are
// deterministic constructors, not cached instances: invoking the same
// factory twice yields two independent source handles.
type SourceFactories struct {
	HubAPI      func() boundary.DataSource
	TIGER       func(t boundary.Type) boundary.DataSource
	StatePortal func(state string, t boundary.Type) boundary.DataSource

	// SpecialDistrict is optional; states without a registered authority
	// fall back to the community catalog.
	SpecialDistrict func(state string) boundary.DataSource
}

// Config configures one orchestrator. It is read-only once the orchestrator
// is built.
type Config struct {
	Sources SourceFactories

	// QualityThreshold is the global minimum score. Zero means
	// DefaultQualityThreshold.
	QualityThreshold float64

	// SpecialThresholds overrides the global threshold per boundary type.
	SpecialThresholds map[boundary.Type]float64

	// LogRouting logs every routing decision with its reasoning.
	LogRouting bool
}

// LoadFromEnv fills the tunable parts of a Config from the environment.
//
// Environment variables:
//   - DISCOVERY_QUALITY_THRESHOLD: global minimum score (default 60)
//   - DISCOVERY_LOG_ROUTING: "true" to log routing decisions
func (c Config) LoadFromEnv() Config {
	if raw := strings.TrimSpace(os.Getenv("DISCOVERY_QUALITY_THRESHOLD")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			c.QualityThreshold = v
		}
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("DISCOVERY_LOG_ROUTING")), "true") {
		c.LogRouting = true
	}
	return c
}

// Validate checks that the configuration can serve requests.
func (c Config) Validate() error {
	if c.Sources.HubAPI == nil {
		return ErrMissingHubAPIFactory
	}
	if c.Sources.TIGER == nil {
		return ErrMissingTIGERFactory
	}
	if c.Sources.StatePortal == nil {
		return ErrMissingStatePortalFactory
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 100 {
		return ErrBadThreshold
	}
	for _, v := range c.SpecialThresholds {
		if v < 0 || v > 100 {
			return ErrBadThreshold
		}
	}
	return nil
}

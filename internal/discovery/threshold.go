package discovery

import (
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// DefaultQualityThreshold is the global minimum score when the config
// carries no override for a boundary type.
const DefaultQualityThreshold = 60

// Floors and ceilings applied after config resolution. Special-district
// data from a state authority must clear the normal bar even if the config
// lowered it, community special-district data is useful at lower confidence,
// and a coverage-guaranteed (federal) source should never be accepted at
// marginal scores meant for community data.
const (
	specialDistrictStateFloor   = 60
	specialDistrictCommunityCap = 45
	coverageGuaranteeFloor      = 65
)

// Threshold computes the minimum acceptable score for a candidate result
// from the given source descriptor for the given boundary type. It is pure
// and is evaluated once per (source, boundary type) pair per request; the
// output is never cached across requests because per-request config
// overrides are allowed.
func Threshold(t boundary.Type, cfg Config, desc *boundary.SourceDescriptor) float64 {
	threshold := cfg.QualityThreshold
	if threshold <= 0 {
		threshold = DefaultQualityThreshold
	}
	if override, ok := cfg.SpecialThresholds[t]; ok {
		threshold = override
	}

	if desc == nil {
		return threshold
	}

	if t == boundary.SpecialDistrict {
		switch desc.Supports.AuthorityTier {
		case boundary.TierState:
			if threshold < specialDistrictStateFloor {
				threshold = specialDistrictStateFloor
			}
		case boundary.TierCommunity:
			if threshold > specialDistrictCommunityCap {
				threshold = specialDistrictCommunityCap
			}
		}
	}

	if desc.Supports.CoverageGuarantee && threshold < coverageGuaranteeFloor {
		threshold = coverageGuaranteeFloor
	}

	return threshold
}

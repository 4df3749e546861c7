package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CivicAtlas/CA-Boundaries/internal/db"
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// CacheTTL is how long an accepted result stays fresh. Boundary geometry
// changes on redistricting timescales, so weeks, not minutes.
const CacheTTL = 30 * 24 * time.Hour

// CacheKey builds the normalized cache key for a request.
func CacheKey(req Request) string {
	parts := []string{
		string(req.BoundaryType),
		strings.ToUpper(strings.TrimSpace(req.Location.State)),
	}
	if req.Location.HasPoint() {
		// Round to ~4 decimal places (~11m) so nearby lookups share a row.
		parts = append(parts, fmt.Sprintf("%.4f,%.4f", *req.Location.Lat, *req.Location.Lng))
	}
	if req.Location.Name != "" {
		parts = append(parts, NormalizePlaceName(req.Location.Name))
	}
	return strings.Join(parts, "|")
}

// LookupCache returns the cached result for a request if a fresh row
// exists. A nil database handle (no DATABASE_URL) disables caching.
func LookupCache(ctx context.Context, req Request) (*boundary.Result, bool) {
	if db.DB == nil {
		return nil, false
	}

	var row CachedBoundary
	err := db.DB.WithContext(ctx).First(&row, "query_key = ?", CacheKey(req)).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			boundary.LogError("cache", "lookup", err)
		}
		return nil, false
	}
	if time.Since(row.LastRefreshed) > CacheTTL {
		return nil, false
	}

	result := boundary.Result{
		Success: true,
		Source:  row.SourceName,
		Score:   row.Score,
		Classification: boundary.Classification{
			Type:              boundary.ClassificationType(row.Classification),
			RoutingPreference: PrefStandard,
		},
		Data: &boundary.SourceResult{
			Geometry: boundary.Geometry{
				Type:        row.GeometryType,
				Coordinates: json.RawMessage(row.GeometryJSON),
			},
			Score: row.Score,
			Metadata: boundary.ResultMetadata{
				Source:             row.SourceName,
				Publisher:          row.Publisher,
				FIPSCode:           row.FIPSCode,
				TerminologyVariant: row.TerminologyVariant,
				Notes:              row.Notes,
			},
		},
	}
	return &result, true
}

// StoreCache upserts an accepted result. Failed discoveries are never
// cached; the next caller should retry the full chain.
func StoreCache(ctx context.Context, req Request, result boundary.Result) {
	if db.DB == nil || !result.Success || result.Data == nil {
		return
	}

	row := CachedBoundary{
		QueryKey:           CacheKey(req),
		BoundaryType:       string(req.BoundaryType),
		State:              strings.ToUpper(req.Location.State),
		Name:               req.Location.Name,
		Lat:                req.Location.Lat,
		Lng:                req.Location.Lng,
		SourceName:         result.Source,
		Score:              result.Score,
		Classification:     string(result.Classification.Type),
		GeometryType:       result.Data.Geometry.Type,
		GeometryJSON:       string(result.Data.Geometry.Coordinates),
		Publisher:          result.Data.Metadata.Publisher,
		FIPSCode:           result.Data.Metadata.FIPSCode,
		TerminologyVariant: result.Data.Metadata.TerminologyVariant,
		Notes:              result.Data.Metadata.Notes,
		AttemptedSources:   attemptedSources(result),
		LastRefreshed:      time.Now(),
	}

	err := db.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_name", "score", "classification", "geometry_type",
			"geometry_json", "publisher", "fips_code", "terminology_variant",
			"notes", "attempted_sources", "last_refreshed",
		}),
	}).Create(&row).Error
	if err != nil {
		boundary.LogError("cache", "store", err)
	}
}

// FlushCache deletes cached rows, optionally scoped to one state, and
// returns how many were removed.
func FlushCache(ctx context.Context, state string) (int64, error) {
	if db.DB == nil {
		return 0, errors.New("cache disabled: no database connection")
	}

	q := db.DB.WithContext(ctx)
	if state != "" {
		q = q.Where("state = ?", strings.ToUpper(state))
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Delete(&CachedBoundary{})
	return res.RowsAffected, res.Error
}

func attemptedSources(result boundary.Result) []string {
	out := make([]string, 0, len(result.Attempts))
	for _, a := range result.Attempts {
		out = append(out, a.Source)
	}
	return out
}

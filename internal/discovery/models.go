package discovery

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CachedBoundary is one accepted discovery result persisted for reuse.
// Rows are keyed by a normalized query key and refreshed wholesale; the
// cache never stores partial results.
type CachedBoundary struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	QueryKey string    `json:"query_key" gorm:"uniqueIndex"`

	BoundaryType string   `json:"boundary_type"`
	State        string   `json:"state"`
	Name         string   `json:"name"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`

	SourceName         string         `json:"source_name"`
	Score              float64        `json:"score"`
	Classification     string         `json:"classification"`
	GeometryType       string         `json:"geometry_type"`
	GeometryJSON       string         `json:"-" gorm:"type:jsonb"`
	Publisher          string         `json:"publisher"`
	FIPSCode           string         `json:"fips_code"`
	TerminologyVariant string         `json:"terminology_variant"`
	Notes              pq.StringArray `json:"notes" gorm:"type:text[]"`
	AttemptedSources   pq.StringArray `json:"attempted_sources" gorm:"type:text[]"`

	CreatedAt     time.Time `json:"created_at"`
	LastRefreshed time.Time `json:"last_refreshed"`
}

func (CachedBoundary) TableName() string { return "discovery.cached_boundaries" }

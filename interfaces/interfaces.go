// Package interfaces defines core abstractions for the analogues API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/travelmeds/analogues-api/catalog/entities"
)

// Catalog is the read-side contract of a loaded medication table. All lookups
// are case-insensitive on name fields and exact-match (post-normalization) on
// the active ingredient. Implementations must be safe for unlimited
// concurrent reads and free of side effects.
type Catalog interface {
	// LookupByExactName resolves a name against the name, brandName and
	// activeIngredient fields, in that priority order.
	LookupByExactName(name string) (entities.MedicationRecord, bool)

	// FindByIngredientAndCountry returns every record in the given country
	// partition whose normalized ingredient equals the given one.
	FindByIngredientAndCountry(ingredient, country string) []entities.MedicationRecord

	// FindByIDs resolves ids to records, preserving input order and skipping
	// unknown ids.
	FindByIDs(ids []string) []entities.MedicationRecord

	// Records returns all records in load order.
	Records() []entities.MedicationRecord

	// Countries returns the jurisdictions present in the table, in the order
	// of the supported country set.
	Countries() []string
}

// CatalogSearcher is the contract a remote drug registry must satisfy.
// Network and parse failures are returned as errors; callers absorb them
// into empty result sets, they never abort a search.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]entities.MedicationRecord, error)
	SearchByIngredient(ctx context.Context, ingredient string, limit int) ([]entities.MedicationRecord, error)
}

// CatalogStore provides thread-safe access to the current catalog table with
// atomic operations for zero-downtime refreshes.
type CatalogStore interface {
	Catalog() Catalog
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	SetServerStartTime(startTime time.Time)

	UpdateCatalog(c Catalog)
	BeginUpdate() bool
	EndUpdate()
}

// Loader produces the full record set the catalog table is built from.
type Loader interface {
	Load() ([]entities.MedicationRecord, error)
}

// Scheduler manages the periodic catalog refresh and staleness monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports current system health.
type HealthChecker interface {
	HealthCheck() (status string, data map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}

// DataQualityReport summarizes issues found in a loaded record set.
type DataQualityReport struct {
	DuplicateIDs             []string
	RecordsWithoutName       int
	RecordsWithoutIngredient int
	UnknownCountryIDs        []string
	UnknownAvailabilityIDs   []string
	DanglingAnalogueRefs     []string
	SelfAnalogueRefs         []string
}

// DataValidator ensures record integrity at load time and screens user input
// before it reaches the resolver.
type DataValidator interface {
	ValidateRecord(m *entities.MedicationRecord) error
	ReportDataQuality(records []entities.MedicationRecord) *DataQualityReport
	ValidateQuery(input string) error
	ValidateID(input string) error
}

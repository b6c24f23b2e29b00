package catalog

import (
	"sync/atomic"
	"time"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
)

// Compile-time check to ensure Store implements CatalogStore
var _ interfaces.CatalogStore = (*Store)(nil)

// Store holds the current catalog table behind an atomic pointer so a
// refresh swaps the whole table without blocking readers.
type Store struct {
	table           atomic.Value // *Table
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewStore creates a Store holding an empty table.
func NewStore() *Store {
	s := &Store{}
	s.table.Store(NewTable(nil))
	s.lastUpdated.Store(time.Time{})
	s.serverStartTime.Store(time.Time{})
	return s
}

// Catalog returns the current table.
func (s *Store) Catalog() interfaces.Catalog {
	if v := s.table.Load(); v != nil {
		if t, ok := v.(*Table); ok {
			return t
		}
	}

	logging.Warn("Catalog table is empty or invalid")
	return NewTable(nil)
}

// GetLastUpdated returns the timestamp of the last catalog refresh.
func (s *Store) GetLastUpdated() time.Time {
	if v := s.lastUpdated.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a catalog refresh is currently in progress.
func (s *Store) IsUpdating() bool {
	return s.updating.Load()
}

// SetServerStartTime sets the server start time.
func (s *Store) SetServerStartTime(startTime time.Time) {
	s.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time.
func (s *Store) GetServerStartTime() time.Time {
	if v := s.serverStartTime.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateCatalog atomically replaces the current table (zero downtime swap).
func (s *Store) UpdateCatalog(c interfaces.Catalog) {
	t, ok := c.(*Table)
	if !ok {
		logging.Error("UpdateCatalog called with a non-table catalog, ignoring")
		return
	}

	s.table.Store(t)
	s.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a refresh. Returns true if the refresh can
// proceed, false if another one is in progress.
func (s *Store) BeginUpdate() bool {
	return s.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a refresh.
func (s *Store) EndUpdate() {
	s.updating.Store(false)
}

// Compile-time check to ensure LiveCatalog implements Catalog
var _ interfaces.Catalog = (*LiveCatalog)(nil)

// LiveCatalog is a Catalog view that reads the store's current table on every
// call. Long-lived components hold this view so a refresh swap reaches them
// without rewiring.
type LiveCatalog struct {
	store interfaces.CatalogStore
}

// NewLiveCatalog creates a catalog view backed by the given store.
func NewLiveCatalog(store interfaces.CatalogStore) *LiveCatalog {
	return &LiveCatalog{store: store}
}

func (l *LiveCatalog) LookupByExactName(name string) (entities.MedicationRecord, bool) {
	return l.store.Catalog().LookupByExactName(name)
}

func (l *LiveCatalog) FindByIngredientAndCountry(ingredient, country string) []entities.MedicationRecord {
	return l.store.Catalog().FindByIngredientAndCountry(ingredient, country)
}

func (l *LiveCatalog) FindByIDs(ids []string) []entities.MedicationRecord {
	return l.store.Catalog().FindByIDs(ids)
}

func (l *LiveCatalog) Records() []entities.MedicationRecord {
	return l.store.Catalog().Records()
}

func (l *LiveCatalog) Countries() []string {
	return l.store.Catalog().Countries()
}

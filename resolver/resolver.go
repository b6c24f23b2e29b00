// Package resolver maps a free-text user query to a single canonical
// medication record, or reports that no record matches. Resolution failure
// is a valid terminal outcome, not an error.
package resolver

import (
	"context"
	"strings"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
)

// MinQueryLength rejects queries too short to search before any lookup runs.
const MinQueryLength = 2

// Resolver resolves queries against the catalog table, with an optional
// remote registry used as a best-effort fallback when no exact entry exists.
type Resolver struct {
	catalog interfaces.Catalog
	remote  interfaces.CatalogSearcher // nil when the backend is static only
	limit   int
}

// NewResolver creates a resolver. remote may be nil.
func NewResolver(catalog interfaces.Catalog, remote interfaces.CatalogSearcher, limit int) *Resolver {
	if limit < 1 {
		limit = 10
	}
	return &Resolver{catalog: catalog, remote: remote, limit: limit}
}

// Resolve returns the canonical record for the query, trying exact matches
// on name, brand name and active ingredient first and degrading to the
// remote registry's best hit when configured.
func (r *Resolver) Resolve(ctx context.Context, query string) (entities.MedicationRecord, bool) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < MinQueryLength {
		return entities.MedicationRecord{}, false
	}

	if record, ok := r.catalog.LookupByExactName(trimmed); ok {
		return record, true
	}

	if r.remote == nil {
		return entities.MedicationRecord{}, false
	}

	// Remote fallback: accept the registry's best hit. This trades precision
	// for coverage when the local table has no exact entry.
	candidates, err := r.remote.Search(ctx, trimmed, r.limit)
	if err != nil {
		logging.Warn("Remote resolution failed, treating as not found", "query", trimmed, "error", err)
		return entities.MedicationRecord{}, false
	}
	if len(candidates) == 0 {
		return entities.MedicationRecord{}, false
	}

	// Prefer an exact hit among the returned candidates, in the same
	// priority order as the local lookup, before settling for the first.
	key := entities.NormalizeName(trimmed)
	ingredientKey := entities.NormalizeIngredient(trimmed)
	for _, c := range candidates {
		if entities.NormalizeName(c.Name) == key {
			return c, true
		}
	}
	for _, c := range candidates {
		if entities.NormalizeName(c.BrandName) == key {
			return c, true
		}
	}
	for _, c := range candidates {
		if c.ActiveIngredient == ingredientKey {
			return c, true
		}
	}

	return candidates[0], true
}

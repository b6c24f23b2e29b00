// Package matcher retrieves candidate analogues for an active ingredient
// across destination jurisdictions. Candidates come back raw: not yet
// deduplicated and not yet restricted to OTC availability.
package matcher

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
)

// ErrEmptyIngredient marks the distinct failure mode of a resolved record
// with no usable active ingredient. It is not an empty-result case.
var ErrEmptyIngredient = errors.New("active ingredient is empty")

// Matcher finds candidates by ingredient equality in the catalog's country
// partitions, augmented by curated analogue references and, when configured,
// by remote registry lookups.
type Matcher struct {
	catalog interfaces.Catalog
	remote  interfaces.CatalogSearcher // nil when the backend is static only
	limit   int
}

// NewMatcher creates a matcher. remote may be nil.
func NewMatcher(catalog interfaces.Catalog, remote interfaces.CatalogSearcher, limit int) *Matcher {
	if limit < 1 {
		limit = 10
	}
	return &Matcher{catalog: catalog, remote: remote, limit: limit}
}

// Match returns candidates for the original record in the given countries.
// Ingredient matches and curated analogue references are unioned, never
// intersected. Country lookups fan out concurrently; the merge order is
// fixed by the requested country order, so completion order never affects
// the final ordering.
func (m *Matcher) Match(ctx context.Context, original entities.MedicationRecord, countries []string) ([]entities.Candidate, error) {
	ingredient := entities.NormalizeIngredient(original.ActiveIngredient)
	if ingredient == "" {
		return nil, ErrEmptyIngredient
	}

	requested := dedupeCountries(countries)
	if len(requested) == 0 {
		requested = m.catalog.Countries()
	}
	requestedSet := make(map[string]bool, len(requested))
	for _, c := range requested {
		requestedSet[c] = true
	}

	perCountry := make([][]entities.MedicationRecord, len(requested))
	g, gctx := errgroup.WithContext(ctx)
	for i, country := range requested {
		i, country := i, country
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			perCountry[i] = m.catalog.FindByIngredientAndCountry(ingredient, country)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refs := make(map[string]bool, len(original.AnalogueRefs))
	for _, ref := range original.AnalogueRefs {
		refs[ref] = true
	}

	// An ingredient match that is also a curated reference keeps its curated
	// status; the ranker scores the stronger signal.
	var candidates []entities.Candidate
	for _, records := range perCountry {
		for _, r := range records {
			candidates = append(candidates, entities.Candidate{Record: r, Curated: refs[r.ID]})
		}
	}

	// Curated references are a manual augmentation of ingredient matching,
	// so they may cross ingredients. They still honor the destination set.
	for _, r := range m.catalog.FindByIDs(original.AnalogueRefs) {
		if requestedSet[r.Country] {
			candidates = append(candidates, entities.Candidate{Record: r, Curated: true})
		}
	}

	if m.remote != nil {
		for _, r := range runStrategies(ctx, m.remote, original, m.limit) {
			if !requestedSet[r.Country] {
				continue
			}
			// Broad strategies are recall-oriented; only records that share
			// the ingredient or were curated as equivalents may surface.
			if r.ActiveIngredient != ingredient && !refs[r.ID] {
				continue
			}
			candidates = append(candidates, entities.Candidate{Record: r, Curated: refs[r.ID]})
		}
	}

	return candidates, nil
}

// dedupeCountries drops repeated and unknown codes, preserving input order.
func dedupeCountries(countries []string) []string {
	var result []string
	seen := make(map[string]bool, len(countries))
	for _, c := range countries {
		if seen[c] || !entities.IsKnownCountry(c) {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}

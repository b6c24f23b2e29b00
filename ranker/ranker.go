// Package ranker orders, deduplicates and scores candidate analogues. The
// final ordering is determined here alone, never by candidate arrival order.
package ranker

import (
	"sort"

	"github.com/travelmeds/analogues-api/catalog/entities"
)

// Confidence values are heuristic configuration constants, not outputs of a
// scoring model.
const (
	// ConfidenceBase is assigned to a plain ingredient match.
	ConfidenceBase = 0.7
	// ConfidenceGeneric is assigned when both the generic name and the
	// active ingredient are present on the candidate.
	ConfidenceGeneric = 0.8
	// ConfidenceCurated is assigned to candidates from the curated analogue
	// reference table: a stronger signal because it was reviewed, not
	// inferred.
	ConfidenceCurated = 0.9
)

// DefaultLimit bounds the analogue list when the caller sets none.
const DefaultLimit = 10

// SortField selects the display field used to break confidence ties.
type SortField string

const (
	SortByName    SortField = "name"
	SortByCountry SortField = "country"
)

// Options configure one ranking pass.
type Options struct {
	Limit     int
	SortField SortField
}

// Rank filters, deduplicates, scores and orders candidates against the
// original medication, producing the final analogue sequence.
func Rank(original entities.MedicationRecord, candidates []entities.Candidate, opts Options) []entities.Analogue {
	limit := opts.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	analogues := make([]entities.Analogue, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		r := c.Record

		// A record is never its own analogue.
		if r.ID == original.ID {
			continue
		}
		// Same (brand, generic) pair under a different id is the same
		// product coming back from a registry; drop it.
		if sameBrandGenericPair(r, original) {
			continue
		}
		// Safety invariant: only over-the-counter products are surfaced.
		if r.Availability != entities.AvailabilityOTC {
			continue
		}
		// First occurrence of a (name, country) pair wins.
		key := entities.NormalizeName(r.DisplayName()) + "\x00" + r.Country
		if seen[key] {
			continue
		}
		seen[key] = true

		analogues = append(analogues, entities.Analogue{
			MedicationRecord: r,
			Confidence:       confidenceFor(c),
		})
	}

	sortAnalogues(analogues, opts.SortField)

	if len(analogues) > limit {
		analogues = analogues[:limit]
	}
	return analogues
}

// sameBrandGenericPair reports whether both name fields match the original's
// exactly. Originals with neither field set never trigger the defense, so
// sparsely-named candidates are not collapsed into each other.
func sameBrandGenericPair(candidate, original entities.MedicationRecord) bool {
	if original.BrandName == "" && original.GenericName == "" {
		return false
	}
	return entities.NormalizeName(candidate.BrandName) == entities.NormalizeName(original.BrandName) &&
		entities.NormalizeName(candidate.GenericName) == entities.NormalizeName(original.GenericName)
}

func confidenceFor(c entities.Candidate) float64 {
	if c.Curated {
		return ConfidenceCurated
	}
	if c.Record.GenericName != "" && c.Record.ActiveIngredient != "" {
		return ConfidenceGeneric
	}
	return ConfidenceBase
}

// sortAnalogues orders by confidence descending, breaking ties on the chosen
// display field ascending. The sort is stable so equal entries keep their
// deterministic pre-sort order.
func sortAnalogues(analogues []entities.Analogue, field SortField) {
	sort.SliceStable(analogues, func(i, j int) bool {
		if analogues[i].Confidence != analogues[j].Confidence {
			return analogues[i].Confidence > analogues[j].Confidence
		}
		return tieBreakValue(analogues[i], field) < tieBreakValue(analogues[j], field)
	})
}

func tieBreakValue(a entities.Analogue, field SortField) string {
	switch field {
	case SortByCountry:
		return a.Country
	default:
		return entities.NormalizeName(a.DisplayName())
	}
}

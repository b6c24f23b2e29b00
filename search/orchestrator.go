// Package search ties the resolver, matcher and ranker into one
// request/response cycle and produces the final SearchResult with its
// warnings and fallback messaging.
package search

import (
	"context"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
	"github.com/travelmeds/analogues-api/matcher"
	"github.com/travelmeds/analogues-api/metrics"
	"github.com/travelmeds/analogues-api/ranker"
	"github.com/travelmeds/analogues-api/resolver"
)

// State names the stages of one search cycle. A query always starts at idle;
// nothing persists between queries.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateMatching  State = "matching"
	StateRanking   State = "ranking"
	StateDone      State = "done"
)

// Low-confidence terminal outcomes. Like the ranker's scores these are
// configuration constants, not derived values.
const (
	// ConfidenceNoIngredient applies when the resolved record has no usable
	// active ingredient.
	ConfidenceNoIngredient = 0.2
	// ConfidenceNoAnalogues applies when a valid ingredient yields zero
	// qualifying matches after ranking.
	ConfidenceNoAnalogues = 0.3
)

// SafetyWarnings accompany every result. They are fixed educational text,
// never empty.
var SafetyWarnings = []string{
	"Matches are based on the active pharmaceutical ingredient and do not constitute medical advice.",
	"Dosage, strength and formulation may differ between countries even for the same ingredient.",
	"Always consult a pharmacist or physician before substituting any medication.",
}

const noIngredientMessage = "The active ingredient of this medication could not be identified, so equivalent products cannot be matched. Ask a pharmacist for an equivalent at your destination."

const noAnaloguesMessage = "No equivalent over-the-counter product was found. Possible reasons: the regulatory status differs between countries, the product is sold under a different name, the data for this region is limited, or the ingredient is restricted at the destination. Consult a pharmacist or physician before substituting any medication."

// Request is one search invocation.
type Request struct {
	Query     string
	Countries []string // destination jurisdictions; empty means all but the original's
	SortField ranker.SortField
}

// Orchestrator runs the full resolution, matching and ranking cycle.
type Orchestrator struct {
	resolver *resolver.Resolver
	matcher  *matcher.Matcher
	catalog  interfaces.Catalog
	limit    int
}

// NewOrchestrator wires the pipeline. limit bounds the analogue list.
func NewOrchestrator(res *resolver.Resolver, m *matcher.Matcher, catalog interfaces.Catalog, limit int) *Orchestrator {
	if limit < 1 {
		limit = ranker.DefaultLimit
	}
	return &Orchestrator{resolver: res, matcher: m, catalog: catalog, limit: limit}
}

// Search executes one query. A nil result means the query resolved to no
// medication; every other failure mode yields a well-formed result. Search
// never returns an error and never panics across this boundary.
func (o *Orchestrator) Search(ctx context.Context, req Request) *entities.SearchResult {
	state := StateIdle

	state = transition(state, StateResolving, req.Query)
	original, ok := o.resolver.Resolve(ctx, req.Query)
	if !ok {
		metrics.SearchesTotal.WithLabelValues("not_found").Inc()
		logging.Info("No medication found for query", "query", req.Query)
		return nil
	}

	if entities.NormalizeIngredient(original.ActiveIngredient) == "" {
		metrics.SearchesTotal.WithLabelValues("no_ingredient").Inc()
		return &entities.SearchResult{
			OriginalMedication: original,
			Analogues:          []entities.Analogue{},
			Confidence:         ConfidenceNoIngredient,
			Warnings:           SafetyWarnings,
			NoAnaloguesFound:   true,
			FallbackMessage:    noIngredientMessage,
		}
	}

	state = transition(state, StateMatching, req.Query)
	countries := req.Countries
	if len(countries) == 0 {
		countries = o.destinationsFor(original)
	}
	candidates, err := o.matcher.Match(ctx, original, countries)
	if err != nil {
		// Only the empty-ingredient mode reaches here; it is checked above,
		// but a record mutated between loads must not crash a search.
		logging.Warn("Matcher rejected resolved record", "id", original.ID, "error", err)
		candidates = nil
	}

	state = transition(state, StateRanking, req.Query)
	analogues := ranker.Rank(original, candidates, ranker.Options{
		Limit:     o.limit,
		SortField: req.SortField,
	})

	transition(state, StateDone, req.Query)

	if len(analogues) == 0 {
		metrics.SearchesTotal.WithLabelValues("no_analogues").Inc()
		return &entities.SearchResult{
			OriginalMedication: original,
			Analogues:          []entities.Analogue{},
			Confidence:         ConfidenceNoAnalogues,
			Warnings:           SafetyWarnings,
			NoAnaloguesFound:   true,
			FallbackMessage:    noAnaloguesMessage,
		}
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	return &entities.SearchResult{
		OriginalMedication: original,
		Analogues:          analogues,
		// The result confidence is the strength of the best match; the list
		// is already ordered by confidence descending.
		Confidence: analogues[0].Confidence,
		Warnings:   SafetyWarnings,
	}
}

// destinationsFor infers the destination set when the caller names none:
// every catalog jurisdiction except the original's own.
func (o *Orchestrator) destinationsFor(original entities.MedicationRecord) []string {
	var countries []string
	for _, c := range o.catalog.Countries() {
		if c != original.Country {
			countries = append(countries, c)
		}
	}
	return countries
}

func transition(from, to State, query string) State {
	logging.Debug("Search state transition", "from", string(from), "to", string(to), "query", query)
	return to
}

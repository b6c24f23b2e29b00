package matcher

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
	"github.com/travelmeds/analogues-api/metrics"
)

// Strategy describes one way to query the remote registry. Strategies are
// pure data; RemoteStrategies' order is the contract: cheapest and most
// precise first, broadest last. The first strategy yielding at least one
// result wins and no later strategy runs.
type Strategy struct {
	Name         string
	Priority     int
	ByIngredient bool // call SearchByIngredient instead of Search
	Term         func(original entities.MedicationRecord) string
}

var titleCaser = cases.Title(language.Und)

// RemoteStrategies is the fixed fallback order for remote candidate lookup.
var RemoteStrategies = []Strategy{
	{
		Name:         "ingredient",
		Priority:     1,
		ByIngredient: true,
		Term: func(m entities.MedicationRecord) string {
			return m.ActiveIngredient
		},
	},
	{
		Name:     "generic-name",
		Priority: 2,
		Term: func(m entities.MedicationRecord) string {
			return m.GenericName
		},
	},
	{
		Name:     "substance-name",
		Priority: 3,
		Term: func(m entities.MedicationRecord) string {
			// Registries index substance names in title case ("Ibuprofen"),
			// not the canonical upper-case identifier.
			return titleCaser.String(strings.ToLower(m.ActiveIngredient))
		},
	},
	{
		Name:     "broad",
		Priority: 4,
		Term: func(m entities.MedicationRecord) string {
			return m.DisplayName()
		},
	},
}

// runStrategies walks the strategy list in order and returns the first
// non-empty result set. Individual failures are logged and counted, then
// treated as zero results; only exhaustion of the whole list yields nothing.
func runStrategies(ctx context.Context, remote interfaces.CatalogSearcher, original entities.MedicationRecord, limit int) []entities.MedicationRecord {
	for _, strategy := range RemoteStrategies {
		term := strings.TrimSpace(strategy.Term(original))
		if term == "" {
			continue
		}

		var (
			records []entities.MedicationRecord
			err     error
		)
		if strategy.ByIngredient {
			records, err = remote.SearchByIngredient(ctx, term, limit)
		} else {
			records, err = remote.Search(ctx, term, limit)
		}

		switch {
		case err != nil:
			metrics.RemoteStrategyTotal.WithLabelValues(strategy.Name, "error").Inc()
			logging.Warn("Remote strategy failed, continuing with next",
				"strategy", strategy.Name, "term", term, "error", err)
		case len(records) == 0:
			metrics.RemoteStrategyTotal.WithLabelValues(strategy.Name, "empty").Inc()
		default:
			metrics.RemoteStrategyTotal.WithLabelValues(strategy.Name, "hit").Inc()
			return records
		}
	}

	return nil
}

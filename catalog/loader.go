package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
)

//go:embed seed.json
var seedData []byte

// Compile-time check to ensure SeedLoader implements Loader
var _ interfaces.Loader = (*SeedLoader)(nil)

// SeedLoader reads the curated record set, either from the embedded seed or
// from a file on disk when a path is configured. Records failing validation
// are dropped with a warning instead of poisoning the table.
type SeedLoader struct {
	path      string
	validator interfaces.DataValidator
}

// NewSeedLoader creates a loader. An empty path loads the embedded seed.
func NewSeedLoader(path string, validator interfaces.DataValidator) *SeedLoader {
	return &SeedLoader{path: path, validator: validator}
}

type seedFile struct {
	Records []entities.MedicationRecord `json:"records"`
}

// Load parses and validates the record set.
func (l *SeedLoader) Load() ([]entities.MedicationRecord, error) {
	raw := seedData
	if l.path != "" {
		fileData, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", l.path, err)
		}
		raw = fileData
	}

	var parsed seedFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog data: %w", err)
	}
	if len(parsed.Records) == 0 {
		return nil, fmt.Errorf("catalog data contains no records")
	}

	records := make([]entities.MedicationRecord, 0, len(parsed.Records))
	for i := range parsed.Records {
		r := parsed.Records[i]
		// The matching engine compares normalized ingredients only; store
		// them normalized so every downstream equality check is exact.
		r.ActiveIngredient = entities.NormalizeIngredient(r.ActiveIngredient)

		if l.validator != nil {
			if err := l.validator.ValidateRecord(&r); err != nil {
				logging.Warn("Dropping invalid catalog record", "id", r.ID, "error", err)
				continue
			}
		}
		records = append(records, r)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid records in catalog data")
	}

	return records, nil
}

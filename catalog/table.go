// Package catalog provides the medication catalog: an immutable indexed
// table built once per load, the atomic store that swaps tables without
// downtime, and the backends (embedded seed, remote registry) that feed it.
package catalog

import (
	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
)

// Compile-time check to ensure Table implements Catalog
var _ interfaces.Catalog = (*Table)(nil)

// Table is an immutable snapshot of the catalog with lookup indexes. Once
// built it is never mutated, so it is safe for unlimited concurrent reads.
type Table struct {
	records []entities.MedicationRecord

	byID   map[string]int
	byName map[string]int
	byBrand map[string]int
	// First record per ingredient, in load order. Used only for resolving a
	// query typed as an ingredient, not for analogue matching.
	byIngredient map[string]int
	// ingredient + "\x00" + country -> record indexes, in load order.
	byIngredientCountry map[string][]int

	countries []string
}

func ingredientCountryKey(ingredient, country string) string {
	return ingredient + "\x00" + country
}

// NewTable builds an indexed table from a record set. Records keep their
// input order; for every index the first record wins on key collisions.
func NewTable(records []entities.MedicationRecord) *Table {
	t := &Table{
		records:             records,
		byID:                make(map[string]int, len(records)),
		byName:              make(map[string]int, len(records)),
		byBrand:             make(map[string]int, len(records)),
		byIngredient:        make(map[string]int, len(records)),
		byIngredientCountry: make(map[string][]int, len(records)),
	}

	seen := make(map[string]bool, len(entities.Countries))
	for i := range records {
		r := &records[i]

		if _, ok := t.byID[r.ID]; !ok {
			t.byID[r.ID] = i
		}
		if key := entities.NormalizeName(r.Name); key != "" {
			if _, ok := t.byName[key]; !ok {
				t.byName[key] = i
			}
		}
		if key := entities.NormalizeName(r.BrandName); key != "" {
			if _, ok := t.byBrand[key]; !ok {
				t.byBrand[key] = i
			}
		}

		ingredient := entities.NormalizeIngredient(r.ActiveIngredient)
		if ingredient != "" {
			if _, ok := t.byIngredient[ingredient]; !ok {
				t.byIngredient[ingredient] = i
			}
			key := ingredientCountryKey(ingredient, r.Country)
			t.byIngredientCountry[key] = append(t.byIngredientCountry[key], i)
		}

		seen[r.Country] = true
	}

	// Stable country order regardless of record order
	for _, c := range entities.Countries {
		if seen[c] {
			t.countries = append(t.countries, c)
		}
	}

	return t
}

// LookupByExactName resolves a free-text name to a single record, matching
// the name, brandName and activeIngredient fields in that priority order.
func (t *Table) LookupByExactName(name string) (entities.MedicationRecord, bool) {
	key := entities.NormalizeName(name)
	if key == "" {
		return entities.MedicationRecord{}, false
	}

	if i, ok := t.byName[key]; ok {
		return t.records[i], true
	}
	if i, ok := t.byBrand[key]; ok {
		return t.records[i], true
	}
	if i, ok := t.byIngredient[entities.NormalizeIngredient(name)]; ok {
		return t.records[i], true
	}

	return entities.MedicationRecord{}, false
}

// FindByIngredientAndCountry returns every record of the country partition
// sharing the (normalized) active ingredient, in load order.
func (t *Table) FindByIngredientAndCountry(ingredient, country string) []entities.MedicationRecord {
	key := ingredientCountryKey(entities.NormalizeIngredient(ingredient), country)
	indexes := t.byIngredientCountry[key]
	if len(indexes) == 0 {
		return nil
	}

	results := make([]entities.MedicationRecord, 0, len(indexes))
	for _, i := range indexes {
		results = append(results, t.records[i])
	}
	return results
}

// FindByIDs resolves ids to records, preserving input order. Unknown ids are
// skipped, not errors: analogue references may point at records that a given
// load no longer contains.
func (t *Table) FindByIDs(ids []string) []entities.MedicationRecord {
	var results []entities.MedicationRecord
	for _, id := range ids {
		if i, ok := t.byID[id]; ok {
			results = append(results, t.records[i])
		}
	}
	return results
}

// Records returns all records in load order.
func (t *Table) Records() []entities.MedicationRecord {
	return t.records
}

// Countries returns the jurisdictions present in this table.
func (t *Table) Countries() []string {
	return t.countries
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

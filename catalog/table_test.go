package catalog

import (
	"testing"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/logging"
)

func testRecords() []entities.MedicationRecord {
	return []entities.MedicationRecord{
		{
			ID:               "us-advil",
			Name:             "Advil",
			BrandName:        "Advil",
			GenericName:      "Ibuprofen",
			ActiveIngredient: "IBUPROFEN",
			Country:          "US",
			Availability:     entities.AvailabilityOTC,
		},
		{
			ID:               "eu-nurofen",
			Name:             "Nurofen",
			BrandName:        "Nurofen",
			GenericName:      "Ibuprofen",
			ActiveIngredient: "IBUPROFEN",
			Country:          "EU",
			Availability:     entities.AvailabilityOTC,
		},
		{
			ID:               "eu-aspegic",
			Name:             "Aspégic",
			BrandName:        "Aspégic",
			GenericName:      "Acetylsalicylic acid",
			ActiveIngredient: "ACETYLSALICYLIC ACID",
			Country:          "EU",
			Availability:     entities.AvailabilityOTC,
		},
		{
			ID:               "eu-ibuprofen-800",
			Name:             "Ibuprofen Retard 800",
			GenericName:      "Ibuprofen",
			ActiveIngredient: "IBUPROFEN",
			Country:          "EU",
			Availability:     entities.AvailabilityPrescription,
		},
		{
			ID:           "us-comfortbalm",
			Name:         "ComfortBalm",
			Country:      "US",
			Availability: entities.AvailabilityOTC,
		},
	}
}

func TestLookupByExactName(t *testing.T) {
	logging.InitLogger("")
	table := NewTable(testRecords())

	tests := []struct {
		name     string
		query    string
		wantID   string
		wantHit  bool
	}{
		{"exact name", "Advil", "us-advil", true},
		{"case insensitive", "aDvIl", "us-advil", true},
		{"trims whitespace", "  Nurofen  ", "eu-nurofen", true},
		{"accent folded query", "Aspegic", "eu-aspegic", true},
		{"accented query against folded index", "Aspégic", "eu-aspegic", true},
		{"ingredient resolves to first record", "ibuprofen", "us-advil", true},
		{"unknown name", "Xyzzyplex9000", "", false},
		{"empty query", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := table.LookupByExactName(tt.query)
			if ok != tt.wantHit {
				t.Fatalf("LookupByExactName(%q) hit = %v, expected %v", tt.query, ok, tt.wantHit)
			}
			if ok && record.ID != tt.wantID {
				t.Errorf("LookupByExactName(%q) = %s, expected %s", tt.query, record.ID, tt.wantID)
			}
		})
	}
}

func TestLookupPriorityNameOverBrand(t *testing.T) {
	logging.InitLogger("")

	records := []entities.MedicationRecord{
		{ID: "branded", BrandName: "Overlap", Country: "US", Availability: entities.AvailabilityOTC},
		{ID: "named", Name: "Overlap", Country: "EU", Availability: entities.AvailabilityOTC},
	}
	table := NewTable(records)

	record, ok := table.LookupByExactName("Overlap")
	if !ok {
		t.Fatal("expected a match for Overlap")
	}
	if record.ID != "named" {
		t.Errorf("name index should win over brand index, got %s", record.ID)
	}
}

func TestFindByIngredientAndCountry(t *testing.T) {
	logging.InitLogger("")
	table := NewTable(testRecords())

	results := table.FindByIngredientAndCountry("IBUPROFEN", "EU")
	if len(results) != 2 {
		t.Fatalf("expected 2 EU ibuprofen records, got %d", len(results))
	}
	// Load order within the partition
	if results[0].ID != "eu-nurofen" || results[1].ID != "eu-ibuprofen-800" {
		t.Errorf("unexpected partition order: %s, %s", results[0].ID, results[1].ID)
	}

	// Input is normalized before lookup
	if got := table.FindByIngredientAndCountry("ibuprofen", "EU"); len(got) != 2 {
		t.Errorf("lower-case ingredient should normalize, got %d records", len(got))
	}

	if got := table.FindByIngredientAndCountry("IBUPROFEN", "CA"); got != nil {
		t.Errorf("expected nil for an empty partition, got %v", got)
	}
}

func TestFindByIDs(t *testing.T) {
	logging.InitLogger("")
	table := NewTable(testRecords())

	results := table.FindByIDs([]string{"eu-aspegic", "missing", "us-advil"})
	if len(results) != 2 {
		t.Fatalf("expected 2 records, got %d", len(results))
	}
	if results[0].ID != "eu-aspegic" || results[1].ID != "us-advil" {
		t.Errorf("input order not preserved: %s, %s", results[0].ID, results[1].ID)
	}
}

func TestCountriesStableOrder(t *testing.T) {
	logging.InitLogger("")

	// Records deliberately out of the supported country order
	records := []entities.MedicationRecord{
		{ID: "a", Name: "A", Country: "EU", Availability: entities.AvailabilityOTC},
		{ID: "b", Name: "B", Country: "US", Availability: entities.AvailabilityOTC},
	}
	table := NewTable(records)

	countries := table.Countries()
	if len(countries) != 2 || countries[0] != "US" || countries[1] != "EU" {
		t.Errorf("expected [US EU], got %v", countries)
	}
}

func TestEmptyTable(t *testing.T) {
	logging.InitLogger("")
	table := NewTable(nil)

	if table.Len() != 0 {
		t.Errorf("empty table should have no records, got %d", table.Len())
	}
	if _, ok := table.LookupByExactName("anything"); ok {
		t.Error("empty table should not resolve any name")
	}
	if countries := table.Countries(); len(countries) != 0 {
		t.Errorf("empty table should have no countries, got %v", countries)
	}
}

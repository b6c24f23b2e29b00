package validation

import (
	"testing"

	"github.com/travelmeds/analogues-api/catalog/entities"
)

func validRecord() entities.MedicationRecord {
	return entities.MedicationRecord{
		ID:               "us-ibuprofen-advil",
		Name:             "Advil",
		BrandName:        "Advil",
		GenericName:      "Ibuprofen",
		ActiveIngredient: "IBUPROFEN",
		Country:          "US",
		Availability:     entities.AvailabilityOTC,
	}
}

func TestValidateRecord(t *testing.T) {
	v := NewDataValidator()

	t.Run("valid record passes", func(t *testing.T) {
		r := validRecord()
		if err := v.ValidateRecord(&r); err != nil {
			t.Errorf("valid record should pass: %v", err)
		}
	})

	t.Run("nil record", func(t *testing.T) {
		if err := v.ValidateRecord(nil); err == nil {
			t.Error("nil record should fail")
		}
	})

	t.Run("empty id", func(t *testing.T) {
		r := validRecord()
		r.ID = "  "
		if err := v.ValidateRecord(&r); err == nil {
			t.Error("blank id should fail")
		}
	})

	t.Run("no name at all", func(t *testing.T) {
		r := validRecord()
		r.Name, r.BrandName, r.GenericName = "", "", ""
		if err := v.ValidateRecord(&r); err == nil {
			t.Error("record without any name should fail")
		}
	})

	t.Run("unknown country", func(t *testing.T) {
		r := validRecord()
		r.Country = "FR"
		if err := v.ValidateRecord(&r); err == nil {
			t.Error("unknown country should fail")
		}
	})

	t.Run("unknown availability", func(t *testing.T) {
		r := validRecord()
		r.Availability = "sometimes"
		if err := v.ValidateRecord(&r); err == nil {
			t.Error("unknown availability should fail")
		}
	})

	t.Run("unnormalized ingredient", func(t *testing.T) {
		r := validRecord()
		r.ActiveIngredient = "ibuprofen"
		if err := v.ValidateRecord(&r); err == nil {
			t.Error("lower-case ingredient should fail")
		}
	})

	t.Run("empty ingredient is allowed", func(t *testing.T) {
		r := validRecord()
		r.ActiveIngredient = ""
		if err := v.ValidateRecord(&r); err != nil {
			t.Errorf("empty ingredient should pass: %v", err)
		}
	})
}

func TestReportDataQuality(t *testing.T) {
	v := NewDataValidator()

	records := []entities.MedicationRecord{
		{ID: "dup", Name: "A", Country: "US", Availability: entities.AvailabilityOTC},
		{ID: "dup", Name: "B", Country: "US", Availability: entities.AvailabilityOTC},
		{ID: "no-ingredient", Name: "C", Country: "EU", Availability: entities.AvailabilityOTC},
		{ID: "bad-country", Name: "D", Country: "FR", Availability: entities.AvailabilityOTC},
		{ID: "bad-availability", Name: "E", Country: "US", Availability: "sometimes"},
		{ID: "self-ref", Name: "F", Country: "US", Availability: entities.AvailabilityOTC,
			AnalogueRefs: []string{"self-ref", "nowhere"}},
	}

	report := v.ReportDataQuality(records)

	if len(report.DuplicateIDs) != 1 || report.DuplicateIDs[0] != "dup" {
		t.Errorf("duplicate ids should be reported once each, got %v", report.DuplicateIDs)
	}
	// Every record in this set lacks an ingredient
	if report.RecordsWithoutIngredient != len(records) {
		t.Errorf("expected %d records without ingredient, got %d", len(records), report.RecordsWithoutIngredient)
	}
	if len(report.UnknownCountryIDs) != 1 || report.UnknownCountryIDs[0] != "bad-country" {
		t.Errorf("unexpected unknown country ids: %v", report.UnknownCountryIDs)
	}
	if len(report.UnknownAvailabilityIDs) != 1 || report.UnknownAvailabilityIDs[0] != "bad-availability" {
		t.Errorf("unexpected unknown availability ids: %v", report.UnknownAvailabilityIDs)
	}
	if len(report.SelfAnalogueRefs) != 1 || report.SelfAnalogueRefs[0] != "self-ref" {
		t.Errorf("unexpected self refs: %v", report.SelfAnalogueRefs)
	}
	if len(report.DanglingAnalogueRefs) != 1 || report.DanglingAnalogueRefs[0] != "self-ref -> nowhere" {
		t.Errorf("unexpected dangling refs: %v", report.DanglingAnalogueRefs)
	}
}

func TestValidateQuery(t *testing.T) {
	v := NewDataValidator()

	valid := []string{
		"Ibuprofen",
		"Advil",
		"Aspégic",
		"Tylenol Extra Strength",
		"Vitamin B-12",
		"co-codamol 8.500",
	}
	for _, q := range valid {
		if err := v.ValidateQuery(q); err != nil {
			t.Errorf("query %q should be valid: %v", q, err)
		}
	}

	invalid := []string{
		"",
		"a",
		"<script>alert(1)</script>",
		"'; drop table medications",
		"../../etc/passwd",
		"{$ne: null}",
		"ibuprofen | cat /etc/passwd",
		string(make([]byte, 101)),
	}
	for _, q := range invalid {
		if err := v.ValidateQuery(q); err == nil {
			t.Errorf("query %q should be rejected", q)
		}
	}
}

func TestValidateID(t *testing.T) {
	v := NewDataValidator()

	valid := []string{
		"us-ibuprofen-advil",
		"abc123",
		"8f1d2b34-5a6c-4e7d-9b80-1c2d3e4f5a6b",
	}
	for _, id := range valid {
		if err := v.ValidateID(id); err != nil {
			t.Errorf("id %q should be valid: %v", id, err)
		}
	}

	invalid := []string{
		"",
		"-leading-dash",
		"Upper-Case",
		"has space",
		"semi;colon",
		string(make([]byte, 65)),
	}
	for _, id := range invalid {
		if err := v.ValidateID(id); err == nil {
			t.Errorf("id %q should be rejected", id)
		}
	}
}

package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/travelmeds/analogues-api/catalog"
	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/logging"
)

// fakeSearcher scripts remote registry responses for tests.
type fakeSearcher struct {
	results []entities.MedicationRecord
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]entities.MedicationRecord, error) {
	f.calls++
	return f.results, f.err
}

func (f *fakeSearcher) SearchByIngredient(ctx context.Context, ingredient string, limit int) ([]entities.MedicationRecord, error) {
	f.calls++
	return f.results, f.err
}

func resolverTable() *catalog.Table {
	return catalog.NewTable([]entities.MedicationRecord{
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
	})
}

func TestResolveFromCatalog(t *testing.T) {
	logging.InitLogger("")
	r := NewResolver(resolverTable(), nil, 10)

	tests := []struct {
		query   string
		wantID  string
		wantHit bool
	}{
		{"Advil", "us-advil", true},
		{"advil", "us-advil", true},
		{"  Nurofen  ", "eu-nurofen", true},
		{"ibuprofen", "us-advil", true},
		{"Xyzzyplex9000", "", false},
		{"a", "", false},
		{"  ", "", false},
	}

	for _, tt := range tests {
		record, ok := r.Resolve(context.Background(), tt.query)
		if ok != tt.wantHit {
			t.Errorf("Resolve(%q) hit = %v, expected %v", tt.query, ok, tt.wantHit)
			continue
		}
		if ok && record.ID != tt.wantID {
			t.Errorf("Resolve(%q) = %s, expected %s", tt.query, record.ID, tt.wantID)
		}
	}
}

func TestResolveRemoteFallback(t *testing.T) {
	logging.InitLogger("")

	remote := &fakeSearcher{results: []entities.MedicationRecord{
		{ID: "reg-1", Name: "Brufen Forte", ActiveIngredient: "IBUPROFEN", Country: "EU", Availability: entities.AvailabilityOTC},
		{ID: "reg-2", Name: "Brufen", BrandName: "Brufen", ActiveIngredient: "IBUPROFEN", Country: "EU", Availability: entities.AvailabilityOTC},
	}}
	r := NewResolver(resolverTable(), remote, 10)

	// Not in the catalog, so the remote registry is consulted; the exact
	// name hit among the candidates wins over the first candidate.
	record, ok := r.Resolve(context.Background(), "Brufen")
	if !ok {
		t.Fatal("expected remote fallback to resolve")
	}
	if record.ID != "reg-2" {
		t.Errorf("exact name hit should win, got %s", record.ID)
	}

	// Catalog hits never reach the registry
	remote.calls = 0
	if _, ok := r.Resolve(context.Background(), "Advil"); !ok {
		t.Fatal("catalog hit expected")
	}
	if remote.calls != 0 {
		t.Errorf("catalog hit should not call the registry, got %d calls", remote.calls)
	}
}

func TestResolveRemoteFirstCandidateFallback(t *testing.T) {
	logging.InitLogger("")

	remote := &fakeSearcher{results: []entities.MedicationRecord{
		{ID: "reg-1", Name: "Spedifen 400", ActiveIngredient: "IBUPROFEN", Country: "EU", Availability: entities.AvailabilityOTC},
	}}
	r := NewResolver(resolverTable(), remote, 10)

	record, ok := r.Resolve(context.Background(), "Spedifen")
	if !ok {
		t.Fatal("expected the first remote candidate as a last resort")
	}
	if record.ID != "reg-1" {
		t.Errorf("expected reg-1, got %s", record.ID)
	}
}

func TestResolveRemoteFailureIsNotFound(t *testing.T) {
	logging.InitLogger("")

	remote := &fakeSearcher{err: errors.New("registry down")}
	r := NewResolver(resolverTable(), remote, 10)

	if _, ok := r.Resolve(context.Background(), "Brufen"); ok {
		t.Error("registry failure should degrade to not found, never to an error")
	}
}

func TestResolveNoRemoteConfigured(t *testing.T) {
	logging.InitLogger("")

	r := NewResolver(resolverTable(), nil, 10)
	if _, ok := r.Resolve(context.Background(), "Brufen"); ok {
		t.Error("without a registry an unknown query is simply not found")
	}
}

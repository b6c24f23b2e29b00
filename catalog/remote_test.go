package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/logging"
)

const registryFixture = `{
	"results": [
		{
			"id": "reg-001",
			"brandName": "Nurofen",
			"genericName": "Ibuprofen",
			"activeIngredients": [{"name": "ibuprofen", "strength": "200mg"}],
			"manufacturer": "Reckitt",
			"dosageForm": "tablet",
			"productType": "otc",
			"country": "EU"
		},
		{
			"brandName": "Brufen",
			"genericName": "Ibuprofen",
			"activeIngredients": [{"name": "Ibuprofen", "strength": "400mg"}],
			"productType": "prescription",
			"country": "XX"
		},
		{
			"genericName": "Mystery Compound",
			"activeIngredients": [],
			"productType": "unknown"
		}
	]
}`

func newRegistryServer(t *testing.T, wantPath string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %s, expected %s", r.URL.Path, wantPath)
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("q") == "" {
			t.Error("missing q parameter")
		}
		if r.URL.Query().Get("limit") == "" {
			t.Error("missing limit parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(registryFixture))
	}))
}

func TestRemoteSearch(t *testing.T) {
	logging.InitLogger("")

	server := newRegistryServer(t, "/products/search")
	defer server.Close()

	rc := NewRemoteCatalog(server.URL, "US", 5*time.Second)
	records, err := rc.Search(context.Background(), "nurofen", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "reg-001" {
		t.Errorf("declared ids pass through, got %s", first.ID)
	}
	if first.Name != "Nurofen" || first.BrandName != "Nurofen" {
		t.Errorf("brand name should populate both name fields, got %q/%q", first.Name, first.BrandName)
	}
	if first.ActiveIngredient != "IBUPROFEN" {
		t.Errorf("ingredient should come back normalized, got %q", first.ActiveIngredient)
	}
	if first.Strength != "200mg" {
		t.Errorf("expected strength 200mg, got %q", first.Strength)
	}
	if first.Country != "EU" {
		t.Errorf("declared known country passes through, got %s", first.Country)
	}
	if first.Availability != entities.AvailabilityOTC {
		t.Errorf("otc product type maps to OTC, got %s", first.Availability)
	}

	second := records[1]
	if second.Country != "US" {
		t.Errorf("unknown country falls back to the configured one, got %s", second.Country)
	}
	if second.Availability != entities.AvailabilityPrescription {
		t.Errorf("prescription product type maps to prescription, got %s", second.Availability)
	}

	third := records[2]
	if third.Name != "Mystery Compound" {
		t.Errorf("generic name backfills a missing brand name, got %q", third.Name)
	}
	if third.Availability != entities.AvailabilityUnavailable {
		t.Errorf("unknown product type maps to unavailable, got %s", third.Availability)
	}
	if third.ActiveIngredient != "" {
		t.Errorf("no declared ingredients should yield an empty ingredient, got %q", third.ActiveIngredient)
	}
}

func TestRemoteSearchByIngredientPath(t *testing.T) {
	logging.InitLogger("")

	server := newRegistryServer(t, "/products/ingredient")
	defer server.Close()

	rc := NewRemoteCatalog(server.URL, "US", 5*time.Second)
	records, err := rc.SearchByIngredient(context.Background(), "IBUPROFEN", 10)
	if err != nil {
		t.Fatalf("SearchByIngredient failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestRemoteDerivedIDsAreStable(t *testing.T) {
	logging.InitLogger("")

	server := newRegistryServer(t, "/products/search")
	defer server.Close()

	rc := NewRemoteCatalog(server.URL, "US", 5*time.Second)

	first, err := rc.Search(context.Background(), "brufen", 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := rc.Search(context.Background(), "brufen", 10)
	if err != nil {
		t.Fatal(err)
	}

	// The Brufen product declares no id; its derived id must not change
	// between requests.
	if first[1].ID == "" {
		t.Fatal("missing registry id should be derived, not left empty")
	}
	if first[1].ID != second[1].ID {
		t.Errorf("derived ids differ between requests: %s vs %s", first[1].ID, second[1].ID)
	}
}

func TestRemoteErrors(t *testing.T) {
	logging.InitLogger("")

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		rc := NewRemoteCatalog(server.URL, "US", 5*time.Second)
		if _, err := rc.Search(context.Background(), "nurofen", 10); err == nil {
			t.Error("expected an error for a non-200 response")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		rc := NewRemoteCatalog(server.URL, "US", 5*time.Second)
		if _, err := rc.Search(context.Background(), "nurofen", 10); err == nil {
			t.Error("expected an error for a malformed response body")
		}
	})

	t.Run("unreachable registry", func(t *testing.T) {
		rc := NewRemoteCatalog("http://127.0.0.1:1", "US", 500*time.Millisecond)
		if _, err := rc.Search(context.Background(), "nurofen", 10); err == nil {
			t.Error("expected an error for an unreachable registry")
		}
	})
}

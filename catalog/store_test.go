package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/logging"
)

func TestNewStore(t *testing.T) {
	logging.InitLogger("")

	store := NewStore()

	if store.IsUpdating() {
		t.Error("new store should not be updating")
	}
	if !store.GetLastUpdated().IsZero() {
		t.Error("new store should have zero lastUpdated time")
	}
	if store.Catalog().Records() != nil {
		t.Error("new store should hold an empty table")
	}
	if !store.GetServerStartTime().IsZero() {
		t.Error("new store should have zero server start time")
	}
}

func TestUpdateCatalog(t *testing.T) {
	logging.InitLogger("")

	store := NewStore()
	table := NewTable(testRecords())

	before := time.Now()
	store.UpdateCatalog(table)

	if got := len(store.Catalog().Records()); got != len(testRecords()) {
		t.Errorf("expected %d records after update, got %d", len(testRecords()), got)
	}
	if store.GetLastUpdated().Before(before) {
		t.Error("lastUpdated should advance on update")
	}
}

func TestBeginUpdateExcludesConcurrentRefreshes(t *testing.T) {
	logging.InitLogger("")

	store := NewStore()

	if !store.BeginUpdate() {
		t.Fatal("first BeginUpdate should succeed")
	}
	if store.BeginUpdate() {
		t.Error("second BeginUpdate should fail while a refresh is in progress")
	}
	if !store.IsUpdating() {
		t.Error("store should report updating between Begin and End")
	}

	store.EndUpdate()
	if store.IsUpdating() {
		t.Error("store should not report updating after EndUpdate")
	}
	if !store.BeginUpdate() {
		t.Error("BeginUpdate should succeed again after EndUpdate")
	}
	store.EndUpdate()
}

func TestConcurrentReadsDuringUpdate(t *testing.T) {
	logging.InitLogger("")

	store := NewStore()
	store.UpdateCatalog(NewTable(testRecords()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.UpdateCatalog(NewTable(testRecords()))
		}()
		go func() {
			defer wg.Done()
			if _, ok := store.Catalog().LookupByExactName("Advil"); !ok {
				t.Error("reads must always see a complete table")
			}
		}()
	}
	wg.Wait()
}

func TestLiveCatalogSeesRefreshedTable(t *testing.T) {
	logging.InitLogger("")

	store := NewStore()
	live := NewLiveCatalog(store)

	if _, ok := live.LookupByExactName("Advil"); ok {
		t.Fatal("live view should start empty")
	}

	store.UpdateCatalog(NewTable(testRecords()))

	record, ok := live.LookupByExactName("Advil")
	if !ok {
		t.Fatal("live view should see the swapped table without rewiring")
	}
	if record.ID != "us-advil" {
		t.Errorf("expected us-advil, got %s", record.ID)
	}

	// Swap again with a smaller table; the view must follow.
	store.UpdateCatalog(NewTable([]entities.MedicationRecord{
		{ID: "only", Name: "Only", Country: "US", Availability: entities.AvailabilityOTC},
	}))
	if _, ok := live.LookupByExactName("Advil"); ok {
		t.Error("live view should not see records from the replaced table")
	}
	if len(live.Records()) != 1 {
		t.Errorf("expected 1 record in live view, got %d", len(live.Records()))
	}
}

// Package scheduler refreshes the medication catalog on a fixed schedule and
// watches for stale data. Refreshes build a new table off to the side and
// swap it atomically, so readers are never blocked.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/travelmeds/analogues-api/catalog"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
	"github.com/travelmeds/analogues-api/metrics"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog refreshes and staleness monitoring using
// dependency injection.
type Scheduler struct {
	store     interfaces.CatalogStore
	loader    interfaces.Loader
	validator interfaces.DataValidator
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.CatalogStore, loader interfaces.Loader, validator interfaces.DataValidator) *Scheduler {
	return &Scheduler{
		store:     store,
		loader:    loader,
		validator: validator,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial catalog load and schedules the daily refresh.
func (s *Scheduler) Start() error {
	if err := s.Refresh(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At("06:00").Do(func() {
		if err := s.Refresh(); err != nil {
			logging.Error("Failed to refresh catalog", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule catalog refresh", "error", err)
		return fmt.Errorf("failed to schedule catalog refresh: %w", err)
	}

	s.scheduler.StartAsync()
	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Refresh performs one complete catalog reload and atomic swap.
func (s *Scheduler) Refresh() error {
	// Prevent concurrent refreshes
	if !s.store.BeginUpdate() {
		logging.Info("Catalog refresh already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	logging.Info("Starting catalog refresh")
	start := time.Now()

	records, err := s.loader.Load()
	if err != nil {
		logging.Error("Failed to load catalog records", "error", err)
		return fmt.Errorf("failed to load catalog records: %w", err)
	}

	report := s.validator.ReportDataQuality(records)
	if len(report.DuplicateIDs) > 0 {
		logging.Warn("Duplicate record ids detected",
			"total", len(report.DuplicateIDs),
			"id_list", report.DuplicateIDs,
		)
	}
	if report.RecordsWithoutIngredient > 0 {
		logging.Warn("Records without an active ingredient",
			"count", report.RecordsWithoutIngredient,
		)
	}
	if len(report.DanglingAnalogueRefs) > 0 {
		logging.Warn("Dangling analogue references detected",
			"total", len(report.DanglingAnalogueRefs),
			"ref_list", report.DanglingAnalogueRefs,
		)
	}
	if len(report.SelfAnalogueRefs) > 0 {
		logging.Warn("Records referencing themselves as analogues",
			"id_list", report.SelfAnalogueRefs,
		)
	}

	table := catalog.NewTable(records)
	s.store.UpdateCatalog(table)
	metrics.CatalogRecords.Set(float64(table.Len()))

	elapsed := time.Since(start)
	logging.Info("Catalog refresh completed", "duration", elapsed.String(), "record_count", table.Len())

	return nil
}

// startStalenessMonitoring warns when the catalog has not refreshed in time.
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.store.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been refreshed in over 25 hours")
			}
		}
	}()
}

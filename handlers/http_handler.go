// Package handlers provides the HTTP endpoints of the analogues API: the
// analogue search, direct record and ingredient lookups, the country list
// and the health check, with input validation and JSON rendering.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
	"github.com/travelmeds/analogues-api/ranker"
	"github.com/travelmeds/analogues-api/search"
)

// Searcher is the orchestration contract the handler depends on.
type Searcher interface {
	Search(ctx context.Context, req search.Request) *entities.SearchResult
}

// HTTPHandler serves the API endpoints with injected dependencies.
type HTTPHandler struct {
	store     interfaces.CatalogStore
	searcher  Searcher
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.CatalogStore, searcher Searcher, validator interfaces.DataValidator, health interfaces.HealthChecker) *HTTPHandler {
	return &HTTPHandler{
		store:     store,
		searcher:  searcher,
		validator: validator,
		health:    health,
	}
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// Search runs the full analogue search for the query in the URL.
// Optional query parameters: countries (comma-separated destination codes)
// and sort (name|country).
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if err := h.validator.ValidateQuery(query); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	countries, err := parseCountries(r.URL.Query().Get("countries"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortField, err := parseSortField(r.URL.Query().Get("sort"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.searcher.Search(r.Context(), search.Request{
		Query:     query,
		Countries: countries,
		SortField: sortField,
	})
	if result == nil {
		RespondWithError(w, http.StatusNotFound, "No medication found")
		return
	}

	RespondWithJSON(w, http.StatusOK, result)
}

// GetMedication finds a medication record by id
func (h *HTTPHandler) GetMedication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := h.store.Catalog().FindByIDs([]string{id})
	if len(records) == 0 {
		RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, records[0])
}

// FindByIngredient lists catalog records for an ingredient, optionally
// restricted to one country. Only OTC records leave the API, even on this
// raw view.
func (h *HTTPHandler) FindByIngredient(w http.ResponseWriter, r *http.Request) {
	ingredient := chi.URLParam(r, "ingredient")
	if err := h.validator.ValidateQuery(ingredient); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	countries, err := parseCountries(r.URL.Query().Get("country"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	table := h.store.Catalog()
	if len(countries) == 0 {
		countries = table.Countries()
	}

	results := make([]entities.MedicationRecord, 0)
	for _, country := range countries {
		for _, record := range table.FindByIngredientAndCountry(ingredient, country) {
			if record.Availability != entities.AvailabilityOTC {
				continue
			}
			results = append(results, record)
		}
	}

	RespondWithJSON(w, http.StatusOK, results)
}

// ListCountries returns the jurisdictions present in the catalog
func (h *HTTPHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"countries": h.store.Catalog().Countries(),
	})
}

// HealthCheck returns server health information
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()
	uptime := time.Since(h.store.GetServerStartTime())

	response := map[string]interface{}{
		"status":         status,
		"uptime_seconds": uptime.Seconds(),
		"data":           data,
		"system": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	RespondWithJSON(w, httpStatus, response)
}

// parseCountries splits a comma-separated country list and rejects unknown
// codes rather than silently dropping them.
func parseCountries(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var countries []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if !entities.IsKnownCountry(code) {
			return nil, &badInputError{message: "unknown country code: " + code}
		}
		countries = append(countries, code)
	}
	return countries, nil
}

func parseSortField(raw string) (ranker.SortField, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "name":
		return ranker.SortByName, nil
	case "country":
		return ranker.SortByCountry, nil
	default:
		return "", &badInputError{message: "sort must be 'name' or 'country'"}
	}
}

type badInputError struct {
	message string
}

func (e *badInputError) Error() string {
	return e.message
}

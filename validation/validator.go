// Package validation provides record integrity checks for the catalog and
// input screening for user-supplied search terms.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
)

// Pre-compiled patterns, built once at package initialization.
var (
	// Query input: letters (accents included), digits and safe punctuation
	queryRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'àâäéèêëïîôöùûüÿçÀÂÄÉÈÊËÏÎÔÖÙÛÜŸÇ]+$`)

	// Record ids: lower-case slug or uuid-like
	idRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*$`)

	// Dangerous substrings screened before any search runs.
	// strings.Contains is considerably faster than regex for these.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"' or ", "\" or ", "union select", "drop table", "delete from",
		"insert into", "--", "/*", "*/",
		"; ", "| ", "& ", "`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

const (
	// MinQueryLength rejects queries too short to resolve meaningfully.
	MinQueryLength = 2
	// MaxQueryLength bounds the free-text input.
	MaxQueryLength = 100
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateRecord checks record invariants: a usable id, at least one display
// name, a known jurisdiction and a known availability class. An empty active
// ingredient is allowed; such records resolve but never match.
func (v *DataValidatorImpl) ValidateRecord(m *entities.MedicationRecord) error {
	if m == nil {
		return fmt.Errorf("record is nil")
	}

	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("empty record id")
	}

	if !m.HasName() {
		return fmt.Errorf("record %s has no name, brand name or generic name", m.ID)
	}

	if len(m.DisplayName()) > 200 {
		return fmt.Errorf("display name too long for record %s: %d characters", m.ID, len(m.DisplayName()))
	}

	if !entities.IsKnownCountry(m.Country) {
		return fmt.Errorf("unknown country %q for record %s", m.Country, m.ID)
	}

	switch m.Availability {
	case entities.AvailabilityOTC, entities.AvailabilityPrescription, entities.AvailabilityUnavailable:
	default:
		return fmt.Errorf("unknown availability %q for record %s", m.Availability, m.ID)
	}

	if m.ActiveIngredient != entities.NormalizeIngredient(m.ActiveIngredient) {
		return fmt.Errorf("ingredient not normalized for record %s: %q", m.ID, m.ActiveIngredient)
	}

	return nil
}

// ReportDataQuality generates a data quality report with all issues found.
func (v *DataValidatorImpl) ReportDataQuality(records []entities.MedicationRecord) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{}

	idCount := make(map[string]int, len(records))
	for _, r := range records {
		idCount[r.ID]++
	}
	for _, r := range records {
		if idCount[r.ID] > 1 {
			idCount[r.ID] = 0 // report each duplicate id once
			report.DuplicateIDs = append(report.DuplicateIDs, r.ID)
		}
	}

	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.ID] = true
	}

	for _, r := range records {
		if !r.HasName() {
			report.RecordsWithoutName++
		}
		if entities.NormalizeIngredient(r.ActiveIngredient) == "" {
			report.RecordsWithoutIngredient++
		}
		if !entities.IsKnownCountry(r.Country) {
			report.UnknownCountryIDs = append(report.UnknownCountryIDs, r.ID)
		}
		switch r.Availability {
		case entities.AvailabilityOTC, entities.AvailabilityPrescription, entities.AvailabilityUnavailable:
		default:
			report.UnknownAvailabilityIDs = append(report.UnknownAvailabilityIDs, r.ID)
		}
		for _, ref := range r.AnalogueRefs {
			if ref == r.ID {
				report.SelfAnalogueRefs = append(report.SelfAnalogueRefs, r.ID)
			} else if !known[ref] {
				report.DanglingAnalogueRefs = append(report.DanglingAnalogueRefs, r.ID+" -> "+ref)
			}
		}
	}

	return report
}

// ValidateQuery validates a user-supplied search term before resolution.
func (v *DataValidatorImpl) ValidateQuery(input string) error {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < MinQueryLength {
		return fmt.Errorf("query must be at least %d characters", MinQueryLength)
	}
	if len(trimmed) > MaxQueryLength {
		return fmt.Errorf("query must be at most %d characters", MaxQueryLength)
	}

	lowered := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return fmt.Errorf("query contains invalid sequence")
		}
	}

	if !queryRegex.MatchString(trimmed) {
		return fmt.Errorf("query contains unsupported characters")
	}

	return nil
}

// ValidateID validates a record id supplied in a URL.
func (v *DataValidatorImpl) ValidateID(input string) error {
	if input == "" {
		return fmt.Errorf("empty id")
	}
	if len(input) > 64 {
		return fmt.Errorf("id too long: %d characters", len(input))
	}
	if !idRegex.MatchString(input) {
		return fmt.Errorf("invalid id format")
	}
	return nil
}

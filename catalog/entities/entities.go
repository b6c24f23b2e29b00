// Package entities defines the medication records exchanged between the
// catalog, the matching engine and the HTTP layer.
package entities

// Availability classifies how a product can be obtained in its jurisdiction.
// Only OTC records are ever surfaced to end users.
type Availability string

const (
	AvailabilityOTC          Availability = "otc"
	AvailabilityPrescription Availability = "prescription"
	AvailabilityUnavailable  Availability = "unavailable"
)

// Countries is the closed set of jurisdiction codes the catalog partitions on.
var Countries = []string{"US", "EU", "UK", "CA"}

// IsKnownCountry reports whether code belongs to the supported jurisdiction set.
func IsKnownCountry(code string) bool {
	for _, c := range Countries {
		if c == code {
			return true
		}
	}
	return false
}

// MedicationRecord is one product in one jurisdiction. Records are immutable
// once loaded; a search never mutates them.
type MedicationRecord struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	BrandName        string       `json:"brandName,omitempty"`
	GenericName      string       `json:"genericName,omitempty"`
	ActiveIngredient string       `json:"activeIngredient"`
	DosageForm       string       `json:"dosageForm,omitempty"`
	Strength         string       `json:"strength,omitempty"`
	Country          string       `json:"country"`
	Availability     Availability `json:"availability"`
	Manufacturer     string       `json:"manufacturer,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	Interactions     []string     `json:"interactions,omitempty"`
	Description      string       `json:"description,omitempty"`

	// AnalogueRefs point at records in other jurisdictions that were curated
	// as equivalents. They augment ingredient-based matching, they never
	// replace it.
	AnalogueRefs []string `json:"analogueRefs,omitempty"`
}

// DisplayName returns the first non-empty display string, in the same
// priority order the resolver matches on.
func (m MedicationRecord) DisplayName() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.BrandName != "":
		return m.BrandName
	default:
		return m.GenericName
	}
}

// HasName reports whether at least one display string is present. Records
// without any name are unusable and rejected at load time.
func (m MedicationRecord) HasName() bool {
	return m.Name != "" || m.BrandName != "" || m.GenericName != ""
}

// Candidate is a record proposed by the matcher before ranking. Curated marks
// candidates reached through AnalogueRefs rather than ingredient equality;
// the ranker scores those higher.
type Candidate struct {
	Record  MedicationRecord
	Curated bool
}

// Analogue is a ranked, deduplicated match with its per-item confidence.
type Analogue struct {
	MedicationRecord
	Confidence float64 `json:"confidence"`
}

// SearchResult is the outcome of one full search cycle. It is derived per
// query and never persisted.
type SearchResult struct {
	OriginalMedication MedicationRecord `json:"originalMedication"`
	Analogues          []Analogue       `json:"analogues"`
	Confidence         float64          `json:"confidence"`
	Warnings           []string         `json:"warnings"`
	NoAnaloguesFound   bool             `json:"noAnaloguesFound,omitempty"`
	FallbackMessage    string           `json:"fallbackMessage,omitempty"`
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/travelmeds/analogues-api/catalog/entities"
	"github.com/travelmeds/analogues-api/interfaces"
)

// Compile-time check to ensure RemoteCatalog implements CatalogSearcher
var _ interfaces.CatalogSearcher = (*RemoteCatalog)(nil)

// Namespace for deriving stable ids from remote products that carry none.
// Derived ids must not change between requests, otherwise repeated searches
// would disagree on identity.
var remoteIDNamespace = uuid.MustParse("8f1d2b34-5a6c-4e7d-9b80-1c2d3e4f5a6b")

// RemoteCatalog queries an external drug registry over HTTP. It satisfies
// the same search contract as the static table's callers expect; transport
// and decoding failures are returned as errors and absorbed upstream into
// empty result sets.
type RemoteCatalog struct {
	baseURL string
	country string
	client  *http.Client
}

// NewRemoteCatalog creates a client for the registry at baseURL. Products
// that do not declare a jurisdiction are attributed to country.
func NewRemoteCatalog(baseURL, country string, timeout time.Duration) *RemoteCatalog {
	return &RemoteCatalog{
		baseURL: baseURL,
		country: country,
		client:  &http.Client{Timeout: timeout},
	}
}

type remoteIngredient struct {
	Name     string `json:"name"`
	Strength string `json:"strength"`
}

type remoteProduct struct {
	ID                string             `json:"id"`
	BrandName         string             `json:"brandName"`
	GenericName       string             `json:"genericName"`
	ActiveIngredients []remoteIngredient `json:"activeIngredients"`
	Manufacturer      string             `json:"manufacturer"`
	DosageForm        string             `json:"dosageForm"`
	ProductType       string             `json:"productType"`
	Country           string             `json:"country"`
	Warnings          []string           `json:"warnings"`
	Interactions      []string           `json:"interactions"`
}

// Search performs a free-text product search.
func (rc *RemoteCatalog) Search(ctx context.Context, query string, limit int) ([]entities.MedicationRecord, error) {
	return rc.get(ctx, "/products/search", query, limit)
}

// SearchByIngredient searches on the registry's active ingredient field.
func (rc *RemoteCatalog) SearchByIngredient(ctx context.Context, ingredient string, limit int) ([]entities.MedicationRecord, error) {
	return rc.get(ctx, "/products/ingredient", ingredient, limit)
}

func (rc *RemoteCatalog) get(ctx context.Context, path, query string, limit int) ([]entities.MedicationRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	requestURL := rc.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, path)
	}

	var parsed struct {
		Results []remoteProduct `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}

	records := make([]entities.MedicationRecord, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		records = append(records, rc.toRecord(p))
	}
	return records, nil
}

func (rc *RemoteCatalog) toRecord(p remoteProduct) entities.MedicationRecord {
	var ingredient, strength string
	if len(p.ActiveIngredients) > 0 {
		ingredient = entities.NormalizeIngredient(p.ActiveIngredients[0].Name)
		strength = p.ActiveIngredients[0].Strength
	}

	country := p.Country
	if !entities.IsKnownCountry(country) {
		country = rc.country
	}

	record := entities.MedicationRecord{
		ID:               p.ID,
		Name:             p.BrandName,
		BrandName:        p.BrandName,
		GenericName:      p.GenericName,
		ActiveIngredient: ingredient,
		DosageForm:       p.DosageForm,
		Strength:         strength,
		Country:          country,
		Availability:     availabilityFromProductType(p.ProductType),
		Manufacturer:     p.Manufacturer,
		Warnings:         p.Warnings,
		Interactions:     p.Interactions,
	}

	if record.Name == "" {
		record.Name = p.GenericName
	}
	if record.ID == "" {
		// Identity of a registry product is its (country, names, strength)
		// tuple; a v5 uuid over that tuple is stable across requests.
		seed := country + "|" + p.BrandName + "|" + p.GenericName + "|" + strength
		record.ID = uuid.NewSHA1(remoteIDNamespace, []byte(seed)).String()
	}

	return record
}

func availabilityFromProductType(productType string) entities.Availability {
	switch productType {
	case "otc":
		return entities.AvailabilityOTC
	case "prescription":
		return entities.AvailabilityPrescription
	default:
		// Unknown regulatory status is never surfaced to users.
		return entities.AvailabilityUnavailable
	}
}

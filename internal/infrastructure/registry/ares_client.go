package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/config"
)

const (
	// maxAresResponseSize limits the response body size to prevent memory exhaustion
	maxAresResponseSize = 1 * 1024 * 1024 // 1MB max response

	defaultAresBaseURL = "https://ares.gov.cz/ekonomicke-subjekty-v-be/rest"
	defaultAresTimeout = 10 * time.Second
)

// AresClient implements partner.CompanyRegistry against the ARES public
// business registry REST API.
type AresClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAresClient creates a new ARES registry client from configuration
func NewAresClient(cfg config.RegistryConfig) *AresClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAresBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAresTimeout
	}

	return &AresClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// aresSubjectResponse maps the subset of the ARES economic-subject payload
// the prefill needs.
type aresSubjectResponse struct {
	ICO           string    `json:"ico"`
	DIC           string    `json:"dic"`
	BusinessName  string    `json:"obchodniJmeno"`
	Seat          aresSeat  `json:"sidlo"`
	Registrations aresFlags `json:"seznamRegistraci"`
}

type aresSeat struct {
	StreetName   string `json:"nazevUlice"`
	HouseNumber  int    `json:"cisloDomovni"`
	OrientNumber int    `json:"cisloOrientacni"`
	Municipality string `json:"nazevObce"`
	PostalCode   int    `json:"psc"`
	TextAddress  string `json:"textovaAdresa"`
}

type aresFlags struct {
	VATRegistry string `json:"stavZdrojeDph"`
}

// LookupByICO fetches the registry record for the given company identifier.
// Returns shared.ErrNotFound when ARES has no such subject.
func (c *AresClient) LookupByICO(ctx context.Context, ico string) (*partner.CompanyRecord, error) {
	if err := partner.ValidateICO(ico); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/ekonomicke-subjekty/%s", c.baseURL, ico)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAresResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, shared.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var subject aresSubjectResponse
	if err := json.Unmarshal(body, &subject); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}

	return &partner.CompanyRecord{
		ICO:        subject.ICO,
		DIC:        subject.DIC,
		Name:       subject.BusinessName,
		Street:     formatStreet(subject.Seat),
		City:       subject.Seat.Municipality,
		PostalCode: formatPostalCode(subject.Seat.PostalCode),
		IsVATPayer: subject.Registrations.VATRegistry == "AKTIVNI",
	}, nil
}

// formatStreet renders the street line the way Czech addresses are written:
// street name, house number, optionally /orientation number. Subjects without
// a named street fall back to the registry's textual address.
func formatStreet(seat aresSeat) string {
	if seat.StreetName == "" {
		return seat.TextAddress
	}
	street := seat.StreetName
	if seat.HouseNumber > 0 {
		street += " " + strconv.Itoa(seat.HouseNumber)
		if seat.OrientNumber > 0 {
			street += "/" + strconv.Itoa(seat.OrientNumber)
		}
	}
	return street
}

func formatPostalCode(psc int) string {
	if psc <= 0 {
		return ""
	}
	return fmt.Sprintf("%05d", psc)
}

// Ensure AresClient implements CompanyRegistry
var _ partner.CompanyRegistry = (*AresClient)(nil)

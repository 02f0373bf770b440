package externalapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/resilience"
)

// OpenFDAAPIName labels OpenFDA in errors, logs and health statuses.
const OpenFDAAPIName = "OpenFDA"

// DefaultOpenFDABaseURL is the public OpenFDA drug endpoint.
const DefaultOpenFDABaseURL = "https://api.fda.gov/drug"

// interaction descriptions are clamped to the persisted column size.
const maxInteractionDescription = 1000

// OpenFDAService calls the OpenFDA drug label API.
type OpenFDAService struct {
	rest restClient
}

// NewOpenFDAService builds a client; nil doer, limiter and policy fall back
// the same way as NewRxNormService.
func NewOpenFDAService(baseURL string, doer httpDoer, limiter Limiter, policy *resilience.Policy) *OpenFDAService {
	if baseURL == "" {
		baseURL = DefaultOpenFDABaseURL
	}
	return &OpenFDAService{rest: newRestClient(OpenFDAAPIName, baseURL, doer, limiter, policy)}
}

// SearchDrugs searches labels by brand or generic name. A 404 from OpenFDA
// means "no matches" and yields an empty response.
func (s *OpenFDAService) SearchDrugs(ctx context.Context, term string, limit int) (*FDADrugResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	clean := cleanSearchTerm(term)
	path := fmt.Sprintf(`label.json?search=openfda.brand_name:%q+openfda.generic_name:%q&limit=%d`,
		clean, clean, limit)

	var resp FDADrugResponse
	if err := s.rest.getJSON(ctx, "search_drugs", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return &FDADrugResponse{Results: []FDADrugResult{}}, nil
		}
		return nil, err
	}

	slog.Debug("OpenFDA drug search", "term", term, "results", len(resp.Results))
	return &resp, nil
}

// SearchByRxCui returns the label matching an RxCui, empty when unknown.
func (s *OpenFDAService) SearchByRxCui(ctx context.Context, rxCui string) (*FDADrugResponse, error) {
	path := fmt.Sprintf(`label.json?search=openfda.rxcui:%q&limit=1`, rxCui)

	var resp FDADrugResponse
	if err := s.rest.getJSON(ctx, "search_by_rxcui", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return &FDADrugResponse{Results: []FDADrugResult{}}, nil
		}
		return nil, err
	}
	return &resp, nil
}

// GetDrugLabel returns the label for one NDC, or nil when not found.
func (s *OpenFDAService) GetDrugLabel(ctx context.Context, ndc string) (*FDADrugResult, error) {
	path := fmt.Sprintf(`label.json?search=openfda.product_ndc:%q&limit=1`, ndc)

	var resp FDADrugResponse
	if err := s.rest.getJSON(ctx, "drug_label", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// GetDrugInteractions extracts interaction records from the label of one
// RxCui.
func (s *OpenFDAService) GetDrugInteractions(ctx context.Context, rxCui string) ([]entities.DrugInteraction, error) {
	resp, err := s.SearchByRxCui(ctx, rxCui)
	if err != nil {
		return nil, err
	}

	interactions := []entities.DrugInteraction{}
	if len(resp.Results) == 0 {
		return interactions, nil
	}

	for _, text := range resp.Results[0].DrugInteractions {
		if in := parseInteractionText(text, rxCui); in != nil {
			interactions = append(interactions, *in)
		}
	}

	slog.Debug("OpenFDA interactions by rxcui", "rxcui", rxCui, "count", len(interactions))
	return interactions, nil
}

// GetDrugInteractionsByNames searches labels whose drug_interactions section
// mentions both names, returning one record per distinct interaction text.
// The caller stamps identifiers onto the records it keeps.
func (s *OpenFDAService) GetDrugInteractionsByNames(ctx context.Context, name1, name2 string) ([]entities.DrugInteraction, error) {
	interactions := []entities.DrugInteraction{}
	if cleanSearchTerm(name1) == "" || cleanSearchTerm(name2) == "" {
		return interactions, nil
	}

	enc1 := url.QueryEscape(cleanSearchTerm(name1))
	enc2 := url.QueryEscape(cleanSearchTerm(name2))
	path := fmt.Sprintf("label.json?search=drug_interactions:%s+AND+drug_interactions:%s&limit=100", enc1, enc2)

	var resp FDADrugResponse
	if err := s.rest.getJSON(ctx, "interactions_by_names", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return interactions, nil
		}
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, result := range resp.Results {
		for _, text := range result.DrugInteractions {
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}

			if in := parseInteractionText(text, ""); in != nil {
				interactions = append(interactions, *in)
			}
		}
	}

	slog.Debug("OpenFDA interactions by names",
		"drug1", name1, "drug2", name2, "count", len(interactions))
	return interactions, nil
}

// parseInteractionText builds an interaction record from a label paragraph,
// inferring severity from its wording.
func parseInteractionText(text, rxCui string) *entities.DrugInteraction {
	if text == "" {
		return nil
	}

	description := text
	if len(description) > maxInteractionDescription {
		description = description[:maxInteractionDescription]
	}

	return &entities.DrugInteraction{
		Drug1RxCui:      rxCui,
		Severity:        SeverityFromText(text),
		InteractionType: "Drug-Drug Interaction",
		Description:     description,
		Source:          OpenFDAAPIName,
		SourceDate:      time.Now(),
	}
}

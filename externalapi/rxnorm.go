package externalapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/medtrack/medication-api/resilience"
)

// RxNormAPIName labels RxNorm in errors, logs and health statuses.
const RxNormAPIName = "RxNorm"

// DefaultRxNormBaseURL is the public RxNav endpoint.
const DefaultRxNormBaseURL = "https://rxnav.nlm.nih.gov/REST"

// RxNormService calls the RxNorm vocabulary API.
type RxNormService struct {
	rest restClient
}

// NewRxNormService builds a client. doer may be nil for a default
// http.Client; limiter may be nil for no throttling; policy may be nil for
// unguarded calls.
func NewRxNormService(baseURL string, doer httpDoer, limiter Limiter, policy *resilience.Policy) *RxNormService {
	if baseURL == "" {
		baseURL = DefaultRxNormBaseURL
	}
	return &RxNormService{rest: newRestClient(RxNormAPIName, baseURL, doer, limiter, policy)}
}

// SearchApproximate returns approximate-match candidates for a free-text
// term. An empty candidate list is a normal result.
func (s *RxNormService) SearchApproximate(ctx context.Context, term string) ([]RxNormCandidate, error) {
	path := fmt.Sprintf("approximateTerm.json?term=%s&maxEntries=20", url.QueryEscape(term))

	var resp rxNormApproximateResponse
	if err := s.rest.getJSON(ctx, "search_approximate", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return []RxNormCandidate{}, nil
		}
		return nil, err
	}

	if resp.ApproximateGroup == nil {
		return []RxNormCandidate{}, nil
	}
	slog.Debug("RxNorm approximate search", "term", term, "candidates", len(resp.ApproximateGroup.Candidates))
	return resp.ApproximateGroup.Candidates, nil
}

// GetRxCuiProperties returns the canonical properties of one RxCui, or nil
// when the identifier is unknown.
func (s *RxNormService) GetRxCuiProperties(ctx context.Context, rxCui string) (*RxNormProperties, error) {
	path := fmt.Sprintf("rxcui/%s/properties.json", url.PathEscape(rxCui))

	var resp rxNormPropertiesResponse
	if err := s.rest.getJSON(ctx, "rxcui_properties", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Properties, nil
}

// GetActiveIngredients returns the distinct ingredient names (TTY=IN) of an
// RxCui.
func (s *RxNormService) GetActiveIngredients(ctx context.Context, rxCui string) ([]string, error) {
	path := fmt.Sprintf("rxcui/%s/related.json?tty=IN", url.PathEscape(rxCui))

	var resp rxNormRelatedResponse
	if err := s.rest.getJSON(ctx, "active_ingredients", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	ingredients := []string{}
	seen := make(map[string]struct{})
	if resp.RelatedGroup != nil {
		for _, group := range resp.RelatedGroup.ConceptGroup {
			if group.TTY != "IN" {
				continue
			}
			for _, cp := range group.ConceptProperties {
				if _, ok := seen[cp.Name]; ok {
					continue
				}
				seen[cp.Name] = struct{}{}
				ingredients = append(ingredients, cp.Name)
			}
		}
	}

	slog.Debug("RxNorm active ingredients", "rxcui", rxCui, "count", len(ingredients))
	return ingredients, nil
}

// GetDrugClasses returns ATC drug class names for an RxCui.
func (s *RxNormService) GetDrugClasses(ctx context.Context, rxCui string) ([]string, error) {
	path := fmt.Sprintf("rxclass/class/byRxcui.json?rxcui=%s&relaSource=ATC", url.QueryEscape(rxCui))

	var resp rxClassResponse
	if err := s.rest.getJSON(ctx, "drug_classes", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	classes := []string{}
	seen := make(map[string]struct{})
	if resp.RxClassDrugInfoList != nil {
		for _, info := range resp.RxClassDrugInfoList.RxClassDrugInfo {
			name := info.RxClassMinConceptItem.ClassName
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			classes = append(classes, name)
		}
	}
	return classes, nil
}

// GetRelatedDrugs returns concepts related to an RxCui, optionally filtered
// by relationship term type.
func (s *RxNormService) GetRelatedDrugs(ctx context.Context, rxCui, relationship string) ([]RxNormConceptProperty, error) {
	path := fmt.Sprintf("rxcui/%s/related.json", url.PathEscape(rxCui))
	if relationship != "" {
		path += "?tty=" + url.QueryEscape(relationship)
	}

	var resp rxNormRelatedResponse
	if err := s.rest.getJSON(ctx, "related_drugs", path, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return []RxNormConceptProperty{}, nil
		}
		return nil, err
	}

	related := []RxNormConceptProperty{}
	if resp.RelatedGroup != nil {
		for _, group := range resp.RelatedGroup.ConceptGroup {
			related = append(related, group.ConceptProperties...)
		}
	}
	return related, nil
}

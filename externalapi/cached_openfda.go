package externalapi

import (
	"context"
	"fmt"

	"github.com/medtrack/medication-api/cache"
	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/metrics"
)

// openFDAAPI mirrors the OpenFDA client surface for decorator composition.
type openFDAAPI interface {
	SearchDrugs(ctx context.Context, term string, limit int) (*FDADrugResponse, error)
	SearchByRxCui(ctx context.Context, rxCui string) (*FDADrugResponse, error)
	GetDrugLabel(ctx context.Context, ndc string) (*FDADrugResult, error)
	GetDrugInteractions(ctx context.Context, rxCui string) ([]entities.DrugInteraction, error)
	GetDrugInteractionsByNames(ctx context.Context, name1, name2 string) ([]entities.DrugInteraction, error)
}

// CachedOpenFDAService memoizes OpenFDA lookups. Same policy as the RxNorm
// decorator: empty lists cache, nil single-entity results do not.
type CachedOpenFDAService struct {
	inner openFDAAPI
	store *cache.Store
}

// NewCachedOpenFDAService wraps inner with the shared store.
func NewCachedOpenFDAService(inner openFDAAPI, store *cache.Store) *CachedOpenFDAService {
	return &CachedOpenFDAService{inner: inner, store: store}
}

// SearchDrugs caches label searches for the short tier.
func (c *CachedOpenFDAService) SearchDrugs(ctx context.Context, term string, limit int) (*FDADrugResponse, error) {
	key := cache.Key("openfda_search", term, fmt.Sprintf("%d", limit))
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(OpenFDAAPIName).Inc()
		return v.(*FDADrugResponse), nil
	}
	metrics.CacheMisses.WithLabelValues(OpenFDAAPIName).Inc()

	result, err := c.inner.SearchDrugs(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.SearchTTL)
	return result, nil
}

// SearchByRxCui caches RxCui label lookups for the medium tier.
func (c *CachedOpenFDAService) SearchByRxCui(ctx context.Context, rxCui string) (*FDADrugResponse, error) {
	key := cache.Key("openfda_rxcui", rxCui)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(OpenFDAAPIName).Inc()
		return v.(*FDADrugResponse), nil
	}
	metrics.CacheMisses.WithLabelValues(OpenFDAAPIName).Inc()

	result, err := c.inner.SearchByRxCui(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.DetailTTL)
	return result, nil
}

// GetDrugLabel caches NDC label lookups for the medium tier; nil results
// are never cached so a transient "not found" retries next call.
func (c *CachedOpenFDAService) GetDrugLabel(ctx context.Context, ndc string) (*FDADrugResult, error) {
	key := cache.Key("openfda_label", ndc)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(OpenFDAAPIName).Inc()
		return v.(*FDADrugResult), nil
	}
	metrics.CacheMisses.WithLabelValues(OpenFDAAPIName).Inc()

	result, err := c.inner.GetDrugLabel(ctx, ndc)
	if err != nil {
		return nil, err
	}
	if result != nil {
		c.store.Set(key, result, cache.DetailTTL)
	}
	return result, nil
}

// GetDrugInteractions caches interaction extraction for the long tier.
func (c *CachedOpenFDAService) GetDrugInteractions(ctx context.Context, rxCui string) ([]entities.DrugInteraction, error) {
	key := cache.Key("openfda_interactions", rxCui)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(OpenFDAAPIName).Inc()
		return v.([]entities.DrugInteraction), nil
	}
	metrics.CacheMisses.WithLabelValues(OpenFDAAPIName).Inc()

	result, err := c.inner.GetDrugInteractions(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.DerivedTTL)
	return result, nil
}

// GetDrugInteractionsByNames caches pairwise interaction searches for the
// long tier. The key normalizes both names, so argument order matters only
// through the upstream query, not the cache.
func (c *CachedOpenFDAService) GetDrugInteractionsByNames(ctx context.Context, name1, name2 string) ([]entities.DrugInteraction, error) {
	key := cache.Key("openfda_interaction_pair", name1, name2)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(OpenFDAAPIName).Inc()
		return v.([]entities.DrugInteraction), nil
	}
	metrics.CacheMisses.WithLabelValues(OpenFDAAPIName).Inc()

	result, err := c.inner.GetDrugInteractionsByNames(ctx, name1, name2)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.DerivedTTL)
	return result, nil
}

package externalapi

import (
	"context"
	"log/slog"

	"github.com/medtrack/medication-api/cache"
	"github.com/medtrack/medication-api/metrics"
)

// rxNormAPI mirrors the RxNorm client surface so the decorator composes
// over any implementation.
type rxNormAPI interface {
	SearchApproximate(ctx context.Context, term string) ([]RxNormCandidate, error)
	GetRxCuiProperties(ctx context.Context, rxCui string) (*RxNormProperties, error)
	GetActiveIngredients(ctx context.Context, rxCui string) ([]string, error)
	GetDrugClasses(ctx context.Context, rxCui string) ([]string, error)
	GetRelatedDrugs(ctx context.Context, rxCui, relationship string) ([]RxNormConceptProperty, error)
}

// CachedRxNormService memoizes RxNorm lookups in a shared TTL store. List
// results are cached even when empty (a confirmed empty answer); a nil
// properties result is not cached, so a transient miss retries next call.
type CachedRxNormService struct {
	inner rxNormAPI
	store *cache.Store
}

// NewCachedRxNormService wraps inner with the shared store.
func NewCachedRxNormService(inner rxNormAPI, store *cache.Store) *CachedRxNormService {
	return &CachedRxNormService{inner: inner, store: store}
}

// SearchApproximate caches search results for the short tier.
func (c *CachedRxNormService) SearchApproximate(ctx context.Context, term string) ([]RxNormCandidate, error) {
	key := cache.Key("rxnorm_search", term)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(RxNormAPIName).Inc()
		return v.([]RxNormCandidate), nil
	}
	metrics.CacheMisses.WithLabelValues(RxNormAPIName).Inc()
	slog.Debug("cache miss", "key", key)

	result, err := c.inner.SearchApproximate(ctx, term)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.SearchTTL)
	return result, nil
}

// GetRxCuiProperties caches detail lookups for the medium tier; nil results
// are never cached.
func (c *CachedRxNormService) GetRxCuiProperties(ctx context.Context, rxCui string) (*RxNormProperties, error) {
	key := cache.Key("rxnorm_details", rxCui)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(RxNormAPIName).Inc()
		return v.(*RxNormProperties), nil
	}
	metrics.CacheMisses.WithLabelValues(RxNormAPIName).Inc()

	result, err := c.inner.GetRxCuiProperties(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	if result != nil {
		c.store.Set(key, result, cache.DetailTTL)
	}
	return result, nil
}

// GetActiveIngredients caches the derived ingredient list for the long tier.
func (c *CachedRxNormService) GetActiveIngredients(ctx context.Context, rxCui string) ([]string, error) {
	key := cache.Key("rxnorm_ingredients", rxCui)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(RxNormAPIName).Inc()
		return v.([]string), nil
	}
	metrics.CacheMisses.WithLabelValues(RxNormAPIName).Inc()

	result, err := c.inner.GetActiveIngredients(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.DerivedTTL)
	return result, nil
}

// GetDrugClasses caches drug class lookups for the long tier.
func (c *CachedRxNormService) GetDrugClasses(ctx context.Context, rxCui string) ([]string, error) {
	key := cache.Key("rxnorm_classes", rxCui)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(RxNormAPIName).Inc()
		return v.([]string), nil
	}
	metrics.CacheMisses.WithLabelValues(RxNormAPIName).Inc()

	result, err := c.inner.GetDrugClasses(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.DerivedTTL)
	return result, nil
}

// GetRelatedDrugs caches related-concept lookups for the medium tier.
func (c *CachedRxNormService) GetRelatedDrugs(ctx context.Context, rxCui, relationship string) ([]RxNormConceptProperty, error) {
	key := cache.Key("rxnorm_related", rxCui, relationship)
	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues(RxNormAPIName).Inc()
		return v.([]RxNormConceptProperty), nil
	}
	metrics.CacheMisses.WithLabelValues(RxNormAPIName).Inc()

	result, err := c.inner.GetRelatedDrugs(ctx, rxCui, relationship)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, result, cache.DetailTTL)
	return result, nil
}

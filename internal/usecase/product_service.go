package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/foodguard/backend/internal/domain"
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
}

// ProductService resolves barcodes to products, caching successful lookups
type ProductService struct {
	cache    domain.CacheRepository
	resolver domain.ProductResolver
	cacheTTL time.Duration
}

// NewProductService creates a new product service with dependencies.
// cache may be nil, in which case every lookup goes to the resolver.
func NewProductService(
	cache domain.CacheRepository,
	resolver domain.ProductResolver,
	config ProductServiceConfig,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &ProductService{
		cache:    cache,
		resolver: resolver,
		cacheTTL: cacheTTL,
	}
}

// Resolve looks up a product by barcode.
// Flow: check cache -> query product database -> cache -> return
func (s *ProductService) Resolve(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidInput
	}

	cacheKey := generateCacheKey(barcode)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	record, err := s.resolver.Resolve(ctx, barcode)
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, record); err != nil {
		log.Printf("[CACHE] Failed to cache product %s: %v", barcode, err)
	}

	return record, nil
}

// generateCacheKey creates the cache key for a barcode.
// Format: "product:{barcode}"
func generateCacheKey(barcode string) string {
	return "product:" + barcode
}

// getFromCache retrieves a product record from cache
func (s *ProductService) getFromCache(ctx context.Context, key string) (*domain.ProductRecord, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *domain.ProductRecord:
		return v, nil
	case map[string]interface{}:
		// cache backends hand back the JSON form
		return mapToProductRecord(v)
	default:
		return nil, domain.ErrCacheMiss
	}
}

// setInCache stores a product record in cache
func (s *ProductService) setInCache(ctx context.Context, key string, record *domain.ProductRecord) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, record, s.cacheTTL)
}

// mapToProductRecord converts a map (from JSON cache) back to a ProductRecord,
// re-applying placeholders so a damaged entry never yields empty fields.
func mapToProductRecord(data map[string]interface{}) (*domain.ProductRecord, error) {
	barcode, ok := data["barcode"].(string)
	if !ok || barcode == "" {
		return nil, domain.ErrCacheMiss
	}

	record := domain.NewProductRecord(barcode, domain.ProductFields{
		Title:           stringValue(data, "title"),
		Brand:           stringValue(data, "brand"),
		Description:     stringValue(data, "description"),
		IngredientsText: stringValue(data, "ingredientsText"),
		Category:        stringValue(data, "category"),
	})
	return &record, nil
}

func stringValue(data map[string]interface{}, key string) *string {
	if v, ok := data[key].(string); ok {
		return &v
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/foodguard/backend/config"
	"github.com/foodguard/backend/internal/domain"
	"github.com/foodguard/backend/internal/infrastructure/cache"
	"github.com/foodguard/backend/internal/infrastructure/openfoodfacts"
	"github.com/foodguard/backend/internal/usecase"
)

// closers releases infrastructure in reverse order of creation
type closers []io.Closer

func (c closers) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}
}

// newCache builds the configured product cache backend
func newCache(cfg *config.Config) (domain.CacheRepository, io.Closer, error) {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL, "foodguard:")
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return redisCache, redisCache, nil
	default:
		memoryCache := cache.NewMemoryCache()
		return memoryCache, memoryCache, nil
	}
}

// newProductService wires the cached OpenFoodFacts resolver
func newProductService(cfg *config.Config) (*usecase.ProductService, closers, error) {
	productCache, closer, err := newCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Cache: %s (TTL %s)", cfg.Cache.Type, cfg.Cache.TTL)

	offClient := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		offClient.SetDebug(true)
		log.Printf("OpenFoodFacts client debug mode enabled")
	}
	log.Printf("OpenFoodFacts: %s (timeout %s, %d req/min)",
		cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.Timeout, cfg.OpenFoodFacts.RequestsPerMinute)

	products := usecase.NewProductService(productCache, offClient, usecase.ProductServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	return products, closers{closer}, nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/mrobles-dev/tienda/internal/catalog/cache"
	"github.com/mrobles-dev/tienda/internal/catalog/domain"
)

// Source is the read-only upstream catalog.
type Source interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// Service serves catalog reads cache-aside: redis first, upstream on miss,
// backfill after. Cache failures degrade to upstream reads, never to errors.
type Service struct {
	source Source
	cache  cache.ProductCache
	sfg    singleflight.Group
}

func NewService(source Source, productCache cache.ProductCache) *Service {
	return &Service{source: source, cache: productCache}
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	key := fmt.Sprintf("product:%d", id)

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cached, cacheErr := s.cache.Get(ctx, key)
		if cacheErr == nil && len(cached) == 1 {
			return cached[0], nil
		}
		if cacheErr != nil && !errors.Is(cacheErr, cache.ErrCacheMiss) {
			slog.Warn("catalog cache get failed", slog.Any("err", cacheErr))
		}

		product, srcErr := s.source.GetProduct(ctx, id)
		if srcErr != nil {
			return domain.Product{}, srcErr
		}

		if setErr := s.cache.Set(ctx, key, []domain.Product{product}); setErr != nil {
			slog.Warn("catalog cache set failed", slog.Any("err", setErr))
		}
		return product, nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.listCached(ctx, "products:all", func(ctx context.Context) ([]domain.Product, error) {
		return s.source.ListProducts(ctx)
	})
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	key := "products:category:" + category
	return s.listCached(ctx, key, func(ctx context.Context) ([]domain.Product, error) {
		return s.source.ListByCategory(ctx, category)
	})
}

func (s *Service) listCached(ctx context.Context, key string, fetch func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cached, cacheErr := s.cache.Get(ctx, key)
		if cacheErr == nil {
			return cached, nil
		}
		if !errors.Is(cacheErr, cache.ErrCacheMiss) {
			slog.Warn("catalog cache get failed", slog.Any("err", cacheErr))
		}

		products, srcErr := fetch(ctx)
		if srcErr != nil {
			return nil, srcErr
		}

		if setErr := s.cache.Set(ctx, key, products); setErr != nil {
			slog.Warn("catalog cache set failed", slog.Any("err", setErr))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/repository"

	"github.com/go-redis/redis/v8"
)

const productCacheTTL = time.Minute

// CatalogService serves product browsing. Detail lookups go through an
// optional redis cache; the cache is best effort and the repository is
// always the source of truth.
type CatalogService struct {
	products    repository.ProductRepository
	redisClient *redis.Client
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	cacheKey := productCacheKey(id)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var p domain.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(p); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	return s.products.Save(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProductNotFound
	}
	if s.redisClient != nil {
		s.redisClient.Del(ctx, productCacheKey(id))
	}
	return nil
}

func productCacheKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

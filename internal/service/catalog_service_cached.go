package service

import (
	"context"

	"github.com/vlasovmax/shopcore/internal/cache"
	"github.com/vlasovmax/shopcore/internal/domain"
)

// cachedCatalogService decorates CatalogService with redis: the
// category list is served read-through, and every catalog mutation
// invalidates the affected listing keys. Product listings are cached
// at the transport layer because the key depends on the request URL.
type cachedCatalogService struct {
	next  CatalogService
	cache *cache.Cache
}

func NewCachedCatalogService(next CatalogService, c *cache.Cache) CatalogService {
	return &cachedCatalogService{
		next:  next,
		cache: c,
	}
}

func (s *cachedCatalogService) CreateCategory(ctx context.Context, category *domain.Category) (int64, error) {
	id, err := s.next.CreateCategory(ctx, category)
	if err != nil {
		return 0, err
	}

	s.cache.Delete(ctx, cache.CategoryListKey)
	return id, nil
}

func (s *cachedCatalogService) UpdateCategory(ctx context.Context, id, actorID int64, input *domain.UpdateCategoryInput) error {
	if err := s.next.UpdateCategory(ctx, id, actorID, input); err != nil {
		return err
	}

	s.cache.Delete(ctx, cache.CategoryListKey)
	return nil
}

func (s *cachedCatalogService) DeleteCategory(ctx context.Context, id, actorID int64) error {
	if err := s.next.DeleteCategory(ctx, id, actorID); err != nil {
		return err
	}

	s.cache.Delete(ctx, cache.CategoryListKey)
	s.cache.InvalidateProductLists(ctx)
	return nil
}

func (s *cachedCatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if s.cache.Get(ctx, cache.CategoryListKey, &cached) {
		return cached, nil
	}

	categories, err := s.next.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.CategoryListKey, categories)
	return categories, nil
}

func (s *cachedCatalogService) CreateProduct(ctx context.Context, product *domain.Product) (int64, error) {
	id, err := s.next.CreateProduct(ctx, product)
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateProductLists(ctx)
	return id, nil
}

func (s *cachedCatalogService) UpdateProduct(ctx context.Context, id, actorID int64, input *domain.UpdateProductInput) error {
	if err := s.next.UpdateProduct(ctx, id, actorID, input); err != nil {
		return err
	}

	s.cache.InvalidateProductLists(ctx)
	return nil
}

func (s *cachedCatalogService) DeleteProduct(ctx context.Context, id, actorID int64) error {
	if err := s.next.DeleteProduct(ctx, id, actorID); err != nil {
		return err
	}

	s.cache.InvalidateProductLists(ctx)
	return nil
}

func (s *cachedCatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.next.GetProduct(ctx, id)
}

func (s *cachedCatalogService) ListProducts(ctx context.Context, limit, offset int64, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	return s.next.ListProducts(ctx, limit, offset, filter)
}

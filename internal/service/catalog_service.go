package service

import (
	"context"

	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/repository"
	"go.uber.org/zap"
)

// CatalogService covers admin CRUD over categories and products plus
// the public read side. Ownership checks happen in the repositories:
// admins only touch rows they created.
type CatalogService interface {
	CreateCategory(ctx context.Context, category *domain.Category) (int64, error)
	UpdateCategory(ctx context.Context, id, actorID int64, input *domain.UpdateCategoryInput) error
	DeleteCategory(ctx context.Context, id, actorID int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateProduct(ctx context.Context, product *domain.Product) (int64, error)
	UpdateProduct(ctx context.Context, id, actorID int64, input *domain.UpdateProductInput) error
	DeleteProduct(ctx context.Context, id, actorID int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int64, filter domain.ProductFilter) ([]domain.Product, int64, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logger       *zap.Logger
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	l *zap.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       l,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, category *domain.Category) (int64, error) {
	return s.categoryRepo.Create(ctx, category)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id, actorID int64, input *domain.UpdateCategoryInput) error {
	return s.categoryRepo.Update(ctx, id, actorID, input)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id, actorID int64) error {
	return s.categoryRepo.DeleteByID(ctx, id, actorID)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) (int64, error) {
	return s.productRepo.Create(ctx, product)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id, actorID int64, input *domain.UpdateProductInput) error {
	return s.productRepo.Update(ctx, id, actorID, input)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id, actorID int64) error {
	return s.productRepo.DeleteByID(ctx, id, actorID)
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, limit, offset int64, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	return s.productRepo.List(ctx, limit, offset, filter)
}

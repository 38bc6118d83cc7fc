package service_test

import (
	"github.com/vlasovmax/shopcore/internal/cache"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/repository"
)

func (s *IntegrationTestSuite) TestCategoryListReadThrough() {
	admin := s.seedAdmin("admin@test.com")

	id, err := s.CatalogService.CreateCategory(s.Ctx, &domain.Category{
		Name:      "Books",
		CreatedBy: admin,
	})
	s.Require().NoError(err)

	categories, err := s.CatalogService.ListCategories(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(categories, 1)
	s.Equal("Books", categories[0].Name)

	// The row can vanish under the cache: the list keeps serving the
	// cached copy until a mutation invalidates it.
	_, err = s.DbPool.Exec(s.Ctx, `DELETE FROM categories WHERE id = $1`, id)
	s.Require().NoError(err)

	categories, err = s.CatalogService.ListCategories(s.Ctx)
	s.Require().NoError(err)
	s.Len(categories, 1)
}

func (s *IntegrationTestSuite) TestCategoryMutationInvalidatesListCache() {
	admin := s.seedAdmin("admin@test.com")

	id, err := s.CatalogService.CreateCategory(s.Ctx, &domain.Category{
		Name:      "Games",
		CreatedBy: admin,
	})
	s.Require().NoError(err)

	_, err = s.CatalogService.ListCategories(s.Ctx)
	s.Require().NoError(err)

	newName := "Video Games"
	err = s.CatalogService.UpdateCategory(s.Ctx, id, admin, &domain.UpdateCategoryInput{Name: &newName})
	s.Require().NoError(err)

	categories, err := s.CatalogService.ListCategories(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(categories, 1)
	s.Equal("Video Games", categories[0].Name)
}

func (s *IntegrationTestSuite) TestCategoryOwnershipEnforced() {
	owner := s.seedAdmin("owner@test.com")
	other := s.seedAdmin("other@test.com")

	id, err := s.CatalogService.CreateCategory(s.Ctx, &domain.Category{
		Name:      "Private",
		CreatedBy: owner,
	})
	s.Require().NoError(err)

	name := "Hijacked"
	err = s.CatalogService.UpdateCategory(s.Ctx, id, other, &domain.UpdateCategoryInput{Name: &name})
	s.Require().ErrorIs(err, repository.ErrCategoryNotFound)

	err = s.CatalogService.DeleteCategory(s.Ctx, id, other)
	s.Require().ErrorIs(err, repository.ErrCategoryNotFound)
}

func (s *IntegrationTestSuite) TestProductMutationDropsListingPages() {
	admin := s.seedAdmin("admin@test.com")
	productID := s.seedProduct(admin, "Sofa", 90000, 2)

	// Simulate a transport-layer cached listing page.
	key := cache.ProductListKey("/products?page=1")
	s.Cache.Set(s.Ctx, key, map[string]any{"stale": true})

	newPrice := int64(95000)
	err := s.CatalogService.UpdateProduct(s.Ctx, productID, admin, &domain.UpdateProductInput{Price: &newPrice})
	s.Require().NoError(err)

	var dest map[string]any
	s.False(s.Cache.Get(s.Ctx, key, &dest))
}

func (s *IntegrationTestSuite) TestListProductsFilters() {
	admin := s.seedAdmin("admin@test.com")
	cheap := s.seedProduct(admin, "Pencil", 50, 100)

	var expensive int64
	err := s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO products (name, price, stock, category_id, created_by)
		SELECT 'Fountain Pen', 5000, 10, category_id, created_by FROM products WHERE id = $1
		RETURNING id
	`, cheap).Scan(&expensive)
	s.Require().NoError(err)

	products, total, err := s.CatalogService.ListProducts(s.Ctx, 10, 0, domain.ProductFilter{PriceMin: 1000})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.Equal(expensive, products[0].ID)

	products, total, err = s.CatalogService.ListProducts(s.Ctx, 10, 0, domain.ProductFilter{Search: "pen"})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(products, 2)
}

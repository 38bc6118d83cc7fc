package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vlasovmax/shopcore/internal/cache"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/service"
	"github.com/vlasovmax/shopcore/internal/transport/http/middleware"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"github.com/vlasovmax/shopcore/pkg/utils"
	"go.uber.org/zap"
)

const defaultPageSize = 10

type ProductHandler struct {
	catalog  service.CatalogService
	cache    *cache.Cache
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductHandler(catalog service.CatalogService, c *cache.Cache, l *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		cache:    c,
		validate: validator.New(),
		logger:   l,
	}
}

type createProductRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int64  `json:"stock" validate:"gte=0"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var input createProductRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		CreatedBy:   userID,
	}

	if _, err := h.catalog.CreateProduct(c.UserContext(), product); err != nil {
		logger.Warn(c.UserContext(), h.logger, "create product failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	var input domain.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	if err := h.catalog.UpdateProduct(c.UserContext(), int64(id), userID, &input); err != nil {
		logger.Warn(c.UserContext(), h.logger, "update product failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated successfully."})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	if err := h.catalog.DeleteProduct(c.UserContext(), int64(id), userID); err != nil {
		logger.Warn(c.UserContext(), h.logger, "delete product failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully."})
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	product, err := h.catalog.GetProduct(c.UserContext(), int64(id))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(product)
}

type productListResponse struct {
	TotalPages    int64            `json:"total_pages"`
	CurrentPage   int64            `json:"current_page"`
	TotalProducts int64            `json:"total_products"`
	Results       []domain.Product `json:"results"`
}

// List serves the filtered, paginated catalog. The whole response page
// is cached under a key derived from the request URL, so every filter
// and page combination is cached independently.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	cacheKey := cache.ProductListKey(c.OriginalURL())

	var cached productListResponse
	if h.cache.Get(c.UserContext(), cacheKey, &cached) {
		return c.JSON(cached)
	}

	page := int64(c.QueryInt("page", 1))
	if page < 1 {
		page = 1
	}

	filter := domain.ProductFilter{
		Search:     c.Query("search"),
		CategoryID: int64(c.QueryInt("category_id", 0)),
		PriceMin:   int64(c.QueryInt("price_min", 0)),
		PriceMax:   int64(c.QueryInt("price_max", 0)),
	}

	limit := int64(defaultPageSize)
	offset := (page - 1) * limit

	products, total, err := h.catalog.ListProducts(c.UserContext(), limit, offset, filter)
	if err != nil {
		logger.Warn(c.UserContext(), h.logger, "list products failed", zap.Error(err))
		return errorResponse(c, err)
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	response := productListResponse{
		TotalPages:    totalPages,
		CurrentPage:   page,
		TotalProducts: total,
		Results:       products,
	}

	h.cache.Set(c.UserContext(), cacheKey, response)
	return c.JSON(response)
}

package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/service"
	"github.com/vlasovmax/shopcore/internal/transport/http/middleware"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"github.com/vlasovmax/shopcore/pkg/utils"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	catalog  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCategoryHandler(catalog service.CatalogService, l *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog:  catalog,
		validate: validator.New(),
		logger:   l,
	}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description"`
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var input createCategoryRequest
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

	category := &domain.Category{
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   userID,
	}

	if _, err := h.catalog.CreateCategory(c.UserContext(), category); err != nil {
		logger.Warn(c.UserContext(), h.logger, "create category failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}

	var input domain.UpdateCategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	if err := h.catalog.UpdateCategory(c.UserContext(), int64(id), userID, &input); err != nil {
		logger.Warn(c.UserContext(), h.logger, "update category failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Category updated successfully."})
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	if err := h.catalog.DeleteCategory(c.UserContext(), int64(id), userID); err != nil {
		logger.Warn(c.UserContext(), h.logger, "delete category failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Category deleted successfully."})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		logger.Warn(c.UserContext(), h.logger, "list categories failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(categories)
}

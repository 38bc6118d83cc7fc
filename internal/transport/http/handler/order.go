package handler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/service"
	"github.com/vlasovmax/shopcore/internal/transport/http/middleware"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"github.com/vlasovmax/shopcore/pkg/utils"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders   service.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderHandler(orders service.OrderService, l *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
		logger:   l,
	}
}

type placeOrderRequest struct {
	Products []domain.OrderLine `json:"products" validate:"required,min=1,dive"`
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var input placeOrderRequest
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

	order, err := h.orders.PlaceOrder(c.UserContext(), userID, input.Products)
	if err != nil {
		logger.Warn(c.UserContext(), h.logger, "place order failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Order placed successfully",
		"order_id": order.ID,
	})
}

type updateStatusRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Status  string `json:"status" validate:"required"`
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var input updateStatusRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), input.OrderID, domain.OrderStatus(input.Status))
	if err != nil {
		logger.Warn(c.UserContext(), h.logger, "update order status failed",
			zap.Int64("order_id", input.OrderID),
			zap.String("status", input.Status),
			zap.Error(err),
		)
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order status updated to %s", order.Status),
	})
}

type orderListResponse struct {
	TotalOrders int64          `json:"total_orders"`
	CurrentPage int64          `json:"current_page"`
	Results     []domain.Order `json:"results"`
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	page := int64(c.QueryInt("page", 1))
	if page < 1 {
		page = 1
	}

	limit := int64(defaultPageSize)
	offset := (page - 1) * limit

	orders, total, err := h.orders.ListUserOrders(c.UserContext(), userID, limit, offset)
	if err != nil {
		logger.Warn(c.UserContext(), h.logger, "list orders failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return errorResponse(c, err)
	}

	return c.JSON(orderListResponse{
		TotalOrders: total,
		CurrentPage: page,
		Results:     orders,
	})
}

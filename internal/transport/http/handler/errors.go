package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/internal/service"
)

// errorStatus maps business errors onto HTTP codes. Insufficient stock
// and illegal transitions come back as 400 to match the request-shaped
// contract the clients already rely on.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrAlreadyInStatus),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, repository.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	code := errorStatus(err)

	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal error"
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/jwt"
)

// RequireAuth validates the Bearer token and stashes the caller's
// identity in locals. Every protected operation goes through here
// before any business logic runs.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: invalid header format"})
		}

		claims, err := jwt.ValidateToken(parts[1], false)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: invalid token"})
		}

		c.Locals("userId", claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || role != string(domain.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: admin access required"})
		}

		return c.Next()
	}
}

// UserID pulls the authenticated user id set by RequireAuth.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals("userId").(int64)
	return id, ok
}

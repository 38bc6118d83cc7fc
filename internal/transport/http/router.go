package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vlasovmax/shopcore/internal/transport/http/handler"
	"github.com/vlasovmax/shopcore/internal/transport/http/middleware"
	"github.com/vlasovmax/shopcore/internal/transport/ws"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Category    *handler.CategoryHandler
	Product     *handler.ProductHandler
	Order       *handler.OrderHandler
	OrderStatus fiber.Handler
}

func NewRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        20,
		Expiration: 5 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	})
}

func RegisterRoutes(app *fiber.App, h *Handlers, reg *prometheus.Registry) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	})))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)

	// Catalog reads are public, same as the storefront expects.
	app.Get("/categories", h.Category.List)
	app.Get("/products", h.Product.List)
	app.Get("/products/:id", h.Product.GetByID)

	api := app.Group("/api", middleware.RequireAuth())

	order := api.Group("/orders")
	order.Post("", h.Order.Place)
	order.Get("", h.Order.List)
	order.Patch("/status", middleware.RequireAdmin(), h.Order.UpdateStatus)

	admin := api.Group("/admin", middleware.RequireAdmin())

	category := admin.Group("/categories")
	category.Post("", h.Category.Create)
	category.Patch("/:id", h.Category.Update)
	category.Delete("/:id", h.Category.Delete)

	product := admin.Group("/products")
	product.Post("", h.Product.Create)
	product.Patch("/:id", h.Product.Update)
	product.Delete("/:id", h.Product.Delete)

	// Token travels as a query param here since browsers cannot set
	// headers on a websocket dial.
	app.Use("/ws/orders", ws.UpgradeRequired)
	app.Get("/ws/orders", h.OrderStatus)
}

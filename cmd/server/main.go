package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/vlasovmax/shopcore/internal/cache"
	"github.com/vlasovmax/shopcore/internal/notify"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/internal/service"
	transport "github.com/vlasovmax/shopcore/internal/transport/http"
	"github.com/vlasovmax/shopcore/internal/transport/http/handler"
	"github.com/vlasovmax/shopcore/internal/transport/ws"
	"github.com/vlasovmax/shopcore/pkg/config"
	"github.com/vlasovmax/shopcore/pkg/db"
	"github.com/vlasovmax/shopcore/pkg/kafka"
	"github.com/vlasovmax/shopcore/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using system envs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "shopcore")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := runMigrations(cfg.Postgres.URL); err != nil {
		log.Fatalf("error running migrations: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("error creating postgres db: %v", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer func() {
		_ = redisClient.Close()
	}()

	catalogCache := cache.New(redisClient, cfg.Cache.TTL, logger)

	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := notify.NewHub(logger, notify.NewMetrics(reg))

	var publisher notify.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatalf("error creating kafka producer: %v", err)
		}
		defer func() {
			_ = producer.Close()
		}()

		publisher = notify.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)

		// Unique group id per instance: each process must see every
		// status event to serve its own websocket connections.
		groupID := fmt.Sprintf("%s-%s", cfg.Kafka.GroupID, uuid.NewString())
		consumer := notify.NewStatusConsumer(cfg.Kafka.Brokers, groupID, cfg.Kafka.Topic, hub, logger)
		go consumer.Run(ctx)
	} else {
		publisher = notify.NewLocalPublisher(hub)
	}

	authService := service.NewAuthService(userRepo, pool, logger)
	catalogService := service.NewCachedCatalogService(
		service.NewCatalogService(categoryRepo, productRepo, logger),
		catalogCache,
	)
	orderService := service.NewOrderService(pool, userRepo, productRepo, orderRepo, publisher, logger)

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTP.Timeout,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(transport.NewRateLimiter())

	handlers := &transport.Handlers{
		Auth:        handler.NewAuthHandler(authService, logger),
		Category:    handler.NewCategoryHandler(catalogService, logger),
		Product:     handler.NewProductHandler(catalogService, catalogCache, logger),
		Order:       handler.NewOrderHandler(orderService, logger),
		OrderStatus: ws.NewOrderStatusHandler(hub, cfg.Notify.SessionBuffer, logger),
	}

	transport.RegisterRoutes(app, handlers, reg)

	logger.Info("shopcore started!")

	go func() {
		log.Println("HTTP Service listening on: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownContext); err != nil {
		log.Printf("Error shutting down HTTP app: %v\n", err)
	} else {
		log.Println("HTTP App stopped gracefully")
	}

	if err := tp.Shutdown(shutdownContext); err != nil {
		log.Printf("Error shutting down telemetry: %v\n", err)
	} else {
		log.Println("Telemetry stopped correctly")
	}
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

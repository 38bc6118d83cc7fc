package service_test

import (
	"sync"
	"testing"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/vlasovmax/shopcore/internal/cache"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/notify"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/internal/service"
	"github.com/vlasovmax/shopcore/pkg/testsuite"
	"go.uber.org/zap"
)

// recordingSubscriber collects every event sent to it.
type recordingSubscriber struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (r *recordingSubscriber) Send(event domain.NotificationEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return true
}

func (r *recordingSubscriber) Events() []domain.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationEvent, len(r.events))
	copy(out, r.events)
	return out
}

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	AuthService    service.AuthService
	OrderService   service.OrderService
	CatalogService service.CatalogService
	Hub            *notify.Hub
	Redis          *redis.Client
	Cache          *cache.Cache
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../../migrations", testsuite.Options{WithRedis: true})
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("order_items")
	s.BaseSuite.TruncateTable("orders")
	s.BaseSuite.TruncateTable("products")
	s.BaseSuite.TruncateTable("categories")
	s.BaseSuite.TruncateTable("customer_profiles")
	s.BaseSuite.TruncateTable("users")

	logger := zap.NewNop()

	if s.Redis == nil {
		s.Redis = redis.NewClient(&redis.Options{Addr: s.RedisAddr})
	}
	s.Require().NoError(s.Redis.FlushAll(s.Ctx).Err())
	s.Cache = cache.New(s.Redis, time.Hour, logger)

	userRepo := repository.NewUserRepository(s.DbPool, logger)
	categoryRepo := repository.NewCategoryRepository(s.DbPool, logger)
	productRepo := repository.NewProductRepository(s.DbPool, logger)
	orderRepo := repository.NewOrderRepository(s.DbPool, logger)

	s.Hub = notify.NewHub(logger, notify.NewMetrics(prometheus.NewRegistry()))

	s.AuthService = service.NewAuthService(userRepo, s.DbPool, logger)
	s.CatalogService = service.NewCachedCatalogService(
		service.NewCatalogService(categoryRepo, productRepo, logger),
		s.Cache,
	)
	s.OrderService = service.NewOrderService(
		s.DbPool,
		userRepo,
		productRepo,
		orderRepo,
		notify.NewLocalPublisher(s.Hub),
		logger,
	)
}

// seedCustomer inserts a user with a customer profile and returns the
// user id.
func (s *IntegrationTestSuite) seedCustomer(email string) int64 {
	var userID int64
	err := s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, 'x', 'customer')
		RETURNING id
	`, email).Scan(&userID)
	s.Require().NoError(err)

	_, err = s.DbPool.Exec(s.Ctx, `
		INSERT INTO customer_profiles (user_id) VALUES ($1)
	`, userID)
	s.Require().NoError(err)

	return userID
}

func (s *IntegrationTestSuite) seedAdmin(email string) int64 {
	var userID int64
	err := s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, 'x', 'admin')
		RETURNING id
	`, email).Scan(&userID)
	s.Require().NoError(err)

	return userID
}

// seedProduct creates a category on first call and a product under it,
// returning the product id.
func (s *IntegrationTestSuite) seedProduct(adminID int64, name string, price, stock int64) int64 {
	var categoryID int64
	err := s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO categories (name, created_by)
		VALUES ('default', $1)
		RETURNING id
	`, adminID).Scan(&categoryID)
	s.Require().NoError(err)

	var productID int64
	err = s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO products (name, price, stock, category_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, name, price, stock, categoryID, adminID).Scan(&productID)
	s.Require().NoError(err)

	return productID
}

func (s *IntegrationTestSuite) productStock(productID int64) int64 {
	var stock int64
	err := s.DbPool.QueryRow(s.Ctx,
		`SELECT stock FROM products WHERE id = $1`, productID,
	).Scan(&stock)
	s.Require().NoError(err)
	return stock
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration suite in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

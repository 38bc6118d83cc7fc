package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/notify"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID, limit, offset int64) ([]domain.Order, int64, error)
}

type orderService struct {
	pool        *pgxpool.Pool
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	publisher   notify.Publisher
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	publisher notify.Publisher,
	l *zap.Logger,
) OrderService {
	return &orderService{
		pool:        pool,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		logger:      l,
		tracer:      otel.Tracer("order_service"),
	}
}

// PlaceOrder creates an order with all its items in one transaction.
// Stock checks and decrements happen against rows locked FOR UPDATE, so
// a concurrent placement on the same product either waits for this one
// or sees the reduced stock. Any failed line rolls the whole order back.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int("lines", len(lines)),
	)

	profile, err := s.userRepo.GetCustomerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrNoItems
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	order := &domain.Order{
		CustomerID: profile.ID,
		Status:     domain.OrderStatusPending,
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	var total int64
	for _, line := range lines {
		product, err := s.productRepo.GetForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			return nil, err
		}

		if product.Stock < int64(line.Quantity) {
			return nil, fmt.Errorf("%w for product %s", repository.ErrInsufficientStock, product.Name)
		}

		if err := s.productRepo.DecreaseStock(ctx, tx, product.ID, line.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w for product %s", repository.ErrInsufficientStock, product.Name)
			}
			return nil, err
		}

		item := &domain.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
		}

		if err := s.orderRepo.AddItem(ctx, tx, item); err != nil {
			return nil, err
		}

		order.Items = append(order.Items, *item)
		total += product.Price * int64(line.Quantity)
	}

	if err := s.orderRepo.SetTotal(ctx, tx, order.ID, total); err != nil {
		return nil, err
	}
	order.TotalPrice = total

	if err := tx.Commit(ctx); err != nil {
		logger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info(
		ctx,
		s.logger,
		"Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("total", total),
	)

	return order, nil
}

// UpdateStatus moves the order through its lifecycle and, once the new
// status is committed, publishes a notification to the owning user.
// Publish failures never surface to the caller: the status change has
// already happened and delivery is best effort.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(status)),
	)

	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(status))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	locked, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := locked.Status.Transition(status); err != nil {
		return nil, err
	}

	if err := s.orderRepo.ChangeOrderStatus(ctx, tx, orderID, status); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	event := domain.NotificationEvent{
		Type:    domain.EventTypeOrderStatus,
		Message: fmt.Sprintf("Your order %d is now %s", orderID, status),
		UserID:  locked.UserID,
	}

	if err := s.publisher.PublishOrderStatus(ctx, event); err != nil {
		logger.Warn(
			ctx,
			s.logger,
			"Status notification lost",
			zap.Int64("order_id", orderID),
			zap.Int64("user_id", locked.UserID),
			zap.Error(err),
		)
	}

	return &domain.Order{ID: orderID, Status: status}, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID, limit, offset int64) ([]domain.Order, int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListUserOrders")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	profile, err := s.userRepo.GetCustomerProfile(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return s.orderRepo.ListByCustomer(ctx, profile.ID, limit, offset)
}

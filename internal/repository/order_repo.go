package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LockedOrder is an orders row held under FOR UPDATE together with the
// account id the owning customer profile points at. The user id is what
// notification delivery is keyed by.
type LockedOrder struct {
	ID     int64
	Status domain.OrderStatus
	UserID int64
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	AddItem(ctx context.Context, tx pgx.Tx, item *domain.OrderItem) error
	SetTotal(ctx context.Context, tx pgx.Tx, orderID, total int64) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*LockedOrder, error)
	ChangeOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus) error
	ListByCustomer(ctx context.Context, customerID, limit, offset int64) ([]domain.Order, int64, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, l *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: l,
		tracer: otel.Tracer("order_repository"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("customer_id", order.CustomerID))

	query := `
		INSERT INTO orders (customer_id, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`

	if err := tx.QueryRow(
		ctx,
		query,
		order.CustomerID,
		string(order.Status),
		order.TotalPrice,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *orderRepo) AddItem(ctx context.Context, tx pgx.Tx, item *domain.OrderItem) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.AddItem")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", item.OrderID),
		attribute.Int64("product_id", item.ProductID),
	)

	query := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	if err := tx.QueryRow(
		ctx,
		query,
		item.OrderID,
		item.ProductID,
		item.Name,
		item.Price,
		item.Quantity,
	).Scan(&item.ID); err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to insert order item",
			zap.Int64("order_id", item.OrderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

func (r *orderRepo) SetTotal(ctx context.Context, tx pgx.Tx, orderID, total int64) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.SetTotal")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.Int64("total", total),
	)

	query := `
		UPDATE orders
		SET total_price = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := tx.Exec(ctx, query, total, orderID)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to set order total",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to set order total: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*LockedOrder, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	query := `
		SELECT o.id, o.status, cp.user_id
		FROM orders o
		JOIN customer_profiles cp ON cp.id = o.customer_id
		WHERE o.id = $1
		FOR UPDATE OF o;
	`

	var res LockedOrder
	if err := tx.QueryRow(ctx, query, orderID).Scan(&res.ID, &res.Status, &res.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to lock order row",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &res, nil
}

func (r *orderRepo) ChangeOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeOrderStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := tx.Exec(ctx, query, string(status), orderID)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID, limit, offset int64) ([]domain.Order, int64, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
		attribute.Int64("limit", limit),
		attribute.Int64("offset", offset),
	)

	query := `
		SELECT id, customer_id, status, total_price, created_at, updated_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to query orders",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	byID := make(map[int64]int)
	var ids []int64

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.Status,
			&o.TotalPrice,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("error scanning rows: %w", err)
		}
		byID[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(ids) > 0 {
		itemsQuery := `
			SELECT id, order_id, product_id, name, price, quantity
			FROM order_items
			WHERE order_id = ANY($1);
		`

		itemRows, err := r.pool.Query(ctx, itemsQuery, ids)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("failed to query order items: %w", err)
		}
		defer itemRows.Close()

		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Name,
				&item.Price,
				&item.Quantity,
			); err != nil {
				span.RecordError(err)
				return nil, 0, fmt.Errorf("error scanning item rows: %w", err)
			}
			idx := byID[item.OrderID]
			orders[idx].Items = append(orders[idx].Items, item)
		}
		if err := itemRows.Err(); err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("item rows iteration error: %w", err)
		}
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM orders WHERE customer_id = $1;`
	if err := r.pool.QueryRow(ctx, countQuery, customerID).Scan(&totalCount); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return orders, totalCount, nil
}

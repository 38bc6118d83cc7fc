package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int64, filter domain.ProductFilter) ([]domain.Product, int64, error)
	Update(ctx context.Context, id, createdBy int64, input *domain.UpdateProductInput) error
	DeleteByID(ctx context.Context, id, createdBy int64) error

	// GetForUpdate and DecreaseStock run inside the caller's transaction;
	// the row lock taken by GetForUpdate serializes concurrent placements
	// against the same product.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error)
	DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error
}

type productRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewProductRepository(pool *pgxpool.Pool, l *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: l,
		tracer: otel.Tracer("product_repository"),
	}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", product.Name))

	query := `
		INSERT INTO products (name, description, price, stock, category_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at;
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
		product.CreatedBy,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating product: %w", err)
	}

	return product.ID, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	query := `
		SELECT id, name, description, price, stock, category_id, created_by, created_at, updated_at
		FROM products
		WHERE id = $1;
	`

	var res domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.Name,
		&res.Description,
		&res.Price,
		&res.Stock,
		&res.CategoryID,
		&res.CreatedBy,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error getting product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	return &res, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	query := `
		SELECT id, name, description, price, stock, category_id, created_by, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE;
	`

	var res domain.Product
	if err := tx.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.Name,
		&res.Description,
		&res.Price,
		&res.Stock,
		&res.CategoryID,
		&res.CreatedBy,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error locking product row",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error locking product: %w", err)
	}

	return &res, nil
}

func (r *productRepo) DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DecreaseStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1
			AND stock >= $2;
	`

	commandTag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error decreasing stock",
			zap.Int64("id", id),
			zap.Int32("quantity", quantity),
			zap.Error(err),
		)

		return fmt.Errorf("error decreasing stock for product %d: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *productRepo) Update(ctx context.Context, id, createdBy int64, input *domain.UpdateProductInput) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	var updates []string
	var args []interface{}
	argId := 1

	if input.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argId))
		args = append(args, *input.Name)
		argId++
	}

	if input.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argId))
		args = append(args, *input.Description)
		argId++
	}

	if input.Price != nil {
		updates = append(updates, fmt.Sprintf("price = $%d", argId))
		args = append(args, *input.Price)
		argId++
	}

	if input.Stock != nil {
		updates = append(updates, fmt.Sprintf("stock = $%d", argId))
		args = append(args, *input.Stock)
		argId++
	}

	if input.CategoryID != nil {
		updates = append(updates, fmt.Sprintf("category_id = $%d", argId))
		args = append(args, *input.CategoryID)
		argId++
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")

	query := "UPDATE products SET " + strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d AND created_by = $%d", argId, argId+1)
	args = append(args, id, createdBy)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error updating product",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) DeleteByID(ctx context.Context, id, createdBy int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	query := `
		DELETE FROM products
		WHERE id = $1 AND created_by = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, id, createdBy)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error deleting product",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int64, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("limit", limit),
		attribute.Int64("offset", offset),
		attribute.String("search", filter.Search),
	)

	baseQuery := `SELECT id, name, description, price, stock, category_id, created_by, created_at, updated_at
		FROM products
		WHERE TRUE`
	countQuery := `SELECT COUNT(*) FROM products WHERE TRUE`

	var args []interface{}
	argId := 1

	addFilter := func(clause string, value interface{}) {
		cond := fmt.Sprintf(clause, argId)
		baseQuery += cond
		countQuery += cond
		args = append(args, value)
		argId++
	}

	if filter.Search != "" {
		addFilter(" AND name ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.CategoryID > 0 {
		addFilter(" AND category_id = $%d", filter.CategoryID)
	}
	if filter.PriceMin > 0 {
		addFilter(" AND price >= $%d", filter.PriceMin)
	}
	if filter.PriceMax > 0 {
		addFilter(" AND price <= $%d", filter.PriceMax)
	}

	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)

	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, baseQuery, args...)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error listing products",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.CategoryID,
			&p.CreatedBy,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("error scanning rows: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	var totalCount int64
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Failed to count products",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, totalCount, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (int64, error)
	Update(ctx context.Context, id, createdBy int64, input *domain.UpdateCategoryInput) error
	DeleteByID(ctx context.Context, id, createdBy int64) error
	List(ctx context.Context) ([]domain.Category, error)
}

type categoryRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCategoryRepository(pool *pgxpool.Pool, l *zap.Logger) CategoryRepository {
	return &categoryRepo{
		pool:   pool,
		logger: l,
		tracer: otel.Tracer("category_repository"),
	}
}

func (r *categoryRepo) Create(ctx context.Context, category *domain.Category) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", category.Name))

	query := `
		INSERT INTO categories (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		category.Name,
		category.Description,
		category.CreatedBy,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error creating category",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating category: %w", err)
	}

	return category.ID, nil
}

func (r *categoryRepo) Update(ctx context.Context, id, createdBy int64, input *domain.UpdateCategoryInput) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Update")
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

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")

	query := "UPDATE categories SET " + strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d AND created_by = $%d", argId, argId+1)
	args = append(args, id, createdBy)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error updating category",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating category: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepo) DeleteByID(ctx context.Context, id, createdBy int64) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	query := `
		DELETE FROM categories
		WHERE id = $1 AND created_by = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, id, createdBy)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error deleting category",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting category: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.List")
	defer span.End()

	query := `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM categories
		ORDER BY name;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error listing categories",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.CreatedBy,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning rows: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return categories, nil
}

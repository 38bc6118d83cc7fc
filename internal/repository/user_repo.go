package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	CreateUser(ctx context.Context, tx pgx.Tx, user *domain.User) (int64, error)
	CreateCustomerProfile(ctx context.Context, tx pgx.Tx, userID int64) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetCustomerProfile(ctx context.Context, userID int64) (*domain.CustomerProfile, error)
}

type userRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewUserRepository(pool *pgxpool.Pool, l *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: l,
		tracer: otel.Tracer("user_repository"),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, tx pgx.Tx, user *domain.User) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	span.SetAttributes(attribute.String("role", string(user.Role)))

	query := `
		INSERT INTO users (email, password_hash, role, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`

	err := tx.QueryRow(
		ctx,
		query,
		user.Email,
		user.Password,
		string(user.Role),
		user.Phone,
		user.Address,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return 0, ErrEmailTaken
		}

		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error inserting user",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return user.ID, nil
}

func (r *userRepo) CreateCustomerProfile(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.CreateCustomerProfile")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	query := `
		INSERT INTO customer_profiles (user_id)
		VALUES ($1)
		RETURNING id;
	`

	var id int64
	if err := tx.QueryRow(ctx, query, userID).Scan(&id); err != nil {
		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error inserting customer profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating customer profile: %w", err)
	}

	return id, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	query := `
		SELECT id, email, password_hash, role, phone, address, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.Phone,
		&user.Address,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error querying user by email",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return &user, nil
}

func (r *userRepo) GetCustomerProfile(ctx context.Context, userID int64) (*domain.CustomerProfile, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetCustomerProfile")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	query := `
		SELECT id, user_id
		FROM customer_profiles
		WHERE user_id = $1;
	`

	var profile domain.CustomerProfile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&profile.ID, &profile.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}

		span.RecordError(err)

		logger.Error(
			ctx,
			r.logger,
			"Error querying customer profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting customer profile: %w", err)
	}

	return &profile, nil
}

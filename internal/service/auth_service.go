package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/pkg/jwt"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string
	Password string
	Role     domain.UserRole
	Phone    string
	Address  string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, string, error)
}

type authService struct {
	userRepo repository.UserRepository
	pool     *pgxpool.Pool
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewAuthService(userRepo repository.UserRepository, pool *pgxpool.Pool, l *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		pool:     pool,
		logger:   l,
		tracer:   otel.Tracer("auth_service"),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
	if err != nil {
		logger.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error hashing password: %w", err)
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

	user := &domain.User{
		Email:    input.Email,
		Password: string(hashedPass),
		Role:     input.Role,
		Phone:    input.Phone,
		Address:  input.Address,
	}

	if _, err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, err
		}

		logger.Error(
			ctx,
			s.logger,
			"Failed to create user",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if user.Role == domain.RoleCustomer {
		if _, err := s.userRepo.CreateCustomerProfile(ctx, tx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to create customer profile: %w", err)
		}
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

	logger.Info(
		ctx,
		s.logger,
		"User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}

		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := jwt.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		logger.Error(
			ctx,
			s.logger,
			"Failed to generate tokens",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)

		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, refreshToken, nil
}

package service_test

import (
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/internal/service"
)

func (s *IntegrationTestSuite) TestRegisterCustomerCreatesProfile() {
	s.T().Setenv("ACCESS_SECRET", "test-access")
	s.T().Setenv("REFRESH_SECRET", "test-refresh")

	user, err := s.AuthService.Register(s.Ctx, service.RegisterInput{
		Email:    "new@test.com",
		Password: "secret123",
		Role:     domain.RoleCustomer,
		Phone:    "+123456",
		Address:  "Somewhere 1",
	})
	s.Require().NoError(err)
	s.Require().NotZero(user.ID)

	var profileCount int
	err = s.DbPool.QueryRow(s.Ctx,
		`SELECT COUNT(*) FROM customer_profiles WHERE user_id = $1`, user.ID,
	).Scan(&profileCount)
	s.Require().NoError(err)
	s.Equal(1, profileCount)

	access, refresh, err := s.AuthService.Login(s.Ctx, "new@test.com", "secret123")
	s.Require().NoError(err)
	s.NotEmpty(access)
	s.NotEmpty(refresh)
}

func (s *IntegrationTestSuite) TestRegisterAdminSkipsProfile() {
	user, err := s.AuthService.Register(s.Ctx, service.RegisterInput{
		Email:    "boss@test.com",
		Password: "secret123",
		Role:     domain.RoleAdmin,
	})
	s.Require().NoError(err)

	var profileCount int
	err = s.DbPool.QueryRow(s.Ctx,
		`SELECT COUNT(*) FROM customer_profiles WHERE user_id = $1`, user.ID,
	).Scan(&profileCount)
	s.Require().NoError(err)
	s.Equal(0, profileCount)
}

func (s *IntegrationTestSuite) TestRegisterDuplicateEmail() {
	input := service.RegisterInput{
		Email:    "dup@test.com",
		Password: "secret123",
		Role:     domain.RoleCustomer,
	}

	_, err := s.AuthService.Register(s.Ctx, input)
	s.Require().NoError(err)

	_, err = s.AuthService.Register(s.Ctx, input)
	s.Require().ErrorIs(err, repository.ErrEmailTaken)
}

func (s *IntegrationTestSuite) TestRegisterRejectsUnknownRole() {
	_, err := s.AuthService.Register(s.Ctx, service.RegisterInput{
		Email:    "weird@test.com",
		Password: "secret123",
		Role:     domain.UserRole("superuser"),
	})
	s.Require().ErrorIs(err, service.ErrInvalidRole)
}

func (s *IntegrationTestSuite) TestLoginWrongPassword() {
	_, err := s.AuthService.Register(s.Ctx, service.RegisterInput{
		Email:    "victim@test.com",
		Password: "secret123",
		Role:     domain.RoleCustomer,
	})
	s.Require().NoError(err)

	_, _, err = s.AuthService.Login(s.Ctx, "victim@test.com", "wrong")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)

	_, _, err = s.AuthService.Login(s.Ctx, "nobody@test.com", "secret123")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}

package user

import (
	"context"
	"errors"
	"strings"

	"stylemart-be/internal/apperr"
	"stylemart-be/internal/logger"

	"go.uber.org/zap"
)

const minPasswordLength = 8

type TokenIssuer interface {
	Generate(userID uint, email, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, email, password string) (AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "user"),
		zap.String("method", "Register"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	fields := map[string]string{}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return AuthResult{}, apperr.NewValidationError(fields)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return AuthResult{}, err
	}

	u, err := s.repo.Create(ctx, email, hashed, RoleUser)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return AuthResult{}, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "user"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login rejected: unknown email")
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("login rejected: password mismatch", zap.Uint("user_id", u.ID))
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return AuthResult{}, err
	}

	return AuthResult{Token: token, User: u}, nil
}

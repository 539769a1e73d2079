package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/auth"
	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// AuthService authenticates developers and issues access tokens.
type AuthService struct {
	developers repository.DeveloperRepository
	tokens     *auth.TokenManager
	cfg        config.AuthConfig
	log        *zap.Logger
}

// AuthDependencies bundles requirements for the service.
type AuthDependencies struct {
	DeveloperRepo repository.DeveloperRepository
	TokenManager  *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, log *zap.Logger, deps AuthDependencies) *AuthService {
	return &AuthService{
		developers: deps.DeveloperRepo,
		tokens:     deps.TokenManager,
		cfg:        cfg,
		log:        log,
	}
}

// LoginResult carries a freshly issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Developer *domain.Developer
}

// Login verifies credentials and returns a signed token. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	dev, err := s.developers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}
	if !dev.Active {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(dev.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(dev.ID, dev.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.log.Info("developer logged in", zap.String("developer_id", dev.ID))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Developer: dev}, nil
}

// ChangePassword re-hashes and stores a new password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, developerID, current, next string) error {
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	dev, err := s.developers.GetByID(ctx, developerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
		}
		return apperrors.NewRepositoryFailure(err)
	}
	if err := auth.ComparePassword(dev.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	dev.PasswordHash = hash
	if err := s.developers.Update(ctx, dev); err != nil {
		return apperrors.NewRepositoryFailure(err)
	}
	return nil
}

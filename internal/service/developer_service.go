package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/auth"
	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// DeveloperService manages developer accounts.
type DeveloperService struct {
	developers repository.DeveloperRepository
	cfg        config.AuthConfig
	log        *zap.Logger
}

// DeveloperDependencies bundles requirements for the service.
type DeveloperDependencies struct {
	DeveloperRepo repository.DeveloperRepository
}

// NewDeveloperService constructs the service.
func NewDeveloperService(cfg config.AuthConfig, log *zap.Logger, deps DeveloperDependencies) *DeveloperService {
	return &DeveloperService{developers: deps.DeveloperRepo, cfg: cfg, log: log}
}

// DeveloperCreateInput carries fields for registering a developer.
type DeveloperCreateInput struct {
	Name      string
	Email     string
	Password  string
	Role      domain.DeveloperRole
	Seniority domain.SeniorityLevel
	Skills    []string
}

// Create registers a developer account.
func (s *DeveloperService) Create(ctx context.Context, input DeveloperCreateInput) (*domain.Developer, error) {
	if input.Name == "" || input.Email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if !domain.ValidRole(input.Role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(input.Role)})
	}
	if !domain.ValidSeniority(input.Seniority) {
		return nil, apperrors.NewValidationError("invalid seniority level", map[string]any{"seniority": string(input.Seniority)})
	}

	if _, err := s.developers.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	dev := &domain.Developer{
		FullName:     input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Seniority:    input.Seniority,
		Skills:       input.Skills,
		Active:       true,
	}
	if err := s.developers.Create(ctx, dev); err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return dev, nil
}

// Get fetches one developer.
func (s *DeveloperService) Get(ctx context.Context, developerID string) (*domain.Developer, error) {
	dev, err := s.developers.GetByID(ctx, developerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return dev, nil
}

// List returns developers matching the filter.
func (s *DeveloperService) List(ctx context.Context, filter repository.DeveloperFilter) ([]domain.Developer, error) {
	devs, err := s.developers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return devs, nil
}

// Deactivate disables a developer account without deleting its history.
func (s *DeveloperService) Deactivate(ctx context.Context, developerID string) error {
	dev, err := s.Get(ctx, developerID)
	if err != nil {
		return err
	}
	if !dev.Active {
		return nil
	}
	dev.Active = false
	if err := s.developers.Update(ctx, dev); err != nil {
		return apperrors.NewRepositoryFailure(err)
	}
	return nil
}

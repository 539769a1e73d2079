package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// ProjectService owns the project and feature catalog.
type ProjectService struct {
	projects repository.ProjectRepository
	features repository.FeatureRepository
	log      *zap.Logger
}

// ProjectDependencies bundles requirements for the service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	FeatureRepo repository.FeatureRepository
}

// NewProjectService constructs the service.
func NewProjectService(log *zap.Logger, deps ProjectDependencies) *ProjectService {
	return &ProjectService{projects: deps.ProjectRepo, features: deps.FeatureRepo, log: log}
}

// CreateProject stores a new project.
func (s *ProjectService) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	project := &domain.Project{Name: name}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return project, nil
}

// GetProject fetches one project.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return project, nil
}

// ListProjects returns all projects.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return projects, nil
}

// CreateFeature stores a new feature under an existing project.
func (s *ProjectService) CreateFeature(ctx context.Context, projectID, name string) (*domain.Feature, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	feature := &domain.Feature{Name: name, ProjectID: projectID}
	if err := s.features.Create(ctx, feature); err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return feature, nil
}

// ListFeatures returns features, optionally restricted to one project.
func (s *ProjectService) ListFeatures(ctx context.Context, projectID *string) ([]domain.Feature, error) {
	features, err := s.features.List(ctx, repository.FeatureFilter{ProjectID: projectID})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return features, nil
}

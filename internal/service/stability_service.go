package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// StabilityService computes the 0-100 health metric per feature from its bug
// history.
type StabilityService struct {
	issues   repository.IssueRepository
	features repository.FeatureRepository
	projects repository.ProjectRepository
	cfg      config.AnalyticsConfig
	log      *zap.Logger
}

// StabilityDependencies bundles requirements for the service.
type StabilityDependencies struct {
	IssueRepo   repository.IssueRepository
	FeatureRepo repository.FeatureRepository
	ProjectRepo repository.ProjectRepository
}

// NewStabilityService constructs the service.
func NewStabilityService(cfg config.AnalyticsConfig, log *zap.Logger, deps StabilityDependencies) *StabilityService {
	return &StabilityService{
		issues:   deps.IssueRepo,
		features: deps.FeatureRepo,
		projects: deps.ProjectRepo,
		cfg:      cfg,
		log:      log,
	}
}

// FeatureStability scores every feature, optionally restricted to one
// project. A feature with no bugs scores a perfect 100.
func (s *StabilityService) FeatureStability(ctx context.Context, projectID *string) ([]domain.FeatureStability, error) {
	projectNames, err := s.projectNames(ctx, projectID)
	if err != nil {
		return nil, err
	}

	features, err := s.features.List(ctx, repository.FeatureFilter{ProjectID: projectID})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	results := make([]domain.FeatureStability, 0, len(features))
	for i := range features {
		feature := &features[i]
		stability, err := s.scoreFeature(ctx, feature, projectNames[feature.ProjectID])
		if err != nil {
			return nil, err
		}
		results = append(results, *stability)
	}
	return results, nil
}

func (s *StabilityService) scoreFeature(ctx context.Context, feature *domain.Feature, projectName string) (*domain.FeatureStability, error) {
	issues, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{FeatureID: &feature.ID})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	result := &domain.FeatureStability{
		FeatureID:   feature.ID,
		FeatureName: feature.Name,
		ProjectName: projectName,
		TotalBugs:   len(issues),
	}
	for i := range issues {
		switch issues[i].Severity {
		case domain.SeverityCritical:
			result.CriticalBugs++
		case domain.SeverityHigh:
			result.HighBugs++
		case domain.SeverityMedium:
			result.MediumBugs++
		case domain.SeverityLow:
			result.LowBugs++
		}
		if issues[i].IsRecurring {
			result.RecurringBugs++
		}
	}

	penalty := float64(result.CriticalBugs)*s.cfg.StabilityCriticalWeight +
		float64(result.HighBugs)*s.cfg.StabilityHighWeight +
		float64(result.MediumBugs)*s.cfg.StabilityMediumWeight +
		float64(result.LowBugs)*s.cfg.StabilityLowWeight +
		float64(result.RecurringBugs)*s.cfg.StabilityRecurringWeight
	result.StabilityScore = clamp(100-penalty, 0, 100)
	return result, nil
}

func (s *StabilityService) projectNames(ctx context.Context, projectID *string) (map[string]string, error) {
	names := make(map[string]string)
	if projectID != nil {
		project, err := s.projects.GetByID(ctx, *projectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("project", map[string]any{"project_id": *projectID})
			}
			return nil, apperrors.NewRepositoryFailure(err)
		}
		names[project.ID] = project.Name
		return names, nil
	}

	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	for i := range projects {
		names[projects[i].ID] = projects[i].Name
	}
	return names, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// ProductivityService scores developer output from resolved issues, weighted
// by severity and fix quality.
type ProductivityService struct {
	issues     repository.IssueRepository
	developers repository.DeveloperRepository
	cfg        config.AnalyticsConfig
	log        *zap.Logger
}

// ProductivityDependencies bundles requirements for the service.
type ProductivityDependencies struct {
	IssueRepo     repository.IssueRepository
	DeveloperRepo repository.DeveloperRepository
}

// NewProductivityService constructs the service.
func NewProductivityService(cfg config.AnalyticsConfig, log *zap.Logger, deps ProductivityDependencies) *ProductivityService {
	return &ProductivityService{
		issues:     deps.IssueRepo,
		developers: deps.DeveloperRepo,
		cfg:        cfg,
		log:        log,
	}
}

// Score computes the productivity score for a single developer over the given
// timeframe. A nil timeframe defaults to the trailing scoring window. Managers
// are never scored.
func (s *ProductivityService) Score(ctx context.Context, developerID string, timeframe *domain.Timeframe) (*domain.ProductivityScore, error) {
	dev, err := s.developers.GetByID(ctx, developerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}
	if dev.IsManager() {
		return nil, apperrors.NewNotApplicable("productivity scoring does not apply to managers", map[string]any{
			"developer_id": developerID,
			"role":         string(dev.Role),
		})
	}

	tf, err := s.resolveTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	return s.scoreDeveloper(ctx, dev, tf)
}

// Rankings scores every active developer and returns them ordered best-first.
// Developers whose data cannot be fetched are skipped rather than failing the
// whole ranking.
func (s *ProductivityService) Rankings(ctx context.Context, timeframe *domain.Timeframe) ([]domain.ProductivityScore, error) {
	tf, err := s.resolveTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	role := domain.RoleDeveloper
	active := true
	devs, err := s.developers.List(ctx, repository.DeveloperFilter{Role: &role, Active: &active})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	scores := make([]domain.ProductivityScore, 0, len(devs))
	for i := range devs {
		score, err := s.scoreDeveloper(ctx, &devs[i], tf)
		if err != nil {
			s.log.Warn("skipping developer in rankings",
				zap.String("developer_id", devs[i].ID),
				zap.Error(err),
			)
			continue
		}
		scores = append(scores, *score)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if scores[i].ResolvedCount != scores[j].ResolvedCount {
			return scores[i].ResolvedCount > scores[j].ResolvedCount
		}
		return scores[i].DeveloperID < scores[j].DeveloperID
	})
	return scores, nil
}

func (s *ProductivityService) scoreDeveloper(ctx context.Context, dev *domain.Developer, tf domain.Timeframe) (*domain.ProductivityScore, error) {
	resolved, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{
		AssignedToID: &dev.ID,
		Statuses:     []domain.IssueStatus{domain.IssueStatusResolved, domain.IssueStatusClosed},
		ResolvedFrom: &tf.Start,
		ResolvedTo:   &tf.End,
	})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	open, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{
		AssignedToID: &dev.ID,
		Statuses:     []domain.IssueStatus{domain.IssueStatusOpen, domain.IssueStatusInProgress},
		CreatedFrom:  &tf.Start,
		CreatedTo:    &tf.End,
	})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	result := &domain.ProductivityScore{
		DeveloperID:   dev.ID,
		DeveloperName: dev.FullName,
		Timeframe:     tf,
	}
	if len(resolved) == 0 {
		return result, nil
	}

	var (
		weightedSum  float64
		totalDays    float64
		totalHours   float64
		totalQuality int
		hoursCount   int
		qualityCount int
	)
	for i := range resolved {
		issue := &resolved[i]
		if issue.ResolutionTime != nil {
			totalHours += *issue.ResolutionTime
			totalDays += *issue.ResolutionTime / 24
			hoursCount++
		}
		if issue.FixQuality != nil {
			weightedSum += s.severityWeight(issue.Severity) * float64(*issue.FixQuality)
			totalQuality += *issue.FixQuality
			qualityCount++
		}
		if issue.IsRecurring {
			result.RecurringCount++
		}
	}

	result.ResolvedCount = len(resolved)
	result.Score = weightedSum / maxFloat(totalDays, 1) * 10
	if hoursCount > 0 {
		result.AvgResolutionTime = totalHours / float64(hoursCount)
	}
	if qualityCount > 0 {
		result.AvgFixQuality = float64(totalQuality) / float64(qualityCount)
	}
	result.CompletionRate = float64(len(resolved)) / float64(len(resolved)+len(open))
	return result, nil
}

func (s *ProductivityService) severityWeight(severity domain.IssueSeverity) float64 {
	switch severity {
	case domain.SeverityCritical:
		return s.cfg.SeverityCriticalWeight
	case domain.SeverityHigh:
		return s.cfg.SeverityHighWeight
	case domain.SeverityMedium:
		return s.cfg.SeverityMediumWeight
	default:
		return s.cfg.SeverityLowWeight
	}
}

func (s *ProductivityService) resolveTimeframe(tf *domain.Timeframe) (domain.Timeframe, error) {
	if tf == nil {
		end := time.Now().UTC()
		return domain.Timeframe{Start: end.Add(-s.cfg.ProductivityWindow()), End: end}, nil
	}
	if tf.End.Before(tf.Start) {
		return domain.Timeframe{}, apperrors.NewValidationError("timeframe end precedes start", map[string]any{
			"start": tf.Start,
			"end":   tf.End,
		})
	}
	return *tf, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

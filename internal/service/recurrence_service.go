package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/analytics"
	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/events"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// RecurrenceService links new issues to previously resolved issues on the
// same feature. It is the only analytics component that writes to the store.
type RecurrenceService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	cfg        config.AnalyticsConfig
	log        *zap.Logger
}

// RecurrenceDependencies bundles requirements for the service.
type RecurrenceDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
}

// NewRecurrenceService constructs the service.
func NewRecurrenceService(cfg config.AnalyticsConfig, log *zap.Logger, deps RecurrenceDependencies) *RecurrenceService {
	return &RecurrenceService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
		log:        log,
	}
}

// DetectRecurrence decides whether the issue is a recurrence of a resolved
// issue on the same feature and links it to the chain root. Re-invoking on an
// already-linked issue is a no-op.
func (s *RecurrenceService) DetectRecurrence(ctx context.Context, issueID string) (*domain.RecurrenceLink, error) {
	target, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}

	if target.ParentIssueID != nil {
		return &domain.RecurrenceLink{Linked: true, ParentIssueID: target.ParentIssueID}, nil
	}
	if target.RecurrenceCount > 0 {
		// already a chain root; linking it under an older issue would split
		// its chain into two roots
		return &domain.RecurrenceLink{}, nil
	}
	if target.FeatureID == nil {
		// cross-feature recurrence is out of scope
		return &domain.RecurrenceLink{}, nil
	}

	candidate, similarity, err := s.findBestCandidate(ctx, target)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return &domain.RecurrenceLink{}, nil
	}

	rootID := candidate.ID
	if candidate.ParentIssueID != nil {
		// candidates that are themselves children always point at the chain
		// root, so a single hop lands there
		rootID = *candidate.ParentIssueID
	}
	if rootID == target.ID {
		return &domain.RecurrenceLink{}, nil
	}

	linked, err := s.issues.LinkRecurrence(ctx, target.ID, rootID)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	if !linked {
		// lost the race to a concurrent call; report whatever won
		current, err := s.issues.GetByID(ctx, target.ID)
		if err != nil {
			return nil, apperrors.NewRepositoryFailure(err)
		}
		return &domain.RecurrenceLink{Linked: current.ParentIssueID != nil, ParentIssueID: current.ParentIssueID}, nil
	}

	s.log.Info("recurrence linked",
		zap.String("issue_id", target.ID),
		zap.String("root_id", rootID),
		zap.Float64("similarity", similarity),
	)
	s.publishLinked(ctx, target.ID, rootID, similarity)

	return &domain.RecurrenceLink{Linked: true, ParentIssueID: &rootID, Similarity: similarity}, nil
}

// findBestCandidate scans resolved issues on the target's feature within the
// lookback window and returns the most similar one at or above the threshold.
// Ties are broken by most-recently-resolved.
func (s *RecurrenceService) findBestCandidate(ctx context.Context, target *domain.Issue) (*domain.Issue, float64, error) {
	from := target.CreatedAt.Add(-s.cfg.RecurrenceLookback())
	to := target.CreatedAt
	candidates, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{
		FeatureID:    target.FeatureID,
		Statuses:     []domain.IssueStatus{domain.IssueStatusResolved, domain.IssueStatusClosed},
		ResolvedFrom: &from,
		ResolvedTo:   &to,
	})
	if err != nil {
		return nil, 0, apperrors.NewRepositoryFailure(err)
	}

	var best *domain.Issue
	bestScore := 0.0
	for i := range candidates {
		cand := &candidates[i]
		if cand.ID == target.ID {
			continue
		}
		if cand.ParentIssueID != nil && *cand.ParentIssueID == target.ID {
			// already a descendant of the target
			continue
		}
		score := analytics.TitleSimilarity(target.Title, cand.Title)
		if score < s.cfg.SimilarityThreshold {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && resolvedAfter(cand, best)) {
			best = cand
			bestScore = score
		}
	}
	return best, bestScore, nil
}

// Analysis summarizes recurrence chains over the trailing twelve months.
func (s *RecurrenceService) Analysis(ctx context.Context) (*domain.RecurrenceAnalysis, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	issues, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{CreatedFrom: &start})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	type monthCounts struct {
		total     int
		recurring int
	}
	byMonth := make(map[string]monthCounts)

	result := &domain.RecurrenceAnalysis{}
	for i := range issues {
		issue := &issues[i]
		result.TotalIssues++
		month := issue.CreatedAt.UTC().Format("2006-01")
		counts := byMonth[month]
		counts.total++
		if issue.IsRecurring {
			result.RecurringIssues++
			counts.recurring++
		}
		byMonth[month] = counts
		if issue.ParentIssueID == nil && issue.RecurrenceCount > 0 {
			result.ChainCount++
			if chain := issue.RecurrenceCount + 1; chain > result.LongestChain {
				result.LongestChain = chain
			}
		}
	}

	// emit all twelve months in order, including empty ones
	for i := 0; i < 12; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		counts := byMonth[month]
		result.MonthlyTrends = append(result.MonthlyTrends, domain.MonthlyRecurrence{
			Month:           month,
			TotalIssues:     counts.total,
			RecurringIssues: counts.recurring,
		})
	}
	return result, nil
}

func (s *RecurrenceService) publishLinked(ctx context.Context, issueID, rootID string, similarity float64) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRecurrenceLinked,
		IssueID:   issueID,
		Timestamp: time.Now(),
		Payload: events.RecurrenceLinkedPayload{
			ParentIssueID: rootID,
			Similarity:    similarity,
		},
	})
}

func resolvedAfter(a, b *domain.Issue) bool {
	if a.ResolvedAt == nil || b.ResolvedAt == nil {
		return false
	}
	return a.ResolvedAt.After(*b.ResolvedAt)
}

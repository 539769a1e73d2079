package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/events"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// allowedTransitions is the issue status machine. Terminal states only move
// forward to closed or back to open on an explicit reopen.
var allowedTransitions = map[domain.IssueStatus][]domain.IssueStatus{
	domain.IssueStatusOpen:       {domain.IssueStatusInProgress, domain.IssueStatusClosed},
	domain.IssueStatusInProgress: {domain.IssueStatusResolved, domain.IssueStatusClosed, domain.IssueStatusOpen},
	domain.IssueStatusResolved:   {domain.IssueStatusClosed, domain.IssueStatusOpen},
	domain.IssueStatusClosed:     {},
}

// IssueService owns issue lifecycle mutations and the reads backing them.
type IssueService struct {
	issues     repository.IssueRepository
	features   repository.FeatureRepository
	projects   repository.ProjectRepository
	developers repository.DeveloperRepository
	history    repository.IssueHistoryRepository
	dispatcher events.Dispatcher
	log        *zap.Logger
}

// IssueDependencies bundles requirements for the service.
type IssueDependencies struct {
	IssueRepo     repository.IssueRepository
	FeatureRepo   repository.FeatureRepository
	ProjectRepo   repository.ProjectRepository
	DeveloperRepo repository.DeveloperRepository
	HistoryRepo   repository.IssueHistoryRepository
	Dispatcher    events.Dispatcher
}

// NewIssueService constructs the service.
func NewIssueService(log *zap.Logger, deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		features:   deps.FeatureRepo,
		projects:   deps.ProjectRepo,
		developers: deps.DeveloperRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		log:        log,
	}
}

// IssueCreateInput carries fields for creating an issue.
type IssueCreateInput struct {
	Title        string
	Description  string
	Severity     domain.IssueSeverity
	ProjectID    string
	FeatureID    *string
	AssignedToID *string
}

// Create validates the input, stores the issue as open and publishes the
// creation event that triggers recurrence detection.
func (s *IssueService) Create(ctx context.Context, actorID *string, input IssueCreateInput) (*domain.Issue, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if !domain.ValidSeverity(input.Severity) {
		return nil, apperrors.NewValidationError("invalid severity", map[string]any{"severity": string(input.Severity)})
	}
	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": input.ProjectID})
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}
	if input.FeatureID != nil {
		feature, err := s.features.GetByID(ctx, *input.FeatureID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("feature", map[string]any{"feature_id": *input.FeatureID})
			}
			return nil, apperrors.NewRepositoryFailure(err)
		}
		if feature.ProjectID != input.ProjectID {
			return nil, apperrors.NewValidationError("feature belongs to a different project", map[string]any{
				"feature_id": *input.FeatureID,
				"project_id": input.ProjectID,
			})
		}
	}
	if input.AssignedToID != nil {
		if err := s.validateAssignee(ctx, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	issue := &domain.Issue{
		Title:        input.Title,
		Description:  input.Description,
		Severity:     input.Severity,
		Status:       domain.IssueStatusOpen,
		ProjectID:    input.ProjectID,
		FeatureID:    input.FeatureID,
		AssignedToID: input.AssignedToID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventIssueCreated,
		IssueID:   issue.ID,
		ActorID:   actorID,
		Timestamp: issue.CreatedAt,
		Payload: events.IssueCreatedPayload{
			ProjectID: issue.ProjectID,
			FeatureID: issue.FeatureID,
			Severity:  issue.Severity,
			Title:     issue.Title,
		},
	})
	return issue, nil
}

// Get fetches one issue by ID.
func (s *IssueService) Get(ctx context.Context, issueID string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return issue, nil
}

// List returns issues matching the filter.
func (s *IssueService) List(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	issues, err := s.issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return issues, nil
}

// TransitionStatus moves an issue through its lifecycle. Resolving requires a
// fix quality and stamps the resolution time; reopening clears both.
func (s *IssueService) TransitionStatus(ctx context.Context, actorID *string, issueID string, newStatus domain.IssueStatus, fixQuality *int) (*domain.Issue, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(newStatus)})
	}

	issue, err := s.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.Status == newStatus {
		return issue, nil
	}
	if !transitionAllowed(issue.Status, newStatus) {
		return nil, apperrors.NewConflict("status transition not allowed", map[string]any{
			"from": string(issue.Status),
			"to":   string(newStatus),
		})
	}

	oldStatus := issue.Status
	now := time.Now().UTC()
	issue.Status = newStatus
	issue.UpdatedAt = now

	switch {
	case newStatus == domain.IssueStatusResolved:
		if fixQuality == nil || *fixQuality < 1 || *fixQuality > 5 {
			return nil, apperrors.NewValidationError("fix quality must be between 1 and 5", nil)
		}
		hours := now.Sub(issue.CreatedAt).Hours()
		issue.ResolvedAt = &now
		issue.ResolutionTime = &hours
		issue.FixQuality = fixQuality
	case newStatus == domain.IssueStatusOpen:
		issue.ResolvedAt = nil
		issue.ResolutionTime = nil
		issue.FixQuality = nil
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	s.recordHistory(ctx, issue.ID, actorID, domain.ChangeTypeStatus,
		map[string]any{"status": string(oldStatus)},
		map[string]any{"status": string(newStatus)},
	)

	eventType := events.EventIssueStatusMoved
	if newStatus == domain.IssueStatusResolved {
		eventType = events.EventIssueResolved
	} else if newStatus == domain.IssueStatusOpen && oldStatus.IsTerminal() {
		eventType = events.EventIssueReopened
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		IssueID:   issue.ID,
		ActorID:   actorID,
		Timestamp: now,
		Payload:   events.IssueStatusMovedPayload{OldStatus: oldStatus, NewStatus: newStatus},
	})
	return issue, nil
}

// Assign sets or clears the assignee. Managers are never assignable.
func (s *IssueService) Assign(ctx context.Context, actorID *string, issueID string, developerID *string) (*domain.Issue, error) {
	issue, err := s.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if developerID != nil {
		if err := s.validateAssignee(ctx, *developerID); err != nil {
			return nil, err
		}
	}

	oldAssignee := issue.AssignedToID
	issue.AssignedToID = developerID
	issue.UpdatedAt = time.Now().UTC()
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	s.recordHistory(ctx, issue.ID, actorID, domain.ChangeTypeAssignee,
		map[string]any{"assigned_to_id": deref(oldAssignee)},
		map[string]any{"assigned_to_id": deref(developerID)},
	)
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventIssueAssigned,
		IssueID:   issue.ID,
		ActorID:   actorID,
		Timestamp: issue.UpdatedAt,
		Payload:   events.IssueAssignedPayload{AssignedToID: developerID},
	})
	return issue, nil
}

// History returns the audit trail for an issue.
func (s *IssueService) History(ctx context.Context, issueID string) ([]domain.IssueHistory, error) {
	if _, err := s.Get(ctx, issueID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	return entries, nil
}

func (s *IssueService) validateAssignee(ctx context.Context, developerID string) error {
	dev, err := s.developers.GetByID(ctx, developerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
		}
		return apperrors.NewRepositoryFailure(err)
	}
	if !dev.Active {
		return apperrors.NewValidationError("developer is inactive", map[string]any{"developer_id": developerID})
	}
	if dev.IsManager() {
		return apperrors.NewValidationError("managers cannot be assigned issues", map[string]any{"developer_id": developerID})
	}
	return nil
}

func (s *IssueService) recordHistory(ctx context.Context, issueID string, actorID *string, changeType domain.HistoryChangeType, oldValue, newValue map[string]any) {
	err := s.history.Create(ctx, &domain.IssueHistory{
		IssueID:     issueID,
		ChangedByID: actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	})
	if err != nil {
		s.log.Warn("failed to record issue history", zap.String("issue_id", issueID), zap.Error(err))
	}
}

func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func transitionAllowed(from, to domain.IssueStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

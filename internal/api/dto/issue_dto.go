package dto

import (
	"time"

	"github.com/spec-kit/devtrack/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Severity     domain.IssueSeverity `json:"severity"`
	ProjectID    string               `json:"project_id"`
	FeatureID    *string              `json:"feature_id"`
	AssignedToID *string              `json:"assigned_to_id"`
}

// TransitionIssueRequest payload.
type TransitionIssueRequest struct {
	Status     domain.IssueStatus `json:"status"`
	FixQuality *int               `json:"fix_quality"`
}

// AssignIssueRequest payload.
type AssignIssueRequest struct {
	DeveloperID *string `json:"developer_id"`
}

// IssueResponse response.
type IssueResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Severity        domain.IssueSeverity `json:"severity"`
	Status          domain.IssueStatus   `json:"status"`
	ProjectID       string               `json:"project_id"`
	FeatureID       *string              `json:"feature_id"`
	AssignedToID    *string              `json:"assigned_to_id"`
	ResolutionTime  *float64             `json:"resolution_time_hours"`
	FixQuality      *int                 `json:"fix_quality"`
	IsRecurring     bool                 `json:"is_recurring"`
	RecurrenceCount int                  `json:"recurrence_count"`
	ParentIssueID   *string              `json:"parent_issue_id"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	ResolvedAt      *time.Time           `json:"resolved_at"`
}

// IssueHistoryResponse response.
type IssueHistoryResponse struct {
	ID         string         `json:"id"`
	ChangeType string         `json:"change_type"`
	ChangedBy  *string        `json:"changed_by"`
	OldValue   map[string]any `json:"old_value"`
	NewValue   map[string]any `json:"new_value"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// CreateFeatureRequest payload.
type CreateFeatureRequest struct {
	Name string `json:"name"`
}

// ProjectResponse response.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FeatureResponse response.
type FeatureResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

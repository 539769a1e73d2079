package events

import (
	"time"

	"github.com/spec-kit/devtrack/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated     EventType = "issue_created"
	EventIssueStatusMoved EventType = "issue_status_moved"
	EventIssueResolved    EventType = "issue_resolved"
	EventIssueReopened    EventType = "issue_reopened"
	EventRecurrenceLinked EventType = "recurrence_linked"
	EventIssueAssigned    EventType = "issue_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	ProjectID string               `json:"project_id"`
	FeatureID *string              `json:"feature_id,omitempty"`
	Severity  domain.IssueSeverity `json:"severity"`
	Title     string               `json:"title"`
}

// IssueStatusMovedPayload payload.
type IssueStatusMovedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	AssignedToID *string `json:"assigned_to_id,omitempty"`
}

// RecurrenceLinkedPayload payload.
type RecurrenceLinkedPayload struct {
	ParentIssueID string  `json:"parent_issue_id"`
	Similarity    float64 `json:"similarity"`
}

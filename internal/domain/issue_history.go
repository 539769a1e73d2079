package domain

import "time"

// HistoryChangeType enumerates audited mutations.
type HistoryChangeType string

const (
	ChangeTypeStatus     HistoryChangeType = "STATUS"
	ChangeTypeAssignee   HistoryChangeType = "ASSIGNEE"
	ChangeTypeRecurrence HistoryChangeType = "RECURRENCE"
)

// IssueHistory is an audit entry for an issue mutation.
type IssueHistory struct {
	ID          string
	IssueID     string
	ChangedByID *string
	ChangeType  HistoryChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}

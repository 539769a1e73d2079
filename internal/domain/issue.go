package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// IssueSeverity enumerates impact levels.
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// Issue is the aggregate for tracked defects and tasks.
type Issue struct {
	ID              string
	Title           string
	Description     string
	Severity        IssueSeverity
	Status          IssueStatus
	ProjectID       string
	FeatureID       *string
	AssignedToID    *string
	ResolutionTime  *float64 // hours between CreatedAt and ResolvedAt
	FixQuality      *int     // 1..5, set together with ResolutionTime
	IsRecurring     bool
	RecurrenceCount int
	ParentIssueID   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}

// IsTerminal reports whether the issue reached a resolved or closed state.
func (s IssueStatus) IsTerminal() bool {
	return s == IssueStatusResolved || s == IssueStatusClosed
}

// ValidSeverity reports whether the value is a known severity.
func ValidSeverity(severity IssueSeverity) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether the value is a known status.
func ValidStatus(status IssueStatus) bool {
	switch status {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

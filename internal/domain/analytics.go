package domain

import "time"

// TrendDirection classifies a bucketed count series over time.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendStable     TrendDirection = "stable"
	TrendDecreasing TrendDirection = "decreasing"
)

// Timeframe bounds an analytics query on resolution or creation timestamps.
type Timeframe struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the inclusive timeframe.
func (tf Timeframe) Contains(t time.Time) bool {
	return !t.Before(tf.Start) && !t.After(tf.End)
}

// ProductivityScore aggregates a developer's resolved-issue output.
type ProductivityScore struct {
	DeveloperID       string
	DeveloperName     string
	Score             float64
	ResolvedCount     int
	AvgResolutionTime float64 // hours
	AvgFixQuality     float64
	RecurringCount    int
	CompletionRate    float64
	Timeframe         Timeframe
}

// FeatureStability is the 0-100 health metric for a feature.
type FeatureStability struct {
	FeatureID      string
	FeatureName    string
	ProjectName    string
	StabilityScore float64
	TotalBugs      int
	RecurringBugs  int
	CriticalBugs   int
	HighBugs       int
	MediumBugs     int
	LowBugs        int
}

// HotspotEntityType distinguishes feature-level from project-level hotspots.
type HotspotEntityType string

const (
	HotspotFeature HotspotEntityType = "feature"
	HotspotProject HotspotEntityType = "project"
)

// Hotspot is a risk-ranked entity with trend and recommendation attached.
type Hotspot struct {
	ID             string
	Name           string
	Type           HotspotEntityType
	BugCount       int
	BugDensity     float64 // bugs per day since first bug
	RecurringRate  float64
	CriticalCount  int
	RiskScore      float64
	Trend          TrendDirection
	Recommendation string
}

// TimeToFixGroup is a mean resolution time for one grouping key value.
type TimeToFixGroup struct {
	Key      string
	Label    string
	AvgHours float64
	Count    int
}

// TimeToFixReport aggregates resolution durations across groupings.
type TimeToFixReport struct {
	BySeverity   map[IssueSeverity]float64
	ByDeveloper  []TimeToFixGroup
	ByProject    []TimeToFixGroup
	OverallHours float64
	MatchedCount int
}

// RecurrenceLink is the outcome of a single detectRecurrence call.
type RecurrenceLink struct {
	Linked        bool
	ParentIssueID *string
	Similarity    float64
}

// MonthlyRecurrence is one month's issue totals for the recurrence analysis.
type MonthlyRecurrence struct {
	Month           string // YYYY-MM
	TotalIssues     int
	RecurringIssues int
}

// RecurrenceAnalysis summarizes recurrence chains across the store.
type RecurrenceAnalysis struct {
	MonthlyTrends   []MonthlyRecurrence
	TotalIssues     int
	RecurringIssues int
	ChainCount      int
	LongestChain    int
}

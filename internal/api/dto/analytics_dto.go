package dto

import (
	"time"

	"github.com/spec-kit/devtrack/internal/domain"
)

// ProductivityScoreResponse response.
type ProductivityScoreResponse struct {
	DeveloperID       string    `json:"developer_id"`
	DeveloperName     string    `json:"developer_name"`
	Score             float64   `json:"score"`
	ResolvedCount     int       `json:"resolved_count"`
	AvgResolutionTime float64   `json:"avg_resolution_time_hours"`
	AvgFixQuality     float64   `json:"avg_fix_quality"`
	RecurringCount    int       `json:"recurring_count"`
	CompletionRate    float64   `json:"completion_rate"`
	TimeframeStart    time.Time `json:"timeframe_start"`
	TimeframeEnd      time.Time `json:"timeframe_end"`
}

// FeatureStabilityResponse response.
type FeatureStabilityResponse struct {
	FeatureID      string  `json:"feature_id"`
	FeatureName    string  `json:"feature_name"`
	ProjectName    string  `json:"project_name"`
	StabilityScore float64 `json:"stability_score"`
	TotalBugs      int     `json:"total_bugs"`
	RecurringBugs  int     `json:"recurring_bugs"`
	CriticalBugs   int     `json:"critical_bugs"`
	HighBugs       int     `json:"high_bugs"`
	MediumBugs     int     `json:"medium_bugs"`
	LowBugs        int     `json:"low_bugs"`
}

// HotspotResponse response.
type HotspotResponse struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Type           domain.HotspotEntityType `json:"type"`
	BugCount       int                      `json:"bug_count"`
	BugDensity     float64                  `json:"bug_density"`
	RecurringRate  float64                  `json:"recurring_rate"`
	CriticalCount  int                      `json:"critical_count"`
	RiskScore      float64                  `json:"risk_score"`
	Trend          domain.TrendDirection    `json:"trend"`
	Recommendation string                   `json:"recommendation"`
}

// TimeToFixGroupResponse response.
type TimeToFixGroupResponse struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	AvgHours float64 `json:"avg_hours"`
	Count    int     `json:"count"`
}

// TimeToFixResponse response.
type TimeToFixResponse struct {
	BySeverity   map[string]float64       `json:"by_severity"`
	ByDeveloper  []TimeToFixGroupResponse `json:"by_developer"`
	ByProject    []TimeToFixGroupResponse `json:"by_project"`
	OverallHours float64                  `json:"overall_hours"`
	MatchedCount int                      `json:"matched_count"`
}

// RecurrenceLinkResponse response.
type RecurrenceLinkResponse struct {
	Linked        bool    `json:"linked"`
	ParentIssueID *string `json:"parent_issue_id"`
	Similarity    float64 `json:"similarity"`
}

// MonthlyRecurrenceResponse response.
type MonthlyRecurrenceResponse struct {
	Month           string `json:"month"`
	TotalIssues     int    `json:"total_issues"`
	RecurringIssues int    `json:"recurring_issues"`
}

// RecurrenceAnalysisResponse response.
type RecurrenceAnalysisResponse struct {
	MonthlyTrends   []MonthlyRecurrenceResponse `json:"monthly_trends"`
	TotalIssues     int                         `json:"total_issues"`
	RecurringIssues int                         `json:"recurring_issues"`
	ChainCount      int                         `json:"chain_count"`
	LongestChain    int                         `json:"longest_chain"`
}

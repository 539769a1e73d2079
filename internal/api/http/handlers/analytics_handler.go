package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/devtrack/internal/api/dto"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/service"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// AnalyticsHandler exposes the scoring engine over HTTP.
type AnalyticsHandler struct {
	productivity *service.ProductivityService
	stability    *service.StabilityService
	hotspots     *service.HotspotService
	timeToFix    *service.TimeToFixService
	recurrence   *service.RecurrenceService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(
	productivity *service.ProductivityService,
	stability *service.StabilityService,
	hotspots *service.HotspotService,
	timeToFix *service.TimeToFixService,
	recurrence *service.RecurrenceService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		productivity: productivity,
		stability:    stability,
		hotspots:     hotspots,
		timeToFix:    timeToFix,
		recurrence:   recurrence,
	}
}

// GetProductivity GET /analytics/productivity/:developerID.
func (h *AnalyticsHandler) GetProductivity(c *fiber.Ctx) error {
	timeframe, err := parseTimeframeQuery(c)
	if err != nil {
		return err
	}
	score, err := h.productivity.Score(c.UserContext(), c.Params("developerID"), timeframe)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productivityResponse(score)})
}

// GetProductivityRankings GET /analytics/productivity/rankings.
func (h *AnalyticsHandler) GetProductivityRankings(c *fiber.Ctx) error {
	timeframe, err := parseTimeframeQuery(c)
	if err != nil {
		return err
	}
	rankings, err := h.productivity.Rankings(c.UserContext(), timeframe)
	if err != nil {
		return err
	}
	items := make([]dto.ProductivityScoreResponse, 0, len(rankings))
	for i := range rankings {
		items = append(items, productivityResponse(&rankings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetFeatureStability GET /analytics/stability.
func (h *AnalyticsHandler) GetFeatureStability(c *fiber.Ctx) error {
	var projectID *string
	if v := c.Query("project_id"); v != "" {
		projectID = &v
	}
	results, err := h.stability.FeatureStability(c.UserContext(), projectID)
	if err != nil {
		return err
	}
	items := make([]dto.FeatureStabilityResponse, 0, len(results))
	for i := range results {
		items = append(items, dto.FeatureStabilityResponse{
			FeatureID:      results[i].FeatureID,
			FeatureName:    results[i].FeatureName,
			ProjectName:    results[i].ProjectName,
			StabilityScore: results[i].StabilityScore,
			TotalBugs:      results[i].TotalBugs,
			RecurringBugs:  results[i].RecurringBugs,
			CriticalBugs:   results[i].CriticalBugs,
			HighBugs:       results[i].HighBugs,
			MediumBugs:     results[i].MediumBugs,
			LowBugs:        results[i].LowBugs,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetHotspots GET /analytics/hotspots.
func (h *AnalyticsHandler) GetHotspots(c *fiber.Ctx) error {
	hotspots, err := h.hotspots.DetectHotspots(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.HotspotResponse, 0, len(hotspots))
	for i := range hotspots {
		items = append(items, dto.HotspotResponse{
			ID:             hotspots[i].ID,
			Name:           hotspots[i].Name,
			Type:           hotspots[i].Type,
			BugCount:       hotspots[i].BugCount,
			BugDensity:     hotspots[i].BugDensity,
			RecurringRate:  hotspots[i].RecurringRate,
			CriticalCount:  hotspots[i].CriticalCount,
			RiskScore:      hotspots[i].RiskScore,
			Trend:          hotspots[i].Trend,
			Recommendation: hotspots[i].Recommendation,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTimeToFix GET /analytics/time-to-fix.
func (h *AnalyticsHandler) GetTimeToFix(c *fiber.Ctx) error {
	timeframe, err := parseTimeframeQuery(c)
	if err != nil {
		return err
	}
	filters := service.TimeToFixFilters{Timeframe: timeframe}
	if v := c.Query("project_id"); v != "" {
		filters.ProjectID = &v
	}
	report, err := h.timeToFix.Report(c.UserContext(), filters)
	if err != nil {
		return err
	}

	bySeverity := make(map[string]float64, len(report.BySeverity))
	for severity, hours := range report.BySeverity {
		bySeverity[string(severity)] = hours
	}
	return c.JSON(fiber.Map{"data": dto.TimeToFixResponse{
		BySeverity:   bySeverity,
		ByDeveloper:  timeToFixGroups(report.ByDeveloper),
		ByProject:    timeToFixGroups(report.ByProject),
		OverallHours: report.OverallHours,
		MatchedCount: report.MatchedCount,
	}})
}

// DetectRecurrence POST /analytics/recurrence/:issueID.
func (h *AnalyticsHandler) DetectRecurrence(c *fiber.Ctx) error {
	link, err := h.recurrence.DetectRecurrence(c.UserContext(), c.Params("issueID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RecurrenceLinkResponse{
		Linked:        link.Linked,
		ParentIssueID: link.ParentIssueID,
		Similarity:    link.Similarity,
	}})
}

// GetRecurrenceAnalysis GET /analytics/recurrence/analysis.
func (h *AnalyticsHandler) GetRecurrenceAnalysis(c *fiber.Ctx) error {
	analysis, err := h.recurrence.Analysis(c.UserContext())
	if err != nil {
		return err
	}
	months := make([]dto.MonthlyRecurrenceResponse, 0, len(analysis.MonthlyTrends))
	for _, month := range analysis.MonthlyTrends {
		months = append(months, dto.MonthlyRecurrenceResponse{
			Month:           month.Month,
			TotalIssues:     month.TotalIssues,
			RecurringIssues: month.RecurringIssues,
		})
	}
	return c.JSON(fiber.Map{"data": dto.RecurrenceAnalysisResponse{
		MonthlyTrends:   months,
		TotalIssues:     analysis.TotalIssues,
		RecurringIssues: analysis.RecurringIssues,
		ChainCount:      analysis.ChainCount,
		LongestChain:    analysis.LongestChain,
	}})
}

func productivityResponse(score *domain.ProductivityScore) dto.ProductivityScoreResponse {
	return dto.ProductivityScoreResponse{
		DeveloperID:       score.DeveloperID,
		DeveloperName:     score.DeveloperName,
		Score:             score.Score,
		ResolvedCount:     score.ResolvedCount,
		AvgResolutionTime: score.AvgResolutionTime,
		AvgFixQuality:     score.AvgFixQuality,
		RecurringCount:    score.RecurringCount,
		CompletionRate:    score.CompletionRate,
		TimeframeStart:    score.Timeframe.Start,
		TimeframeEnd:      score.Timeframe.End,
	}
}

func timeToFixGroups(groups []domain.TimeToFixGroup) []dto.TimeToFixGroupResponse {
	out := make([]dto.TimeToFixGroupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, dto.TimeToFixGroupResponse{
			Key:      group.Key,
			Label:    group.Label,
			AvgHours: group.AvgHours,
			Count:    group.Count,
		})
	}
	return out
}

func parseTimeframeQuery(c *fiber.Ctx) (*domain.Timeframe, error) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, apperrors.NewValidationError("from and to must be provided together", nil)
	}
	from, err := time.Parse(time.RFC3339, fromRaw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid from timestamp", map[string]any{"from": fromRaw})
	}
	to, err := time.Parse(time.RFC3339, toRaw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid to timestamp", map[string]any{"to": toRaw})
	}
	return &domain.Timeframe{Start: from, End: to}, nil
}

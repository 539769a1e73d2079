package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/devtrack/internal/api/dto"
	"github.com/spec-kit/devtrack/internal/auth"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	"github.com/spec-kit/devtrack/internal/service"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// IssuesHandler manages issue lifecycle endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.Create(c.UserContext(), actorID(c), service.IssueCreateInput{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Severity:     req.Severity,
		ProjectID:    req.ProjectID,
		FeatureID:    req.FeatureID,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListIssues GET /issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	filter, err := parseIssueQuery(c)
	if err != nil {
		return err
	}
	issues, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// TransitionIssue PATCH /issues/:id/status.
func (h *IssuesHandler) TransitionIssue(c *fiber.Ctx) error {
	var req dto.TransitionIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.service.TransitionStatus(c.UserContext(), actorID(c), c.Params("id"), req.Status, req.FixQuality)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// AssignIssue PATCH /issues/:id/assignee.
func (h *IssuesHandler) AssignIssue(c *fiber.Ctx) error {
	var req dto.AssignIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.service.Assign(c.UserContext(), actorID(c), c.Params("id"), req.DeveloperID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// GetIssueHistory GET /issues/:id/history.
func (h *IssuesHandler) GetIssueHistory(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.IssueHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.IssueHistoryResponse{
			ID:         entry.ID,
			ChangeType: string(entry.ChangeType),
			ChangedBy:  entry.ChangedByID,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func actorID(c *fiber.Ctx) *string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Developer == nil {
		return nil
	}
	return &principal.Developer.ID
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:              issue.ID,
		Title:           issue.Title,
		Description:     issue.Description,
		Severity:        issue.Severity,
		Status:          issue.Status,
		ProjectID:       issue.ProjectID,
		FeatureID:       issue.FeatureID,
		AssignedToID:    issue.AssignedToID,
		ResolutionTime:  issue.ResolutionTime,
		FixQuality:      issue.FixQuality,
		IsRecurring:     issue.IsRecurring,
		RecurrenceCount: issue.RecurrenceCount,
		ParentIssueID:   issue.ParentIssueID,
		CreatedAt:       issue.CreatedAt,
		UpdatedAt:       issue.UpdatedAt,
		ResolvedAt:      issue.ResolvedAt,
	}
}

func parseIssueQuery(c *fiber.Ctx) (repository.IssueFilter, error) {
	var filter repository.IssueFilter
	if v := c.Query("project_id"); v != "" {
		filter.ProjectID = &v
	}
	if v := c.Query("feature_id"); v != "" {
		filter.FeatureID = &v
	}
	if v := c.Query("assigned_to"); v != "" {
		filter.AssignedToID = &v
	}
	for _, raw := range splitQuery(c.Query("status")) {
		status := domain.IssueStatus(raw)
		if !domain.ValidStatus(status) {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range splitQuery(c.Query("severity")) {
		severity := domain.IssueSeverity(raw)
		if !domain.ValidSeverity(severity) {
			return filter, apperrors.NewValidationError("invalid severity filter", map[string]any{"severity": raw})
		}
		filter.Severities = append(filter.Severities, severity)
	}
	if v := c.Query("recurring"); v != "" {
		recurring := v == "true"
		filter.IsRecurring = &recurring
	}
	if v := c.Query("created_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid created_from timestamp", map[string]any{"created_from": v})
		}
		filter.CreatedFrom = &t
	}
	if v := c.Query("created_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid created_to timestamp", map[string]any{"created_to": v})
		}
		filter.CreatedTo = &t
	}
	filter.Limit = c.QueryInt("limit", 0)
	filter.Offset = c.QueryInt("offset", 0)
	return filter, nil
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

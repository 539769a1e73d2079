package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/devtrack/internal/api/dto"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/service"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// CatalogHandler manages project and feature endpoints.
type CatalogHandler struct {
	projects *service.ProjectService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(projectService *service.ProjectService) *CatalogHandler {
	return &CatalogHandler{projects: projectService}
}

// CreateProject POST /projects.
func (h *CatalogHandler) CreateProject(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.projects.CreateProject(c.UserContext(), strings.TrimSpace(req.Name))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// ListProjects GET /projects.
func (h *CatalogHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.projects.ListProjects(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetProject GET /projects/:id.
func (h *CatalogHandler) GetProject(c *fiber.Ctx) error {
	project, err := h.projects.GetProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// CreateFeature POST /projects/:id/features.
func (h *CatalogHandler) CreateFeature(c *fiber.Ctx) error {
	var req dto.CreateFeatureRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feature, err := h.projects.CreateFeature(c.UserContext(), c.Params("id"), strings.TrimSpace(req.Name))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": featureResponse(feature)})
}

// ListFeatures GET /features.
func (h *CatalogHandler) ListFeatures(c *fiber.Ctx) error {
	var projectID *string
	if v := c.Query("project_id"); v != "" {
		projectID = &v
	}
	features, err := h.projects.ListFeatures(c.UserContext(), projectID)
	if err != nil {
		return err
	}
	items := make([]dto.FeatureResponse, 0, len(features))
	for i := range features {
		items = append(items, featureResponse(&features[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{ID: project.ID, Name: project.Name, CreatedAt: project.CreatedAt}
}

func featureResponse(feature *domain.Feature) dto.FeatureResponse {
	return dto.FeatureResponse{
		ID:        feature.ID,
		ProjectID: feature.ProjectID,
		Name:      feature.Name,
		CreatedAt: feature.CreatedAt,
	}
}

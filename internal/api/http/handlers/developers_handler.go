package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/devtrack/internal/api/dto"
	"github.com/spec-kit/devtrack/internal/auth"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	"github.com/spec-kit/devtrack/internal/service"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// DevelopersHandler manages developer account and auth endpoints.
type DevelopersHandler struct {
	developers *service.DeveloperService
	authSvc    *service.AuthService
}

// NewDevelopersHandler constructs handler.
func NewDevelopersHandler(developerService *service.DeveloperService, authService *service.AuthService) *DevelopersHandler {
	return &DevelopersHandler{developers: developerService, authSvc: authService}
}

// Login POST /auth/login.
func (h *DevelopersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	result, err := h.authSvc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Developer: developerResponse(result.Developer),
	}})
}

// ChangePassword POST /auth/password/change.
func (h *DevelopersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Developer == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authSvc.ChangePassword(c.UserContext(), principal.Developer.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// CreateDeveloper POST /developers.
func (h *DevelopersHandler) CreateDeveloper(c *fiber.Ctx) error {
	var req dto.CreateDeveloperRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dev, err := h.developers.Create(c.UserContext(), service.DeveloperCreateInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		Seniority: req.Seniority,
		Skills:    req.Skills,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": developerResponse(dev)})
}

// ListDevelopers GET /developers.
func (h *DevelopersHandler) ListDevelopers(c *fiber.Ctx) error {
	var filter repository.DeveloperFilter
	if v := c.Query("role"); v != "" {
		role := domain.DeveloperRole(v)
		if !domain.ValidRole(role) {
			return apperrors.NewValidationError("invalid role filter", map[string]any{"role": v})
		}
		filter.Role = &role
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}
	devs, err := h.developers.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.DeveloperResponse, 0, len(devs))
	for i := range devs {
		items = append(items, developerResponse(&devs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDeveloper GET /developers/:id.
func (h *DevelopersHandler) GetDeveloper(c *fiber.Ctx) error {
	dev, err := h.developers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": developerResponse(dev)})
}

// DeactivateDeveloper DELETE /developers/:id.
func (h *DevelopersHandler) DeactivateDeveloper(c *fiber.Ctx) error {
	if err := h.developers.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deactivated": true}})
}

func developerResponse(dev *domain.Developer) dto.DeveloperResponse {
	return dto.DeveloperResponse{
		ID:        dev.ID,
		Name:      dev.FullName,
		Email:     dev.Email,
		Role:      dev.Role,
		Seniority: dev.Seniority,
		Skills:    dev.Skills,
		Active:    dev.Active,
		CreatedAt: dev.CreatedAt,
	}
}

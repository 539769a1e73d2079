package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/devtrack/internal/api/http/handlers"
	"github.com/spec-kit/devtrack/internal/auth"
	"github.com/spec-kit/devtrack/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Issues         *handlers.IssuesHandler
	Catalog        *handlers.CatalogHandler
	Developers     *handlers.DevelopersHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Developers.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/auth/password/change", cfg.Developers.ChangePassword)

	protected.Get("/projects", cfg.Catalog.ListProjects)
	protected.Get("/projects/:id", cfg.Catalog.GetProject)
	protected.Get("/features", cfg.Catalog.ListFeatures)

	protected.Post("/issues", cfg.Issues.CreateIssue)
	protected.Get("/issues", cfg.Issues.ListIssues)
	protected.Get("/issues/:id", cfg.Issues.GetIssue)
	protected.Get("/issues/:id/history", cfg.Issues.GetIssueHistory)
	protected.Patch("/issues/:id/status", cfg.Issues.TransitionIssue)
	protected.Patch("/issues/:id/assignee", cfg.Issues.AssignIssue)

	analytics := protected.Group("/analytics")
	analytics.Get("/productivity/rankings", cfg.Analytics.GetProductivityRankings)
	analytics.Get("/productivity/:developerID", cfg.Analytics.GetProductivity)
	analytics.Get("/stability", cfg.Analytics.GetFeatureStability)
	analytics.Get("/hotspots", cfg.Analytics.GetHotspots)
	analytics.Get("/time-to-fix", cfg.Analytics.GetTimeToFix)
	analytics.Get("/recurrence/analysis", cfg.Analytics.GetRecurrenceAnalysis)
	analytics.Post("/recurrence/:issueID", cfg.Analytics.DetectRecurrence)

	managers := protected.Group("", auth.RequireRole(domain.RoleManager))
	managers.Post("/projects", cfg.Catalog.CreateProject)
	managers.Post("/projects/:id/features", cfg.Catalog.CreateFeature)
	managers.Post("/developers", cfg.Developers.CreateDeveloper)
	managers.Delete("/developers/:id", cfg.Developers.DeactivateDeveloper)

	protected.Get("/developers", cfg.Developers.ListDevelopers)
	protected.Get("/developers/:id", cfg.Developers.GetDeveloper)
}

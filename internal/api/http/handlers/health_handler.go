package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks a dependency's reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

// NewHealthHandler constructs handler.
func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": h.version})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	statuses := fiber.Map{}
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(c.Context()); err != nil {
			statuses[name] = err.Error()
			healthy = false
			continue
		}
		statuses[name] = "ok"
	}
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "checks": statuses})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": statuses})
}

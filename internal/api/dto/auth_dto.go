package dto

import (
	"time"

	"github.com/spec-kit/devtrack/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse response.
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Developer DeveloperResponse `json:"developer"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateDeveloperRequest payload.
type CreateDeveloperRequest struct {
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Password  string                `json:"password"`
	Role      domain.DeveloperRole  `json:"role"`
	Seniority domain.SeniorityLevel `json:"seniority"`
	Skills    []string              `json:"skills"`
}

// DeveloperResponse response.
type DeveloperResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Role      domain.DeveloperRole  `json:"role"`
	Seniority domain.SeniorityLevel `json:"seniority"`
	Skills    []string              `json:"skills"`
	Active    bool                  `json:"active"`
	CreatedAt time.Time             `json:"created_at"`
}

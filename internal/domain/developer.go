package domain

import "time"

// DeveloperRole separates scoreable developers from managers.
type DeveloperRole string

const (
	RoleDeveloper DeveloperRole = "developer"
	RoleManager   DeveloperRole = "manager"
)

// SeniorityLevel enumerates career levels.
type SeniorityLevel string

const (
	SeniorityJunior    SeniorityLevel = "junior"
	SeniorityMid       SeniorityLevel = "mid"
	SenioritySenior    SeniorityLevel = "senior"
	SeniorityLead      SeniorityLevel = "lead"
	SeniorityPrincipal SeniorityLevel = "principal"
)

// Developer models a team member. Managers never receive issue assignments
// and are excluded from productivity scoring.
type Developer struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Skills       []string
	Seniority    SeniorityLevel
	Role         DeveloperRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsManager reports whether the developer holds the manager role.
func (d *Developer) IsManager() bool {
	return d != nil && d.Role == RoleManager
}

// ValidRole reports whether the value is a known role.
func ValidRole(role DeveloperRole) bool {
	return role == RoleDeveloper || role == RoleManager
}

// ValidSeniority reports whether the value is a known seniority level.
func ValidSeniority(level SeniorityLevel) bool {
	switch level {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead, SeniorityPrincipal:
		return true
	}
	return false
}

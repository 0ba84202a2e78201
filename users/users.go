package users

import (
	"strings"

	"github.com/jrsteele09/go-enrollment-client/internal/utils"
)

// RoleType represents the role the backend assigns to an account
type RoleType string

const (
	RoleAdmin           RoleType = "admin"            // Manages students, officers, courses and semesters
	RoleClearingOfficer RoleType = "clearing_officer" // Reviews and clears enrollment records
	RoleStudent         RoleType = "student"          // Views and requests own enrollments
)

// Valid reports whether the role is one the client knows how to route.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleClearingOfficer, RoleStudent:
		return true
	}
	return false
}

// Profile is the cached user profile returned by the backend on login.
type Profile struct {
	ID          string   `json:"id"`                    // Backend user identifier
	SchoolID    *string  `json:"schoolId,omitempty"`    // Student or staff number, when assigned
	FirstName   string   `json:"firstName"`             // First name of the user
	LastName    string   `json:"lastName"`              // Last name of the user
	Email       string   `json:"email"`                 // Login e-mail
	PhoneNumber *string  `json:"phoneNumber,omitempty"` // Optional contact number
	Role        RoleType `json:"role"`                  // Determines the dashboard
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Profile) HasRole(role RoleType) bool {
	return p != nil && p.Role == role
}

// DisplaySchoolID returns the school ID or "-" when none is assigned
func (p *Profile) DisplaySchoolID() string {
	if id := utils.Value(p.SchoolID); id != "" {
		return id
	}
	return "-"
}

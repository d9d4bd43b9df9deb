package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleNone       Role = "none"
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// ParseRole maps a stored or requested role name onto the closed set of roles.
// Anything unrecognised is RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleInstructor:
		return RoleInstructor
	case RoleStudent:
		return RoleStudent
	default:
		return RoleNone
	}
}

func (r Role) String() string {
	return string(r)
}

type Account struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleChange is the outcome of a single role transition.
type RoleChange struct {
	AccountID    string `json:"accountId"`
	PreviousRole Role   `json:"previousRole"`
	NewRole      Role   `json:"newRole"`
}

func (c RoleChange) Modified() bool {
	return c.PreviousRole != c.NewRole
}

// IdentityClaim is the payload signed into an access token. Any fields may be
// present; only email is interpreted by the server.
type IdentityClaim map[string]any

func (c IdentityClaim) Email() string {
	email, _ := c["email"].(string)
	return NormalizeEmail(email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is the explicit discriminant for an authenticated account.
// It is decided once at registration and carried in the JWT claims;
// handlers never infer a caller's role from record shape.
type Role string

// Account roles
const (
	RoleAdmin  Role = "admin"
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFarmer, RoleBuyer:
		return true
	}
	return false
}

// Account represents a login identity. Farmer and buyer accounts link to
// their domain profile via ProfileID; admin accounts have no profile.
type Account struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ProfileID    *uuid.UUID `json:"profile_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

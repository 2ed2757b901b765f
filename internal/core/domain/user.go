package domain

import "time"

// Role classifies an account holder. The role determines the monthly
// withdrawal quota, nothing else.
type Role string

const (
	RoleBenfek     Role = "benfek"
	RolePrincipal  Role = "principal"
	RolePharmacy   Role = "pharmacy"
	RoleResearcher Role = "researcher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBenfek, RolePrincipal, RolePharmacy, RoleResearcher:
		return true
	}
	return false
}

// User is an account holder. Each user owns at most one wallet.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Argon2id encoded hash, never exposed
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

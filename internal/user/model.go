package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an account created on first successful authentication.
// It is looked up by FirebaseUID and never mutated afterwards.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	FirebaseUID string    `json:"firebase_uid"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Roles
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

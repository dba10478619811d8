package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleCajero = "cajero"
)

// Estados de usuario.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User operador del punto de venta.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si el rol es conocido.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCajero
}

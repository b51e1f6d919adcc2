package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User representa un cliente o administrador de la tienda.
// Nunca se borra desde la API; el rol solo cambia desde el endpoint de administración.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // user, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin atajo para las comprobaciones de propiedad (dueño o admin).
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User representa un actor autenticado del sistema (pertenece a una tienda).
// El kardex solo consume su ID como identidad del actor; aquí vive lo mínimo
// para emitir el JWT que la transporta.
type User struct {
	ID           string
	StoreID      string
	Email        string
	PasswordHash string // bcrypt, nunca plano después de persistir
	Name         string
	Role         string // admin, bodeguero, vendedor
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package entity

import "time"

// Roles de usuario del sistema.
const (
	RoleAdmin      = "admin"
	RoleFacturador = "facturador"
	RoleRecepcion  = "recepcion"
)

// User representa un usuario del backoffice de la clínica.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // ver constantes Role*
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

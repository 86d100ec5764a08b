package entity

import "time"

// Customer representa al adquirente del comprobante: la empresa empleadora
// que contrata los exámenes ocupacionales, o el paciente particular.
type Customer struct {
	ID           string
	Name         string
	IdentityType string // catálogo 06: "1" DNI, "6" RUC, "0" sin documento
	IdentityNum  string // número de DNI o RUC
	Email        string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

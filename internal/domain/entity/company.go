package entity

import "time"

// Company representa al emisor de los comprobantes (la clínica).
type Company struct {
	ID        string
	RUC       string // RUC del emisor, 11 dígitos
	LegalName string // Razón social registrada en SUNAT
	TradeName string // Nombre comercial
	Address   string
	Ubigeo    string // código de ubicación geográfica INEI (6 dígitos)
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

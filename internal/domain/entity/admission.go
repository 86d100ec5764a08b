package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una admisión.
const (
	AdmissionOpen   = "OPEN"   // atendiéndose, aún sin facturar
	AdmissionBilled = "BILLED" // ya existe comprobante emitido
	AdmissionClosed = "CLOSED"
)

// Admission representa la orden de atención de un paciente: el servicio
// (examen pre-ocupacional, periódico, de retiro) que luego se factura.
type Admission struct {
	ID          string
	PatientName string
	PatientDNI  string
	CustomerID  string // empresa empleadora que paga, si aplica
	ExamType    string // preocupacional, periodico, retiro
	Description string // descripción del servicio para la línea del comprobante
	Amount      decimal.Decimal
	Status      string
	AdmittedAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida del comprobante electrónico.
//
//	DRAFT → SUBMITTED → {ACCEPTED | REJECTED}
//	SUBMITTED → PENDING_RETRY → SUBMITTED   (solo ante fallo transitorio)
//
// ACCEPTED y REJECTED son terminales: un segundo envío no llama a SUNAT
// ni cambia el estado. Los comprobantes nunca se eliminan.
const (
	StatusDraft        = "DRAFT"         // Guardado con correlativo reservado, sin enviar
	StatusSubmitted    = "SUBMITTED"     // Enviado a SUNAT, respuesta en curso
	StatusAccepted     = "ACCEPTED"      // Aceptado por SUNAT (CDR con código 0)
	StatusRejected     = "REJECTED"      // Rechazado por SUNAT (código 2000-3999)
	StatusPendingRetry = "PENDING_RETRY" // Fallo transitorio o proveedor offline; reintentable
)

// IsTerminal indica si un estado ya no admite transiciones.
func IsTerminal(status string) bool {
	return status == StatusAccepted || status == StatusRejected
}

// Invoice representa un comprobante de pago electrónico (factura o boleta).
type Invoice struct {
	ID            string
	DocumentType  string // "01" factura, "03" boleta (catálogo 01 SUNAT)
	Series        string // F001, B001, ...
	Correlative   int64  // correlativo sin huecos dentro de (DocumentType, Series)
	CustomerID    string
	AdmissionID   string // admisión/orden de atención que se factura
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal // IGV = round(Subtotal * 0.18, 2)
	Total         decimal.Decimal // Subtotal + Tax
	PaymentMethod string          // efectivo, tarjeta, transferencia
	Status        string
	IssuedAt      time.Time
	FiscalXML     string // XML UBL firmado; se construye una sola vez y se reutiliza en reintentos
	Receipt       []byte // CDR (constancia de recepción) devuelto por SUNAT al aceptar
	AuthorityMsg  string // mensaje de aceptación/rechazo del proveedor
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullNumber identificador serie-correlativo del comprobante (ej: "F001-123").
func (i *Invoice) FullNumber() string {
	return fmt.Sprintf("%s-%d", i.Series, i.Correlative)
}

// SequenceCounter una fila por (tipo de comprobante, serie) con el último
// correlativo emitido. Mutado únicamente por el incremento atómico del
// allocator; se crea de forma perezosa en la primera asignación de la serie.
type SequenceCounter struct {
	DocumentType string
	Series       string
	LastIssued   int64
	UpdatedAt    time.Time
}

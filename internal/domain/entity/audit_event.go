package entity

import "time"

// Tipos de evento de auditoría del ciclo de vida del comprobante.
const (
	AuditInvoiceCreated          = "invoice.created"
	AuditInvoiceSubmitted        = "invoice.submitted"
	AuditInvoiceAccepted         = "invoice.accepted"
	AuditInvoiceRejected         = "invoice.rejected"
	AuditInvoiceSubmissionFailed = "invoice.submission_failed"
)

// AuditEvent un evento por transición de estado del comprobante.
// Escribir el evento nunca debe hacer fallar la operación subyacente.
type AuditEvent struct {
	ID           string
	EventType    string
	InvoiceID    string
	DocumentType string
	Series       string
	Correlative  int64
	Detail       string // mensaje adicional (ej: motivo de rechazo)
	OccurredAt   time.Time
}

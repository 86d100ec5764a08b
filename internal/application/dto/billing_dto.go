package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest body para POST /api/invoices.
// Subtotal es opcional cuando se referencia una admisión: en ese caso el monto
// sale de la orden de atención.
type CreateInvoiceRequest struct {
	DocumentType  string          `json:"document_type"` // "01" factura | "03" boleta
	Series        string          `json:"series"`        // F001, B001, ...
	CustomerID    string          `json:"customer_id,omitempty"`
	AdmissionID   string          `json:"admission_id,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	PaymentMethod string          `json:"payment_method,omitempty"` // efectivo, tarjeta, transferencia
	Description   string          `json:"description,omitempty"`    // línea del comprobante
}

// InvoiceResponse comprobante en respuestas.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	DocumentType  string          `json:"document_type"`
	Series        string          `json:"series"`
	Correlative   int64           `json:"correlative"`
	FullNumber    string          `json:"full_number"` // "F001-123"
	CustomerID    string          `json:"customer_id,omitempty"`
	AdmissionID   string          `json:"admission_id,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Status        string          `json:"status"` // DRAFT|SUBMITTED|ACCEPTED|REJECTED|PENDING_RETRY
	IssuedAt      string          `json:"issued_at"`
	AuthorityMsg  string          `json:"authority_msg,omitempty"` // mensaje de SUNAT/OSE
	HasReceipt    bool            `json:"has_receipt"`             // true si ya hay CDR almacenado
}

// AuditEventResponse evento del historial de un comprobante.
type AuditEventResponse struct {
	EventType  string `json:"event_type"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name         string `json:"name"`
	IdentityType string `json:"identity_type"` // "1" DNI | "6" RUC
	IdentityNum  string `json:"identity_num"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IdentityType string `json:"identity_type"`
	IdentityNum  string `json:"identity_num"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// CreateAdmissionRequest body para POST /api/admissions.
type CreateAdmissionRequest struct {
	PatientName string          `json:"patient_name"`
	PatientDNI  string          `json:"patient_dni"`
	CustomerID  string          `json:"customer_id,omitempty"` // empleadora que paga, si aplica
	ExamType    string          `json:"exam_type"`             // preocupacional, periodico, retiro
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// AdmissionResponse admisión en respuestas.
type AdmissionResponse struct {
	ID          string          `json:"id"`
	PatientName string          `json:"patient_name"`
	PatientDNI  string          `json:"patient_dni"`
	CustomerID  string          `json:"customer_id,omitempty"`
	ExamType    string          `json:"exam_type"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"` // OPEN|BILLED|CLOSED
	AdmittedAt  string          `json:"admitted_at"`
}

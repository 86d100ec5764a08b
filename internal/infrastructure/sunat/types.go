// Package sunat implementa la integración con SUNAT (Perú) para comprobantes
// de pago electrónicos: construcción del XML UBL 2.1, empaquetado ZIP, envío
// al servicio billService (o a un OSE) y clasificación de la respuesta (CDR).
package sunat

import (
	"context"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// ── Entornos y endpoints ──────────────────────────────────────────────────────

const (
	// EnvBeta entorno de pruebas/homologación SUNAT.
	EnvBeta = "beta"
	// EnvProd entorno de producción SUNAT.
	EnvProd = "prod"

	billServiceURLBeta = "https://e-beta.sunat.gob.pe/ol-ti-itcpfegem-beta/billService"
	billServiceURLProd = "https://e-factura.sunat.gob.pe/ol-ti-itcpfegem/billService"
)

// ── Resultado de envío ────────────────────────────────────────────────────────

// SubmitStatus clasificación normalizada de la respuesta del proveedor.
type SubmitStatus string

const (
	// SubmitAccepted SUNAT aceptó el comprobante (CDR con ResponseCode 0).
	SubmitAccepted SubmitStatus = "ACCEPTED"
	// SubmitRejected rechazo definitivo (ResponseCode 2000-3999). Terminal, no se reintenta.
	SubmitRejected SubmitStatus = "REJECTED"
	// SubmitError fallo transitorio: red, timeout, 5xx, SOAP Fault recuperable.
	// El orquestador decide el reintento; aquí solo se clasifica.
	SubmitError SubmitStatus = "ERROR"
	// SubmitPending sin proveedor configurado (modo offline/sandbox) o respuesta
	// diferida; el comprobante queda reintentable.
	SubmitPending SubmitStatus = "PENDING"
)

// SubmitResult resultado normalizado de la entrega al proveedor.
type SubmitResult struct {
	Status  SubmitStatus
	Receipt []byte // CDR devuelto por SUNAT (solo en ACCEPTED, a veces en REJECTED)
	Code    string // código de respuesta del proveedor (ej: "0", "2324")
	Message string // descripción legible para mostrar al usuario
}

// Document comprobante listo para enviar: XML firmado más los datos de
// identificación que exige el nombre de archivo SUNAT.
type Document struct {
	RUC          string // RUC del emisor
	DocumentType string // "01" | "03"
	Series       string
	Correlative  int64
	SignedXML    []byte
}

// Submitter define el puerto de salida hacia el proveedor de recepción
// (SUNAT directo, un OSE, o el modo offline). La implementación se elige por
// configuración explícita, nunca inspeccionando URLs.
//
// Submit valida sus credenciales antes de enviar (domain.ErrMisconfiguredProvider
// si faltan) y nunca convierte un fallo de red en pánico ni lo silencia: los
// fallos transitorios se devuelven como SubmitResult{Status: SubmitError}.
type Submitter interface {
	Submit(ctx context.Context, doc *Document) (*SubmitResult, error)
}

// ── Contexto de construcción del XML ─────────────────────────────────────────

// InvoiceBuildContext datos necesarios para construir el XML UBL del comprobante.
type InvoiceBuildContext struct {
	Invoice  *entity.Invoice
	Issuer   *entity.Company  // emisor (AccountingSupplierParty)
	Customer *entity.Customer // adquirente; nil = cliente varios (solo boletas)

	// ServiceDescription descripción de la única línea del comprobante
	// (ej: "Examen médico ocupacional preocupacional").
	ServiceDescription string
}

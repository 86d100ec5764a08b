package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrInvalidInvoiceState datos del comprobante inválidos (montos no positivos,
	// correlativo sin asignar, emisor sin RUC). No se reintenta nunca.
	ErrInvalidInvoiceState = errors.New("estado de comprobante inválido")

	// ErrAllocationConflict se perdió la carrera por el siguiente correlativo y se
	// agotaron los reintentos acotados. El caller debe reintentar la creación completa.
	ErrAllocationConflict = errors.New("conflicto asignando correlativo")

	// ErrMisconfiguredProvider credenciales o endpoint del proveedor ausentes o
	// malformados. Error de configuración, distinto de un fallo transitorio de red.
	ErrMisconfiguredProvider = errors.New("proveedor de envío mal configurado")
)

// SubmissionError fallo transitorio (red, timeout, 5xx) hablando con SUNAT u OSE.
// El comprobante pasa a PENDING_RETRY; un proceso externo puede reintentar el envío.
type SubmissionError struct {
	Provider string // "sunat" | "ose"
	Op       string // operación que falló (ej: "sendBill")
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("envío a %s falló en %s: %v", e.Provider, e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// IsSubmissionError indica si err es (o envuelve) un fallo transitorio de envío.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

package repository

import (
	"context"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// AuditRepository define el puerto del registro de auditoría.
// Append no debe hacer fallar la operación que origina el evento: el caller
// registra el error y continúa.
type AuditRepository interface {
	Append(ctx context.Context, event *entity.AuditEvent) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.AuditEvent, error)
}

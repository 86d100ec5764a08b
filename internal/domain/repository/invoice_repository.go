package repository

import (
	"context"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para comprobantes.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update actualiza los campos mutables del comprobante:
	// status, fiscal_xml, receipt, authority_msg, updated_at.
	Update(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListBySeries(ctx context.Context, documentType, series string, limit, offset int) ([]*entity.Invoice, error)
	// ListPendingRetry comprobantes en PENDING_RETRY, para el reintento programado externo.
	ListPendingRetry(ctx context.Context, limit int) ([]*entity.Invoice, error)
}

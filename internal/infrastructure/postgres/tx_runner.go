package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción con los repos que participan en la emisión
// de un comprobante y hace Commit o Rollback. La asignación del correlativo y
// la inserción del comprobante quedan dentro de la misma tx: si el INSERT
// falla, el correlativo reservado se revierte y la serie no queda con huecos.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	seq repository.SequenceAllocator,
	invoiceRepo repository.InvoiceRepository,
	admissionRepo repository.AdmissionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	seq := NewSequenceRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)
	admissionRepo := NewAdmissionRepository(tx)

	if err := fn(seq, invoiceRepo, admissionRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

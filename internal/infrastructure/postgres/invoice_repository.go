package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, document_type, series, correlative, customer_id, admission_id,
	subtotal, tax, total, payment_method, status, issued_at,
	fiscal_xml, receipt, authority_msg, created_at, updated_at`

// Create persiste el comprobante. El constraint único sobre
// (document_type, series, correlative) es el respaldo del allocator: una
// colisión aquí significa que alguien escribió correlativos por fuera de él.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO invoices (id, document_type, series, correlative, customer_id, admission_id,
			subtotal, tax, total, payment_method, status, issued_at,
			fiscal_xml, receipt, authority_msg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, q,
		inv.ID, inv.DocumentType, inv.Series, inv.Correlative,
		nullIfEmpty(inv.CustomerID), nullIfEmpty(inv.AdmissionID),
		inv.Subtotal, inv.Tax, inv.Total, inv.PaymentMethod, inv.Status, inv.IssuedAt,
		nullIfEmpty(inv.FiscalXML), inv.Receipt, nullIfEmpty(inv.AuthorityMsg),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("correlativo %s ya existe: %w", inv.FullNumber(), domain.ErrAllocationConflict)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update actualiza los campos mutables del comprobante.
// El correlativo y los montos nunca cambian después de la creación.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		UPDATE invoices
		SET status        = $2,
		    fiscal_xml    = COALESCE($3, fiscal_xml),
		    receipt       = COALESCE($4, receipt),
		    authority_msg = COALESCE($5, authority_msg),
		    updated_at    = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q,
		inv.ID, inv.Status,
		nullIfEmpty(inv.FiscalXML), inv.Receipt, nullIfEmpty(inv.AuthorityMsg),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// GetByID obtiene un comprobante completo por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	q := `SELECT` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListBySeries lista comprobantes de una serie en orden de correlativo.
func (r *InvoiceRepo) ListBySeries(ctx context.Context, documentType, series string, limit, offset int) ([]*entity.Invoice, error) {
	q := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE document_type = $1 AND series = $2
		ORDER BY correlative
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, q, documentType, series, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ListPendingRetry comprobantes reintentables, más antiguos primero.
func (r *InvoiceRepo) ListPendingRetry(ctx context.Context, limit int) ([]*entity.Invoice, error) {
	q := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE status = $1
		ORDER BY updated_at
		LIMIT $2`
	rows, err := r.q.Query(ctx, q, entity.StatusPendingRetry, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar scanInvoice.
type pgxScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var customerID, admissionID, fiscalXML, authorityMsg *string
	err := row.Scan(
		&inv.ID, &inv.DocumentType, &inv.Series, &inv.Correlative,
		&customerID, &admissionID,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.PaymentMethod, &inv.Status, &inv.IssuedAt,
		&fiscalXML, &inv.Receipt, &authorityMsg,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = derefStr(customerID)
	inv.AdmissionID = derefStr(admissionID)
	inv.FiscalXML = derefStr(fiscalXML)
	inv.AuthorityMsg = derefStr(authorityMsg)
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementa AuditRepository sobre PostgreSQL.
// La tabla audit_events es solo-inserción: no hay Update ni Delete.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Append(ctx context.Context, event *entity.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO audit_events (id, event_type, invoice_id, document_type, series, correlative, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, q,
		event.ID, event.EventType, event.InvoiceID,
		event.DocumentType, event.Series, event.Correlative,
		nullIfEmpty(event.Detail), event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.AuditEvent, error) {
	const q = `
		SELECT id, event_type, invoice_id, document_type, series, correlative, COALESCE(detail, ''), occurred_at
		FROM audit_events
		WHERE invoice_id = $1
		ORDER BY occurred_at`
	rows, err := r.q.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEvent
	for rows.Next() {
		var e entity.AuditEvent
		err := rows.Scan(&e.ID, &e.EventType, &e.InvoiceID, &e.DocumentType, &e.Series, &e.Correlative, &e.Detail, &e.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

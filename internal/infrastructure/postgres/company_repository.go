package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementa CompanyRepository sobre PostgreSQL.
// El sistema es mono-emisor: la tabla companies contiene una sola fila activa.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// GetIssuer devuelve el emisor configurado. nil, nil si aún no se registró.
func (r *CompanyRepo) GetIssuer(ctx context.Context) (*entity.Company, error) {
	const q = `
		SELECT id, ruc, legal_name, COALESCE(trade_name, ''), COALESCE(address, ''),
		       COALESCE(ubigeo, ''), COALESCE(phone, ''), COALESCE(email, ''),
		       created_at, updated_at
		FROM companies ORDER BY created_at LIMIT 1`
	var c entity.Company
	err := r.q.QueryRow(ctx, q).Scan(
		&c.ID, &c.RUC, &c.LegalName, &c.TradeName, &c.Address,
		&c.Ubigeo, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issuer: %w", err)
	}
	return &c, nil
}

// Upsert crea o actualiza los datos del emisor (clave natural: RUC).
func (r *CompanyRepo) Upsert(ctx context.Context, c *entity.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO companies (id, ruc, legal_name, trade_name, address, ubigeo, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (ruc)
		DO UPDATE SET legal_name = $3, trade_name = $4, address = $5, ubigeo = $6,
		              phone = $7, email = $8, updated_at = now()`
	_, err := r.q.Exec(ctx, q, c.ID, c.RUC, c.LegalName,
		nullIfEmpty(c.TradeName), nullIfEmpty(c.Address), nullIfEmpty(c.Ubigeo),
		nullIfEmpty(c.Phone), nullIfEmpty(c.Email))
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}

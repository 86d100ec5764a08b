package repository

import (
	"context"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia del emisor (la clínica).
// El sistema es mono-emisor: GetIssuer devuelve la única fila configurada.
type CompanyRepository interface {
	GetIssuer(ctx context.Context) (*entity.Company, error)
	Upsert(ctx context.Context, company *entity.Company) error
}

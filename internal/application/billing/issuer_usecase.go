package billing

import (
	"context"
	"fmt"

	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// IssuerUseCase registro y consulta del emisor (la clínica). El sistema es
// mono-emisor: hay una sola empresa que firma y emite comprobantes.
type IssuerUseCase struct {
	companyRepo repository.CompanyRepository
}

// NewIssuerUseCase construye el caso de uso.
func NewIssuerUseCase(companyRepo repository.CompanyRepository) *IssuerUseCase {
	return &IssuerUseCase{companyRepo: companyRepo}
}

// Get devuelve el emisor registrado.
func (uc *IssuerUseCase) Get(ctx context.Context) (*entity.Company, error) {
	issuer, err := uc.companyRepo.GetIssuer(ctx)
	if err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, fmt.Errorf("emisor no registrado: %w", domain.ErrNotFound)
	}
	return issuer, nil
}

// Save valida el RUC y crea o actualiza los datos del emisor.
func (uc *IssuerUseCase) Save(ctx context.Context, c *entity.Company) (*entity.Company, error) {
	if c.LegalName == "" {
		return nil, fmt.Errorf("razón social requerida: %w", domain.ErrInvalidInput)
	}
	if err := pkgsunat.ValidateRUC(c.RUC); err != nil {
		return nil, fmt.Errorf("RUC %q: %v: %w", c.RUC, err, domain.ErrInvalidInput)
	}
	if err := uc.companyRepo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

package billing

import (
	"context"
	"fmt"

	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// CustomerUseCase alta y consulta de adquirentes (empresas empleadoras y
// pacientes particulares).
type CustomerUseCase struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(customerRepo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{customerRepo: customerRepo}
}

// Create valida el documento de identidad según su tipo y persiste el cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("nombre requerido: %w", domain.ErrInvalidInput)
	}
	switch in.IdentityType {
	case pkgsunat.IdentityTypeRUC:
		if err := pkgsunat.ValidateRUC(in.IdentityNum); err != nil {
			return nil, fmt.Errorf("RUC %q: %v: %w", in.IdentityNum, err, domain.ErrInvalidInput)
		}
	case pkgsunat.IdentityTypeDNI:
		if err := pkgsunat.ValidateDNI(in.IdentityNum); err != nil {
			return nil, fmt.Errorf("DNI %q: %v: %w", in.IdentityNum, err, domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("tipo de documento %q no soportado: %w", in.IdentityType, domain.ErrInvalidInput)
	}

	if existing, _ := uc.customerRepo.GetByIdentity(ctx, in.IdentityType, in.IdentityNum); existing != nil {
		return toCustomerResponse(existing), nil
	}

	c := &entity.Customer{
		Name:         in.Name,
		IdentityType: in.IdentityType,
		IdentityNum:  in.IdentityNum,
		Email:        in.Email,
		Phone:        in.Phone,
	}
	if err := uc.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Get obtiene un cliente por ID.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cliente %s: %w", id, domain.ErrNotFound)
	}
	return toCustomerResponse(c), nil
}

// List lista clientes paginados.
func (uc *CustomerUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.customerRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:           c.ID,
		Name:         c.Name,
		IdentityType: c.IdentityType,
		IdentityNum:  c.IdentityNum,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}

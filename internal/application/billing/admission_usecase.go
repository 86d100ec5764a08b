package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// AdmissionUseCase gestión de órdenes de atención: el servicio médico que la
// recepción registra y que luego se factura.
type AdmissionUseCase struct {
	admissionRepo repository.AdmissionRepository
	customerRepo  repository.CustomerRepository
}

// NewAdmissionUseCase construye el caso de uso.
func NewAdmissionUseCase(admissionRepo repository.AdmissionRepository, customerRepo repository.CustomerRepository) *AdmissionUseCase {
	return &AdmissionUseCase{admissionRepo: admissionRepo, customerRepo: customerRepo}
}

// Create registra una admisión en estado OPEN.
func (uc *AdmissionUseCase) Create(ctx context.Context, in dto.CreateAdmissionRequest) (*dto.AdmissionResponse, error) {
	if in.PatientName == "" || in.ExamType == "" {
		return nil, fmt.Errorf("paciente y tipo de examen requeridos: %w", domain.ErrInvalidInput)
	}
	if in.PatientDNI != "" {
		if err := pkgsunat.ValidateDNI(in.PatientDNI); err != nil {
			return nil, fmt.Errorf("DNI %q: %v: %w", in.PatientDNI, err, domain.ErrInvalidInput)
		}
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("monto %s no positivo: %w", in.Amount, domain.ErrInvalidInput)
	}
	if in.CustomerID != "" {
		c, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("empleadora %s: %w", in.CustomerID, domain.ErrNotFound)
		}
	}

	a := &entity.Admission{
		PatientName: in.PatientName,
		PatientDNI:  in.PatientDNI,
		CustomerID:  in.CustomerID,
		ExamType:    in.ExamType,
		Description: in.Description,
		Amount:      in.Amount,
		Status:      entity.AdmissionOpen,
		AdmittedAt:  time.Now(),
	}
	if err := uc.admissionRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return toAdmissionResponse(a), nil
}

// Get obtiene una admisión por ID.
func (uc *AdmissionUseCase) Get(ctx context.Context, id string) (*dto.AdmissionResponse, error) {
	a, err := uc.admissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("admisión %s: %w", id, domain.ErrNotFound)
	}
	return toAdmissionResponse(a), nil
}

// List lista admisiones, opcionalmente filtradas por estado.
func (uc *AdmissionUseCase) List(ctx context.Context, status string, page dto.PageRequest) ([]*dto.AdmissionResponse, error) {
	page.DefaultPage()
	list, err := uc.admissionRepo.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AdmissionResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAdmissionResponse(a))
	}
	return out, nil
}

func toAdmissionResponse(a *entity.Admission) *dto.AdmissionResponse {
	return &dto.AdmissionResponse{
		ID:          a.ID,
		PatientName: a.PatientName,
		PatientDNI:  a.PatientDNI,
		CustomerID:  a.CustomerID,
		ExamType:    a.ExamType,
		Description: a.Description,
		Amount:      a.Amount,
		Status:      a.Status,
		AdmittedAt:  a.AdmittedAt.Format(time.RFC3339),
	}
}

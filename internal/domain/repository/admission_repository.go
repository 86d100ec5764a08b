package repository

import (
	"context"

	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// AdmissionRepository define el puerto de persistencia para admisiones.
type AdmissionRepository interface {
	Create(ctx context.Context, admission *entity.Admission) error
	GetByID(ctx context.Context, id string) (*entity.Admission, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Admission, error)
	Update(ctx context.Context, admission *entity.Admission) error
}

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

var _ repository.AdmissionRepository = (*AdmissionRepo)(nil)

// AdmissionRepo implementa AdmissionRepository sobre PostgreSQL.
type AdmissionRepo struct {
	q Querier
}

// NewAdmissionRepository construye el adaptador.
func NewAdmissionRepository(q Querier) *AdmissionRepo {
	return &AdmissionRepo{q: q}
}

const admissionColumns = `
	id, patient_name, patient_dni, customer_id, exam_type, description,
	amount, status, admitted_at, created_at, updated_at`

func (r *AdmissionRepo) Create(ctx context.Context, a *entity.Admission) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO admissions (id, patient_name, patient_dni, customer_id, exam_type, description,
			amount, status, admitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`
	_, err := r.q.Exec(ctx, q, a.ID, a.PatientName, a.PatientDNI,
		nullIfEmpty(a.CustomerID), a.ExamType, a.Description, a.Amount, a.Status, a.AdmittedAt)
	if err != nil {
		return fmt.Errorf("insert admission: %w", err)
	}
	return nil
}

func (r *AdmissionRepo) GetByID(ctx context.Context, id string) (*entity.Admission, error) {
	q := `SELECT` + admissionColumns + ` FROM admissions WHERE id = $1`
	a, err := scanAdmission(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admission: %w", err)
	}
	return a, nil
}

func (r *AdmissionRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Admission, error) {
	q := `SELECT` + admissionColumns + `
		FROM admissions
		WHERE ($1 = '' OR status = $1)
		ORDER BY admitted_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list admissions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admission: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *AdmissionRepo) Update(ctx context.Context, a *entity.Admission) error {
	const q = `
		UPDATE admissions
		SET patient_name = $2, patient_dni = $3, customer_id = $4, exam_type = $5,
		    description = $6, amount = $7, status = $8, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q, a.ID, a.PatientName, a.PatientDNI,
		nullIfEmpty(a.CustomerID), a.ExamType, a.Description, a.Amount, a.Status)
	if err != nil {
		return fmt.Errorf("update admission: %w", err)
	}
	return nil
}

func scanAdmission(row pgxScanner) (*entity.Admission, error) {
	var a entity.Admission
	var customerID *string
	err := row.Scan(
		&a.ID, &a.PatientName, &a.PatientDNI, &customerID, &a.ExamType, &a.Description,
		&a.Amount, &a.Status, &a.AdmittedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.CustomerID = derefStr(customerID)
	return &a, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
)

var _ repository.SequenceAllocator = (*SequenceRepo)(nil)

// SequenceRepo implementa SequenceAllocator sobre PostgreSQL.
//
// La asignación es un único statement atómico: el upsert crea el contador en 1
// en la primera asignación de una serie, o lo incrementa en uno, y devuelve el
// valor reservado en la misma operación. Dos callers concurrentes serializan
// sobre el row lock de la fila del contador, por lo que nunca reciben el mismo
// correlativo ni dejan huecos. Nadie más escribe last_issued.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// maxAllocationAttempts reintentos acotados ante fallos de serialización.
// Agotados los intentos se devuelve domain.ErrAllocationConflict y el caller
// decide si reintenta la creación completa del comprobante.
const maxAllocationAttempts = 3

// AllocateNext reserva el siguiente correlativo para (tipo, serie).
func (r *SequenceRepo) AllocateNext(ctx context.Context, documentType, series string) (int64, error) {
	const q = `
		INSERT INTO sequence_counters (document_type, series, last_issued, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (document_type, series)
		DO UPDATE SET last_issued = sequence_counters.last_issued + 1, updated_at = now()
		RETURNING last_issued`

	var lastErr error
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		var n int64
		err := r.q.QueryRow(ctx, q, documentType, series).Scan(&n)
		if err == nil {
			return n, nil
		}
		if !isSerializationFailure(err) {
			return 0, fmt.Errorf("allocate correlativo %s-%s: %w", documentType, series, err)
		}
		lastErr = err
	}
	return 0, fmt.Errorf("allocate correlativo %s-%s tras %d intentos: %v: %w",
		documentType, series, maxAllocationAttempts, lastErr, domain.ErrAllocationConflict)
}

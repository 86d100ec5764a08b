package repository

import "context"

// SequenceAllocator define el puerto de asignación de correlativos.
//
// AllocateNext entrega el siguiente correlativo para (tipo de comprobante, serie)
// sin huecos ni duplicados bajo concurrencia: dos llamadas concurrentes nunca
// reciben el mismo número y si se emite N, N-1 ya fue emitido (o N == 1).
// La implementación debe ser un read-modify-write atómico contra el almacén;
// ante contención agotada retorna domain.ErrAllocationConflict.
type SequenceAllocator interface {
	AllocateNext(ctx context.Context, documentType, series string) (int64, error)
}

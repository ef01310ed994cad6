package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// MutationQueue define el puerto de la cola durable de mutaciones (DIP).
// La implementación debe confirmar cada Enqueue/RemoveOne en disco antes de
// devolver: no hay ventana entre "aceptado" y "persistido". LoadAll devuelve
// los registros en orden de creación, con desempate por orden de inserción.
type MutationQueue interface {
	Enqueue(ctx context.Context, rec *entity.MutationRecord) error
	LoadAll(ctx context.Context) ([]*entity.MutationRecord, error)
	RemoveOne(ctx context.Context, id string) error
	MarkAttempt(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// NewRecord construye una mutación lista para encolar.
func NewRecord(kind entity.EntityKind, op entity.OperationKind, payload json.RawMessage) *entity.MutationRecord {
	return &entity.MutationRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		Op:        op,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

package sync

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// EntityClient aplica mutaciones de un kind concreto en el servicio central.
// El payload viaja tal como se encoló; el id de la entidad va dentro del
// payload y es responsabilidad del adaptador extraerlo para componer rutas.
// El servicio remoto debe ser idempotente: un registro puede reaplicarse si
// el retiro de la cola falla después de un envío exitoso.
type EntityClient interface {
	Insert(ctx context.Context, payload json.RawMessage) error
	Update(ctx context.Context, payload json.RawMessage) error
	Delete(ctx context.Context, payload json.RawMessage) error
}

// RemoteService resuelve el cliente de mutaciones por kind (DIP).
// Kinds sin ruta devuelven error: el conjunto es cerrado y el adaptador
// debe cubrirlo completo.
type RemoteService interface {
	Entity(kind entity.EntityKind) (EntityClient, error)
}

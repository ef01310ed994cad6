package inventory

import (
	"context"

	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// o se aplican todas las escrituras del callback o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materialRepo repository.MaterialRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		txnRepo repository.TransactionRepository,
	) error) error
}

// Enqueuer es la vista del dispatcher que usan los casos de uso: persistir
// una mutación en la cola durable para su replicación al servicio central.
type Enqueuer interface {
	Enqueue(ctx context.Context, rec *entity.MutationRecord) error
}

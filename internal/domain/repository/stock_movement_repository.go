package repository

import (
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de stock (DIP).
// El libro es append-only: solo alta y lectura, nunca update ni delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByEntity(tenantID, entityID string, limit, offset int) ([]*entity.StockMovement, error)
}

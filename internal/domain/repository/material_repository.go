package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y solo tiene sentido
// dentro de una transacción abierta por el TxRunner.
type MaterialRepository interface {
	Create(material *entity.Material) error
	GetByID(tenantID, id string) (*entity.Material, error)
	GetForUpdate(tenantID, id string) (*entity.Material, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Material, error)
	ListByIDs(tenantID string, ids []string) ([]*entity.Material, error)
	Update(material *entity.Material) error
	UpdateStock(tenantID, id string, stock decimal.Decimal) error
	Delete(tenantID, id string) error
}

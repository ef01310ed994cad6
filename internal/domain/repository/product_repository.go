package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y solo tiene sentido
// dentro de una transacción abierta por el TxRunner.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(tenantID, id string) (*entity.Product, error)
	GetForUpdate(tenantID, id string) (*entity.Product, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(tenantID, id string, stock decimal.Decimal) error
	Delete(tenantID, id string) error
}

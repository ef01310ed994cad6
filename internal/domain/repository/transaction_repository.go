package repository

import (
	"time"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para ventas (DIP).
type TransactionRepository interface {
	Create(txn *entity.Transaction) error
	GetByID(tenantID, id string) (*entity.Transaction, error)
	ListByDateRange(tenantID, branchID string, from, to *time.Time, limit, offset int) ([]*entity.Transaction, error)
}

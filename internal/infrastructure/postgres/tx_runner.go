package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ catalog.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los repos
// que recibe el callback están atados a la tx: todo lo que escriban se
// confirma o revierte junto.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit si fn devuelve nil o Rollback en cualquier otro caso.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	materialRepo := NewMaterialRepository(tx)
	productRepo := NewProductRepository(tx)
	movementRepo := NewStockMovementRepository(tx)
	txnRepo := NewTransactionRepository(tx)

	if err := fn(materialRepo, productRepo, movementRepo, txnRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

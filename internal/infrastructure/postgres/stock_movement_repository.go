package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository sobre
// PostgreSQL (usable con pool o tx). El libro es de solo inserción: no hay
// Update ni Delete.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro de stock.
// Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega una entrada al libro.
func (r *StockMovementRepo) Create(mv *entity.StockMovement) error {
	if mv.ID == "" {
		mv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, tenant_id, branch_id, entity_id, previous_stock, new_stock, delta, reason, note, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		mv.ID, mv.TenantID, mv.BranchID, mv.EntityID, mv.PreviousStock, mv.NewStock,
		mv.Delta, mv.Reason, mv.Note, mv.CreatedAt, mv.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByEntity lista el historial de un insumo, lo más reciente primero.
// limit <= 0 trae todo.
func (r *StockMovementRepo) ListByEntity(tenantID, entityID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, tenant_id, branch_id, entity_id, previous_stock, new_stock, delta, reason, note, created_at, created_by
		FROM stock_movements WHERE tenant_id = $1 AND entity_id = $2
		ORDER BY created_at DESC`
	args := []any{tenantID, entityID}
	if limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var mv entity.StockMovement
		if err := rows.Scan(&mv.ID, &mv.TenantID, &mv.BranchID, &mv.EntityID, &mv.PreviousStock, &mv.NewStock,
			&mv.Delta, &mv.Reason, &mv.Note, &mv.CreatedAt, &mv.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, &mv)
	}
	return out, rows.Err()
}

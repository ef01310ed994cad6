package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL
// (usable con pool o tx). Las líneas del ticket viajan como JSONB: una venta
// se escribe una vez y no se edita.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste la venta completa.
func (r *TransactionRepo) Create(txn *entity.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (id, tenant_id, branch_id, items, subtotal, discount, total, payment_method, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		txn.ID, txn.TenantID, txn.BranchID, txn.Items, txn.Subtotal, txn.Discount,
		txn.Total, txn.PaymentMethod, txn.CreatedAt, txn.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una venta del tenant; nil si no existe.
func (r *TransactionRepo) GetByID(tenantID, id string) (*entity.Transaction, error) {
	query := `
		SELECT id, tenant_id, branch_id, items, subtotal, discount, total, payment_method, created_at, created_by
		FROM transactions WHERE tenant_id = $1 AND id = $2`
	var txn entity.Transaction
	err := r.q.QueryRow(context.Background(), query, tenantID, id).Scan(
		&txn.ID, &txn.TenantID, &txn.BranchID, &txn.Items, &txn.Subtotal, &txn.Discount,
		&txn.Total, &txn.PaymentMethod, &txn.CreatedAt, &txn.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &txn, nil
}

// ListByDateRange lista ventas filtrando por sucursal y rango de fechas.
// branchID vacío trae todas las sucursales; from/to nil no acotan; limit <= 0
// trae todo. Las más recientes primero.
func (r *TransactionRepo) ListByDateRange(tenantID, branchID string, from, to *time.Time, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT id, tenant_id, branch_id, items, subtotal, discount, total, payment_method, created_at, created_by
		FROM transactions WHERE tenant_id = $1`
	args := []any{tenantID}
	if branchID != "" {
		args = append(args, branchID)
		query += fmt.Sprintf(" AND branch_id = $%d", len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Transaction
	for rows.Next() {
		var txn entity.Transaction
		if err := rows.Scan(&txn.ID, &txn.TenantID, &txn.BranchID, &txn.Items, &txn.Subtotal, &txn.Discount,
			&txn.Total, &txn.PaymentMethod, &txn.CreatedAt, &txn.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, &txn)
	}
	return out, rows.Err()
}

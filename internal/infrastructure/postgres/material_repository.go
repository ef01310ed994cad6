package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable
// con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de insumos. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un insumo nuevo.
func (r *MaterialRepo) Create(m *entity.Material) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO materials (id, tenant_id, name, stock, unit, min_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.TenantID, m.Name, m.Stock, m.Unit, m.MinStock, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un insumo del tenant; nil si no existe.
func (r *MaterialRepo) GetByID(tenantID, id string) (*entity.Material, error) {
	query := `
		SELECT id, tenant_id, name, stock, unit, min_stock, created_at, updated_at
		FROM materials WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(query, tenantID, id)
}

// GetForUpdate obtiene el insumo bloqueando la fila (SELECT FOR UPDATE).
// Es el punto de serialización de todos los descuentos de stock: dos cajas
// descontando el mismo insumo esperan aquí una a la otra.
func (r *MaterialRepo) GetForUpdate(tenantID, id string) (*entity.Material, error) {
	query := `
		SELECT id, tenant_id, name, stock, unit, min_stock, created_at, updated_at
		FROM materials WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`
	return r.scanOne(query, tenantID, id)
}

// ListByTenant lista los insumos del tenant. limit <= 0 trae todo.
func (r *MaterialRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Material, error) {
	query := `
		SELECT id, tenant_id, name, stock, unit, min_stock, created_at, updated_at
		FROM materials WHERE tenant_id = $1
		ORDER BY name ASC`
	args := []any{tenantID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// ListByIDs trae los insumos pedidos en una sola consulta (para el cálculo
// de capacidad). IDs ausentes simplemente no vienen.
func (r *MaterialRepo) ListByIDs(tenantID string, ids []string) ([]*entity.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, tenant_id, name, stock, unit, min_stock, created_at, updated_at
		FROM materials WHERE tenant_id = $1 AND id = ANY($2)`
	rows, err := r.q.Query(context.Background(), query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("list materials by ids: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// Update reescribe los campos editables del insumo (el stock va por UpdateStock).
func (r *MaterialRepo) Update(m *entity.Material) error {
	query := `
		UPDATE materials
		SET name = $3, unit = $4, min_stock = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		m.TenantID, m.ID, m.Name, m.Unit, m.MinStock, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock del insumo. Se usa bajo lock de fila.
func (r *MaterialRepo) UpdateStock(tenantID, id string, stock decimal.Decimal) error {
	query := `
		UPDATE materials SET stock = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query, tenantID, id, stock)
	if err != nil {
		return fmt.Errorf("update material stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el insumo del tenant.
func (r *MaterialRepo) Delete(tenantID, id string) error {
	query := `DELETE FROM materials WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaterialRepo) scanOne(query string, args ...any) (*entity.Material, error) {
	var m entity.Material
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&m.ID, &m.TenantID, &m.Name, &m.Stock, &m.Unit, &m.MinStock, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

func scanMaterials(rows pgx.Rows) ([]*entity.Material, error) {
	var out []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Stock, &m.Unit, &m.MinStock, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable
// con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto nuevo. SKU único por tenant.
func (r *ProductRepo) Create(p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO products (id, tenant_id, sku, name, price, stock, track_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.TenantID, p.SKU, p.Name, p.Price, p.Stock, p.TrackStock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto del tenant; nil si no existe.
func (r *ProductRepo) GetByID(tenantID, id string) (*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, price, stock, track_stock, created_at, updated_at
		FROM products WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(query, tenantID, id)
}

// GetForUpdate obtiene el producto bloqueando la fila (SELECT FOR UPDATE).
// Dos transacciones sobre el mismo producto se serializan aquí.
func (r *ProductRepo) GetForUpdate(tenantID, id string) (*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, price, stock, track_stock, created_at, updated_at
		FROM products WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`
	return r.scanOne(query, tenantID, id)
}

// ListByTenant lista el catálogo del tenant. limit <= 0 trae todo.
func (r *ProductRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, price, stock, track_stock, created_at, updated_at
		FROM products WHERE tenant_id = $1
		ORDER BY name ASC`
	args := []any{tenantID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.TrackStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Update reescribe los campos editables del producto.
func (r *ProductRepo) Update(p *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $3, name = $4, price = $5, track_stock = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		p.TenantID, p.ID, p.SKU, p.Name, p.Price, p.TrackStock, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock del producto. Se usa bajo lock de fila.
func (r *ProductRepo) UpdateStock(tenantID, id string, stock decimal.Decimal) error {
	query := `
		UPDATE products SET stock = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query, tenantID, id, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el producto del tenant.
func (r *ProductRepo) Delete(tenantID, id string) error {
	query := `DELETE FROM products WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) scanOne(query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.TrackStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

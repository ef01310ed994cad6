package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de RecipeRepository sobre PostgreSQL (usable con
// pool o tx). Los ingredientes viajan como JSONB: la receta se lee y escribe
// siempre completa.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador de recetas. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// Create persiste una receta. Una por producto y tenant; los ingredientes
// van como documento, así que la unicidad por insumo se valida acá y no con
// un constraint de fila.
func (r *RecipeRepo) Create(rec *entity.Recipe) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO recipes (id, tenant_id, product_id, ingredients, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.TenantID, rec.ProductID, rec.Ingredients, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// GetByProductID obtiene la receta de un producto; nil si el producto no
// tiene receta (eso no es un error: significa capacidad ilimitada).
func (r *RecipeRepo) GetByProductID(tenantID, productID string) (*entity.Recipe, error) {
	query := `
		SELECT id, tenant_id, product_id, ingredients, created_at, updated_at
		FROM recipes WHERE tenant_id = $1 AND product_id = $2`
	var rec entity.Recipe
	err := r.q.QueryRow(context.Background(), query, tenantID, productID).Scan(
		&rec.ID, &rec.TenantID, &rec.ProductID, &rec.Ingredients, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &rec, nil
}

// ListByTenant lista todas las recetas del tenant.
func (r *RecipeRepo) ListByTenant(tenantID string) ([]*entity.Recipe, error) {
	query := `
		SELECT id, tenant_id, product_id, ingredients, created_at, updated_at
		FROM recipes WHERE tenant_id = $1
		ORDER BY product_id ASC`
	rows, err := r.q.Query(context.Background(), query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Recipe
	for rows.Next() {
		var rec entity.Recipe
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.ProductID, &rec.Ingredients, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

package dto

import (
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// RecipeResponse salida de una receta con sus ingredientes.
type RecipeResponse struct {
	ID          string                    `json:"id"`
	TenantID    string                    `json:"tenant_id"`
	ProductID   string                    `json:"product_id"`
	Ingredients []entity.RecipeIngredient `json:"ingredients"`
}

// RecipeResponseFrom convierte la entidad al DTO de salida.
func RecipeResponseFrom(r *entity.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		TenantID:    r.TenantID,
		ProductID:   r.ProductID,
		Ingredients: r.Ingredients,
	}
}

// RecipesResponseFrom convierte un listado completo.
func RecipesResponseFrom(list []*entity.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, RecipeResponseFrom(r))
	}
	return out
}

// CapacityResponse salida de GET /api/products/:id/capacity.
// Servings -1 significa capacidad no acotada por insumos (sin receta).
type CapacityResponse struct {
	ProductID      string            `json:"product_id"`
	Servings       int               `json:"servings"`
	UnitMismatches []UnitMismatchDTO `json:"unit_mismatches,omitempty"`
}

// UnitMismatchDTO discrepancia de unidades reportada por el motor de capacidad.
type UnitMismatchDTO struct {
	MaterialID string `json:"material_id"`
	StockUnit  string `json:"stock_unit"`
	NeededUnit string `json:"needed_unit"`
}

package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RecipeIngredient es una línea de receta: cuánto insumo consume una porción.
// Unit es la unidad en la que la receta expresa la cantidad, que puede diferir
// de la unidad en la que el insumo guarda su stock.
type RecipeIngredient struct {
	MaterialID string          `json:"material_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// Recipe asocia un producto preparado con los insumos que consume por porción.
// Un MaterialID no puede repetirse dentro de la misma receta.
type Recipe struct {
	ID          string
	TenantID    string
	ProductID   string
	Ingredients []RecipeIngredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate verifica las líneas de la receta: todo ingrediente referencia un
// insumo y ningún insumo se repite. Una línea duplicada haría que el cálculo
// de capacidad cuente el mismo stock dos veces.
func (r *Recipe) Validate() error {
	seen := make(map[string]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.MaterialID == "" {
			return fmt.Errorf("receta de %s: ingrediente sin insumo", r.ProductID)
		}
		if _, dup := seen[ing.MaterialID]; dup {
			return fmt.Errorf("receta de %s: insumo %s duplicado", r.ProductID, ing.MaterialID)
		}
		seen[ing.MaterialID] = struct{}{}
	}
	return nil
}

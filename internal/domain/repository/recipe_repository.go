package repository

import (
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// RecipeRepository define el puerto de persistencia para Recipe (DIP).
// GetByProductID devuelve nil sin error cuando el producto no tiene receta.
type RecipeRepository interface {
	Create(recipe *entity.Recipe) error
	GetByProductID(tenantID, productID string) (*entity.Recipe, error)
	ListByTenant(tenantID string) ([]*entity.Recipe, error)
}

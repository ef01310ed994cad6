package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/recipe"
	"github.com/jhoicas/cajapos/internal/domain/repository"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// CapacityUseCase responde "¿cuántas porciones puedo vender?": lee receta e
// insumos sin bloquear filas y delega el cálculo en el motor puro. Las
// discrepancias de unidad que el motor devuelve como datos se registran aquí
// como warnings y se devuelven al caller.
type CapacityUseCase struct {
	productRepo  repository.ProductRepository
	recipeRepo   repository.RecipeRepository
	materialRepo repository.MaterialRepository
	log          *logger.Logger
}

// NewCapacityUseCase construye el caso de uso.
func NewCapacityUseCase(productRepo repository.ProductRepository, recipeRepo repository.RecipeRepository, materialRepo repository.MaterialRepository, log *logger.Logger) *CapacityUseCase {
	return &CapacityUseCase{
		productRepo:  productRepo,
		recipeRepo:   recipeRepo,
		materialRepo: materialRepo,
		log:          log.Component("capacity"),
	}
}

// MaxServingsForProduct calcula la capacidad de un producto. Un producto sin
// receta devuelve -1 (mismo sentinel que una receta vacía: los insumos no lo
// acotan). El cálculo es una instantánea sin bloqueo: sirve para mostrar en
// caja, la verdad final la dicta el checkout.
func (uc *CapacityUseCase) MaxServingsForProduct(ctx context.Context, tenantID, productID string) (int, []recipe.UnitMismatch, error) {
	if productID == "" {
		return 0, nil, domain.ErrInvalidInput
	}
	if uc.productRepo == nil {
		// La capacidad se calcula sobre el stock real; sin almacén local no hay stock real.
		return 0, nil, domain.ErrLocalStoreDisabled
	}

	p, err := uc.productRepo.GetByID(tenantID, productID)
	if err != nil {
		return 0, nil, err
	}
	if p == nil {
		return 0, nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}

	rec, err := uc.recipeRepo.GetByProductID(tenantID, productID)
	if err != nil {
		return 0, nil, err
	}
	if rec == nil {
		return -1, nil, nil
	}

	mats, err := uc.materialRepo.ListByIDs(tenantID, ingredientIDs(rec))
	if err != nil {
		return 0, nil, err
	}

	servings, mismatches := recipe.MaxServings(rec, mats)
	for _, mm := range mismatches {
		uc.log.Warn().
			Str("product", productID).
			Str("material", mm.MaterialID).
			Str("stock_unit", mm.StockUnit).
			Str("needed_unit", mm.NeededUnit).
			Msg("unidades no conciliables: porciones calculadas por división directa")
	}
	return servings, mismatches, nil
}

func ingredientIDs(rec *entity.Recipe) []string {
	ids := make([]string, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		ids = append(ids, ing.MaterialID)
	}
	return ids
}

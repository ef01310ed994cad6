package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// ReplenishmentSuggestion es una línea de la lista de reposición: un insumo
// bajo su umbral con la cantidad de pedido sugerida. Priority arranca en 1
// (el más urgente).
type ReplenishmentSuggestion struct {
	Material     *entity.Material
	Deficit      decimal.Decimal // lo que falta para volver al umbral
	SuggestedQty decimal.Decimal // pedido sugerido: 1.5x el umbral menos el stock actual
	Priority     int
}

// ReplenishmentUseCase genera la lista de reposición de la sucursal: los
// insumos bajo su umbral rankeados por déficit relativo. Lee el stock local;
// el catálogo central no conoce el saldo de esta caja.
type ReplenishmentUseCase struct {
	materialRepo repository.MaterialRepository
	log          *logger.Logger
}

// NewReplenishmentUseCase construye el caso de uso.
func NewReplenishmentUseCase(materialRepo repository.MaterialRepository, log *logger.Logger) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		materialRepo: materialRepo,
		log:          log.Component("replenishment"),
	}
}

// idealStockFactor lleva el pedido sugerido por encima del umbral para no
// volver a caer bajo mínimo con la primera venta.
var idealStockFactor = decimal.NewFromFloat(1.5)

// Suggestions devuelve los insumos que piden reposición, el más urgente
// primero. Un insumo sin umbral configurado (MinStock cero) nunca aparece.
func (uc *ReplenishmentUseCase) Suggestions(ctx context.Context, tenantID string) ([]ReplenishmentSuggestion, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID vacío", domain.ErrInvalidInput)
	}
	if uc.materialRepo == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	materials, err := uc.materialRepo.ListByTenant(tenantID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("replenishment: listar insumos: %w", err)
	}

	suggestions := make([]ReplenishmentSuggestion, 0)
	for _, m := range materials {
		if !m.BelowMinStock() {
			continue
		}
		suggestions = append(suggestions, ReplenishmentSuggestion{
			Material:     m,
			Deficit:      m.MinStock.Sub(m.Stock),
			SuggestedQty: m.MinStock.Mul(idealStockFactor).Sub(m.Stock),
		})
	}

	// Mayor déficit relativo primero; a igualdad, por nombre, para que la
	// lista sea estable entre llamadas.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := a.Deficit.Div(a.Material.MinStock)
		rb := b.Deficit.Div(b.Material.MinStock)
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return a.Material.Name < b.Material.Name
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}

	uc.log.Debug().Str("tenant", tenantID).Int("count", len(suggestions)).Msg("lista de reposición generada")
	return suggestions, nil
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// CreateMaterialRequest entrada para dar de alta un insumo.
// Stock es el saldo inicial y genera el movimiento "initial" en el libro.
type CreateMaterialRequest struct {
	Name     string          `json:"name"`
	Stock    decimal.Decimal `json:"stock"`
	Unit     string          `json:"unit"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// UpdateMaterialRequest entrada para actualizar un insumo (sin tocar stock).
type UpdateMaterialRequest struct {
	Name     *string          `json:"name"`
	Unit     *string          `json:"unit"`
	MinStock *decimal.Decimal `json:"min_stock"`
}

// AdjustStockRequest body para POST /api/materials/:id/adjust.
// Delta con signo: positivo repone, negativo descuenta.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"` // initial | purchase | adjustment | waste
	Note   string          `json:"note"`
}

// MaterialResponse salida de un insumo. Es también el payload que viaja en
// la cola de mutaciones hacia el servicio central.
type MaterialResponse struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	Name      string          `json:"name"`
	Stock     decimal.Decimal `json:"stock"`
	Unit      string          `json:"unit"`
	MinStock  decimal.Decimal `json:"min_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MaterialResponseFrom convierte la entidad al DTO de salida.
func MaterialResponseFrom(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Stock:     m.Stock,
		Unit:      m.Unit,
		MinStock:  m.MinStock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// MaterialsResponseFrom convierte un listado completo.
func MaterialsResponseFrom(list []*entity.Material) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MaterialResponseFrom(m))
	}
	return out
}

// ReplenishmentItemDTO es una línea de la lista de reposición: un insumo
// bajo su umbral con la cantidad de pedido sugerida.
type ReplenishmentItemDTO struct {
	MaterialID   string          `json:"material_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Deficit      decimal.Decimal `json:"deficit"`
	SuggestedQty decimal.Decimal `json:"suggested_qty"`
	Priority     int             `json:"priority"`
}

// StockMovementResponse es la entrada del libro en formato de salida y el
// payload de replicación de los movimientos.
type StockMovementResponse struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	BranchID      string          `json:"branch_id"`
	EntityID      string          `json:"entity_id"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Delta         decimal.Decimal `json:"delta"`
	Reason        string          `json:"reason"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// StockMovementResponseFrom convierte la entidad al DTO de salida.
func StockMovementResponseFrom(mv *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            mv.ID,
		TenantID:      mv.TenantID,
		BranchID:      mv.BranchID,
		EntityID:      mv.EntityID,
		PreviousStock: mv.PreviousStock,
		NewStock:      mv.NewStock,
		Delta:         mv.Delta,
		Reason:        string(mv.Reason),
		Note:          mv.Note,
		CreatedAt:     mv.CreatedAt,
		CreatedBy:     mv.CreatedBy,
	}
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementReason clasifica el origen de un movimiento de stock.
type MovementReason string

// Razones de movimiento del libro de stock.
const (
	ReasonInitial    MovementReason = "initial"    // alta de insumo
	ReasonPurchase   MovementReason = "purchase"   // reposición
	ReasonSale       MovementReason = "sale"       // consumo por venta
	ReasonAdjustment MovementReason = "adjustment" // conteo físico
	ReasonWaste      MovementReason = "waste"      // merma
)

// Valid indica si la razón pertenece al conjunto cerrado.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonInitial, ReasonPurchase, ReasonSale, ReasonAdjustment, ReasonWaste:
		return true
	}
	return false
}

// StockMovement es una entrada del libro de stock (append-only): registra el
// saldo anterior y el nuevo de un insumo o producto, nunca se edita ni borra.
type StockMovement struct {
	ID            string
	TenantID      string
	BranchID      string
	EntityID      string // MaterialID o ProductID afectado
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Delta         decimal.Decimal
	Reason        MovementReason
	Note          string
	CreatedAt     time.Time
	CreatedBy     string // UserID
}

// NewStockMovement construye una entrada del libro con Delta derivado de los
// saldos. Los callers nunca calculan Delta a mano: es siempre NewStock menos
// PreviousStock.
func NewStockMovement(tenantID, branchID, entityID string, previous, newStock decimal.Decimal, reason MovementReason, note, createdBy string, at time.Time) *StockMovement {
	return &StockMovement{
		TenantID:      tenantID,
		BranchID:      branchID,
		EntityID:      entityID,
		PreviousStock: previous,
		NewStock:      newStock,
		Delta:         newStock.Sub(previous),
		Reason:        reason,
		Note:          note,
		CreatedAt:     at,
		CreatedBy:     createdBy,
	}
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en caja.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// TransactionItem es una línea de venta ya valorizada.
// Se persiste como JSONB dentro de la transacción, de ahí los tags.
type TransactionItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Transaction representa una venta cerrada en caja.
type Transaction struct {
	ID            string
	TenantID      string
	BranchID      string
	Items         []TransactionItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	CreatedAt     time.Time
	CreatedBy     string // UserID del cajero
}

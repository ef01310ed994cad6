package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// CheckoutItemRequest línea del carrito: producto y cantidad.
type CheckoutItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CheckoutRequest body para POST /api/checkout.
type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items"`
	Discount      decimal.Decimal       `json:"discount"`
	PaymentMethod string                `json:"payment_method"`
}

// TransactionResponse salida de una venta. Es también el payload que viaja
// en la cola de mutaciones hacia el servicio central.
type TransactionResponse struct {
	ID            string                   `json:"id"`
	TenantID      string                   `json:"tenant_id"`
	BranchID      string                   `json:"branch_id"`
	Items         []entity.TransactionItem `json:"items"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Discount      decimal.Decimal          `json:"discount"`
	Total         decimal.Decimal          `json:"total"`
	PaymentMethod string                   `json:"payment_method"`
	CreatedAt     time.Time                `json:"created_at"`
	CreatedBy     string                   `json:"created_by"`
}

// TransactionResponseFrom convierte la entidad al DTO de salida.
func TransactionResponseFrom(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		TenantID:      t.TenantID,
		BranchID:      t.BranchID,
		Items:         t.Items,
		Subtotal:      t.Subtotal,
		Discount:      t.Discount,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
}

// TransactionsResponseFrom convierte un listado completo.
func TransactionsResponseFrom(list []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, TransactionResponseFrom(t))
	}
	return out
}

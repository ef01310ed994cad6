package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendible del catálogo de la sucursal.
// Si TrackStock es false el producto no descuenta stock propio al venderse
// (típico de productos preparados: su consumo se descuenta vía receta).
type Product struct {
	ID         string
	TenantID   string
	SKU        string // código único por tenant
	Name       string
	Price      decimal.Decimal // precio de venta
	Stock      decimal.Decimal
	TrackStock bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

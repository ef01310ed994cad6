package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un insumo de preparación (café molido, leche, vasos).
// Stock se expresa en Unit; MinStock es el umbral de alerta de reposición.
type Material struct {
	ID        string
	TenantID  string
	Name      string
	Stock     decimal.Decimal
	Unit      string // g, kg, ml, l, unidad, ...
	MinStock  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BelowMinStock indica si el insumo está por debajo de su umbral de reposición.
func (m *Material) BelowMinStock() bool {
	return m.MinStock.GreaterThan(decimal.Zero) && m.Stock.LessThan(m.MinStock)
}

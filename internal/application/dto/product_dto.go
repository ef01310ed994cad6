package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      decimal.Decimal `json:"stock"`
	TrackStock bool            `json:"track_stock"`
}

// UpdateProductRequest entrada para actualizar un producto (el stock se toca
// solo vía checkout o ajustes, nunca por este camino).
type UpdateProductRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	TrackStock *bool            `json:"track_stock"`
}

// ProductResponse salida de un producto. Es también el payload que viaja en
// la cola de mutaciones hacia el servicio central.
type ProductResponse struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      decimal.Decimal `json:"stock"`
	TrackStock bool            `json:"track_stock"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProductResponseFrom convierte la entidad al DTO de salida.
func ProductResponseFrom(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		TenantID:   p.TenantID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		TrackStock: p.TrackStock,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ProductsResponseFrom convierte un listado completo.
func ProductsResponseFrom(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ProductResponseFrom(p))
	}
	return out
}

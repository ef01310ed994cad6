package static

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

var _ catalog.StaticSource = (*Dataset)(nil)

//go:embed catalog.json
var embedded []byte

// Dataset es el último nivel de la cadena de lectura: el catálogo de
// demostración embebido en el binario. Siempre responde, incluso sin red y
// sin base local. No conoce ventas; ese nivel lo resuelve la cadena con un
// listado vacío.
type Dataset struct {
	products  []*entity.Product
	materials []*entity.Material
	recipes   []*entity.Recipe
}

// Load parsea el catálogo embebido. Solo falla si el binario se construyó
// con un catalog.json roto.
func Load() (*Dataset, error) {
	return Parse(embedded)
}

// Parse construye un Dataset desde JSON con el mismo formato de cable que
// usa el servicio central.
func Parse(raw []byte) (*Dataset, error) {
	var file struct {
		Products  []dto.ProductResponse  `json:"products"`
		Materials []dto.MaterialResponse `json:"materials"`
		Recipes   []dto.RecipeResponse   `json:"recipes"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("static: catálogo ilegible: %w", err)
	}

	d := &Dataset{
		products:  make([]*entity.Product, 0, len(file.Products)),
		materials: make([]*entity.Material, 0, len(file.Materials)),
		recipes:   make([]*entity.Recipe, 0, len(file.Recipes)),
	}
	for i := range file.Products {
		d.products = append(d.products, productFrom(&file.Products[i]))
	}
	for i := range file.Materials {
		d.materials = append(d.materials, materialFrom(&file.Materials[i]))
	}
	for i := range file.Recipes {
		d.recipes = append(d.recipes, recipeFrom(&file.Recipes[i]))
	}
	return d, nil
}

// Products devuelve los productos del tenant. Las entidades son compartidas
// y de solo lectura; el slice es fresco.
func (d *Dataset) Products(tenantID string) []*entity.Product {
	out := make([]*entity.Product, 0, len(d.products))
	for _, p := range d.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out
}

// Materials devuelve los insumos del tenant.
func (d *Dataset) Materials(tenantID string) []*entity.Material {
	out := make([]*entity.Material, 0, len(d.materials))
	for _, m := range d.materials {
		if m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out
}

// Recipes devuelve las recetas del tenant.
func (d *Dataset) Recipes(tenantID string) []*entity.Recipe {
	out := make([]*entity.Recipe, 0, len(d.recipes))
	for _, r := range d.recipes {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out
}

func productFrom(r *dto.ProductResponse) *entity.Product {
	return &entity.Product{
		ID:         r.ID,
		TenantID:   r.TenantID,
		SKU:        r.SKU,
		Name:       r.Name,
		Price:      r.Price,
		Stock:      r.Stock,
		TrackStock: r.TrackStock,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func materialFrom(r *dto.MaterialResponse) *entity.Material {
	return &entity.Material{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		Stock:     r.Stock,
		Unit:      r.Unit,
		MinStock:  r.MinStock,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func recipeFrom(r *dto.RecipeResponse) *entity.Recipe {
	return &entity.Recipe{
		ID:          r.ID,
		TenantID:    r.TenantID,
		ProductID:   r.ProductID,
		Ingredients: r.Ingredients,
	}
}

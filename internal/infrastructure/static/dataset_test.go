package static_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cajapos/internal/infrastructure/static"
)

// TestLoad_CatalogoEmbebido: el catálogo que viaja dentro del binario debe
// parsear siempre; un tenant desconocido recibe listados vacíos, nunca nil.
func TestLoad_CatalogoEmbebido(t *testing.T) {
	d, err := static.Load()
	require.NoError(t, err)

	products := d.Products("demo")
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, "demo", p.TenantID)
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.SKU)
		assert.True(t, p.Price.GreaterThan(decimal.Zero), "producto %s sin precio", p.ID)
	}
	require.NotEmpty(t, d.Materials("demo"))
	require.NotEmpty(t, d.Recipes("demo"))

	assert.NotNil(t, d.Products("tenant-fantasma"))
	assert.Empty(t, d.Products("tenant-fantasma"))
	assert.Empty(t, d.Materials("tenant-fantasma"))
	assert.Empty(t, d.Recipes("tenant-fantasma"))
}

// TestLoad_IntegridadReferencial: cada receta embebida apunta a un producto
// y a insumos que existen en el mismo tenant.
func TestLoad_IntegridadReferencial(t *testing.T) {
	d, err := static.Load()
	require.NoError(t, err)

	products := map[string]bool{}
	for _, p := range d.Products("demo") {
		products[p.ID] = true
	}
	materials := map[string]bool{}
	for _, m := range d.Materials("demo") {
		materials[m.ID] = true
	}

	for _, r := range d.Recipes("demo") {
		assert.True(t, products[r.ProductID], "receta %s apunta a producto inexistente %s", r.ID, r.ProductID)
		require.NotEmpty(t, r.Ingredients, "receta %s sin ingredientes", r.ID)
		for _, ing := range r.Ingredients {
			assert.True(t, materials[ing.MaterialID], "receta %s usa insumo inexistente %s", r.ID, ing.MaterialID)
			assert.True(t, ing.Quantity.GreaterThan(decimal.Zero))
		}
	}
}

// TestParse_FiltraPorTenant: el dataset separa tenants aunque convivan en el
// mismo archivo.
func TestParse_FiltraPorTenant(t *testing.T) {
	raw := []byte(`{
		"products": [
			{"id": "p-1", "tenant_id": "a", "sku": "A-1", "name": "Uno", "price": "1.00"},
			{"id": "p-2", "tenant_id": "b", "sku": "B-1", "name": "Dos", "price": "2.00"}
		],
		"materials": [
			{"id": "m-1", "tenant_id": "a", "name": "Harina", "stock": "500", "unit": "g"}
		],
		"recipes": []
	}`)

	d, err := static.Parse(raw)
	require.NoError(t, err)

	require.Len(t, d.Products("a"), 1)
	assert.Equal(t, "p-1", d.Products("a")[0].ID)
	require.Len(t, d.Products("b"), 1)
	assert.Len(t, d.Materials("b"), 0)
}

// TestParse_JSONRoto: un catálogo ilegible es error de construcción, no un
// dataset vacío silencioso.
func TestParse_JSONRoto(t *testing.T) {
	_, err := static.Parse([]byte(`{"products": [`))
	require.Error(t, err)
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/dto"
)

// CatalogHandler sirve las lecturas de catálogo a través de la cadena de
// fallback (remoto -> local -> estático). Nunca responde error por datos:
// siempre hay un nivel que contesta, y la respuesta declara cuál fue.
type CatalogHandler struct {
	chain *catalog.FallbackChain
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(chain *catalog.FallbackChain) *CatalogHandler {
	return &CatalogHandler{chain: chain}
}

// Products godoc
// @Summary      Catálogo de productos
// @Description  La respuesta indica el origen de los datos en "source":
//
//	remote | local | static.
//
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/catalog/products [get]
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, source := h.chain.Products(c.Context(), tenantID)
	return c.JSON(fiber.Map{
		"source":   source,
		"total":    len(list),
		"products": dto.ProductsResponseFrom(list),
	})
}

// Materials godoc
// @Summary      Catálogo de insumos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/catalog/materials [get]
func (h *CatalogHandler) Materials(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, source := h.chain.Materials(c.Context(), tenantID)
	return c.JSON(fiber.Map{
		"source":    source,
		"total":     len(list),
		"materials": dto.MaterialsResponseFrom(list),
	})
}

// Recipes godoc
// @Summary      Catálogo de recetas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/catalog/recipes [get]
func (h *CatalogHandler) Recipes(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, source := h.chain.Recipes(c.Context(), tenantID)
	return c.JSON(fiber.Map{
		"source":  source,
		"total":   len(list),
		"recipes": dto.RecipesResponseFrom(list),
	})
}

// Transactions godoc
// @Summary      Ventas de la sucursal por rango de fechas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Fecha inicial (RFC3339 o YYYY-MM-DD)"
// @Param        to    query  string  false  "Fecha final (RFC3339 o YYYY-MM-DD, inclusive)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *CatalogHandler) Transactions(c *fiber.Ctx) error {
	tenantID, branchID := GetTenantID(c), GetBranchID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, err := parseDateParam(c.Query("from"), false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from: fecha inválida (RFC3339 o YYYY-MM-DD)"})
	}
	to, err := parseDateParam(c.Query("to"), true)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to: fecha inválida (RFC3339 o YYYY-MM-DD)"})
	}
	list, source := h.chain.TransactionsByDate(c.Context(), tenantID, branchID, from, to)
	return c.JSON(fiber.Map{
		"source":       source,
		"total":        len(list),
		"transactions": dto.TransactionsResponseFrom(list),
	})
}

// parseDateParam acepta RFC3339 o fecha simple. Una fecha simple usada como
// límite superior se corre al final del día para que el rango sea inclusivo.
func parseDateParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

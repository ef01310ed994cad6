package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/domain"
)

// ProductHandler maneja el CRUD de productos y la consulta de capacidad
// (protegido). Las escrituras pasan por el write-through local+cola; las
// lecturas de catálogo viven en CatalogHandler sobre la cadena de fallback.
type ProductHandler struct {
	uc       *catalog.UseCase
	capacity *inventory.CapacityUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.UseCase, capacity *inventory.CapacityUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, capacity: capacity}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.CreateProduct(c.Context(), tenantID, &in)
	if err != nil {
		return mapCatalogError(c, err, "producto")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductResponseFrom(p))
}

// Update godoc
// @Summary      Actualizar producto (parche parcial; el stock no se toca por aquí)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.UpdateProduct(c.Context(), tenantID, id, &in)
	if err != nil {
		return mapCatalogError(c, err, "producto")
	}
	return c.JSON(dto.ProductResponseFrom(p))
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.DeleteProduct(c.Context(), tenantID, id); err != nil {
		return mapCatalogError(c, err, "producto")
	}
	return c.JSON(fiber.Map{"message": "producto eliminado"})
}

// Capacity godoc
// @Summary      Porciones preparables de un producto con el stock actual
// @Description  -1 significa capacidad no acotada por insumos (sin receta).
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.CapacityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/capacity [get]
func (h *ProductHandler) Capacity(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	servings, mismatches, err := h.capacity.MaxServingsForProduct(c.Context(), tenantID, id)
	if err != nil {
		return mapCatalogError(c, err, "producto")
	}
	out := dto.CapacityResponse{ProductID: id, Servings: servings}
	for _, mm := range mismatches {
		out.UnitMismatches = append(out.UnitMismatches, dto.UnitMismatchDTO{
			MaterialID: mm.MaterialID,
			StockUnit:  mm.StockUnit,
			NeededUnit: mm.NeededUnit,
		})
	}
	return c.JSON(out)
}

// mapCatalogError traduce los errores de dominio de las operaciones de
// catálogo y stock a status HTTP. Los usecases envuelven los sentinelas con
// contexto, de ahí errors.Is en lugar de comparación directa.
func mapCatalogError(c *fiber.Ctx, err error, resource string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: resource + " no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrLocalStoreDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCAL_STORE_DISABLED", Message: "operación no disponible: el nodo corre sin almacén local"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

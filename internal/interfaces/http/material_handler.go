package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// MaterialHandler maneja el CRUD de insumos, los ajustes de stock y la lista
// de reposición. El stock solo se mueve por /adjust o por checkout; el update
// común no lo toca.
type MaterialHandler struct {
	uc            *catalog.UseCase
	stock         *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *catalog.UseCase, stock *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *MaterialHandler {
	return &MaterialHandler{uc: uc, stock: stock, replenishment: replenishment}
}

// Create godoc
// @Summary      Dar de alta un insumo
// @Description  Si stock > 0 se registra además el movimiento "initial" en el libro.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "Datos del insumo"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	tenantID, branchID, userID := GetTenantID(c), GetBranchID(c), GetUserID(c)
	if tenantID == "" || branchID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.uc.CreateMaterial(c.Context(), tenantID, branchID, userID, &in)
	if err != nil {
		return mapCatalogError(c, err, "insumo")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MaterialResponseFrom(m))
}

// Update godoc
// @Summary      Actualizar un insumo (nombre, unidad, umbral; nunca el stock)
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del insumo"
// @Param        body  body  dto.UpdateMaterialRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.uc.UpdateMaterial(c.Context(), tenantID, id, &in)
	if err != nil {
		return mapCatalogError(c, err, "insumo")
	}
	return c.JSON(dto.MaterialResponseFrom(m))
}

// Delete godoc
// @Summary      Eliminar un insumo
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del insumo"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.DeleteMaterial(c.Context(), tenantID, id); err != nil {
		return mapCatalogError(c, err, "insumo")
	}
	return c.JSON(fiber.Map{"message": "insumo eliminado"})
}

// Adjust godoc
// @Summary      Ajustar el stock de un insumo
// @Description  Delta con signo: positivo repone, negativo descuenta. El saldo
//
//	no puede quedar negativo y el libro registra el ajuste.
//
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del insumo"
// @Param        body  body  dto.AdjustStockRequest  true  "delta, reason (initial|purchase|adjustment|waste), note"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/adjust [post]
func (h *MaterialHandler) Adjust(c *fiber.Ctx) error {
	tenantID, branchID, userID := GetTenantID(c), GetBranchID(c), GetUserID(c)
	if tenantID == "" || branchID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reason := entity.MovementReason(in.Reason)
	if in.Reason == "" {
		reason = entity.ReasonAdjustment
	}
	res, err := h.stock.AdjustMaterialStock(c.Context(), tenantID, branchID, id, in.Delta, reason, in.Note, userID)
	if err != nil {
		return mapCatalogError(c, err, "insumo")
	}
	return c.JSON(fiber.Map{
		"material": dto.MaterialResponseFrom(res.Material),
		"movement": dto.StockMovementResponseFrom(res.Movement),
	})
}

// Replenishment godoc
// @Summary      Lista de reposición de insumos
// @Description  Insumos bajo su umbral con cantidad de pedido sugerida, el
//
//	déficit relativo mayor primero.
//
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/materials/replenishment [get]
func (h *MaterialHandler) Replenishment(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sugs, err := h.replenishment.Suggestions(c.Context(), tenantID)
	if err != nil {
		return mapCatalogError(c, err, "insumo")
	}
	items := make([]dto.ReplenishmentItemDTO, 0, len(sugs))
	for _, s := range sugs {
		items = append(items, dto.ReplenishmentItemDTO{
			MaterialID:   s.Material.ID,
			Name:         s.Material.Name,
			Unit:         s.Material.Unit,
			Stock:        s.Material.Stock,
			MinStock:     s.Material.MinStock,
			Deficit:      s.Deficit,
			SuggestedQty: s.SuggestedQty,
			Priority:     s.Priority,
		})
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

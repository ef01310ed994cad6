package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/domain"
)

// CheckoutHandler cierra ventas en caja (protegido).
type CheckoutHandler struct {
	uc *inventory.CheckoutUseCase
}

// NewCheckoutHandler construye el handler.
func NewCheckoutHandler(uc *inventory.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// Checkout godoc
// @Summary      Cerrar una venta
// @Description  Valoriza el carrito, descuenta stock de productos e insumos
//
//	en una sola transacción y encola la replicación al servicio central.
//
// @Tags         checkout
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Carrito, descuento y método de pago"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	tenantID, branchID, userID := GetTenantID(c), GetBranchID(c), GetUserID(c)
	if tenantID == "" || branchID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	items := make([]inventory.CheckoutItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	txn, err := h.uc.Checkout(c.Context(), inventory.CheckoutInput{
		TenantID:      tenantID,
		BranchID:      branchID,
		UserID:        userID,
		Items:         items,
		Discount:      in.Discount,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrLocalStoreDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCAL_STORE_DISABLED", Message: "el nodo corre sin almacén local; el checkout está deshabilitado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionResponseFrom(txn))
}

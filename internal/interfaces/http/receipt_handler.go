package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/application/receipt"
	"github.com/jhoicas/cajapos/internal/domain"
)

// ReceiptHandler sirve el comprobante PDF de una venta.
type ReceiptHandler struct {
	uc *receipt.UseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(uc *receipt.UseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Download godoc
// @Summary      Comprobante PDF de una venta
// @Description  Ticket de rollo 80mm con las líneas, totales y medio de pago.
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/receipt [get]
func (h *ReceiptHandler) Download(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	pdfBytes, filename, err := h.uc.ForTransaction(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		case errors.Is(err, domain.ErrLocalStoreDisabled):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCAL_STORE_DISABLED", Message: "este nodo opera sin almacén local"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo generar el comprobante"})
		}
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(pdfBytes)
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/dto"
	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain"
)

// SyncHandler expone el control manual de la replicación: drenaje bajo
// demanda y consulta del estado de la cola.
type SyncHandler struct {
	dispatcher *appsync.Dispatcher
}

// NewSyncHandler construye el handler.
func NewSyncHandler(dispatcher *appsync.Dispatcher) *SyncHandler {
	return &SyncHandler{dispatcher: dispatcher}
}

// Flush godoc
// @Summary      Drena la cola de mutaciones contra el servicio central
// @Description  Reproduce las mutaciones pendientes en orden. Las que fallan
//
//	permanecen en la cola; si hubo fallos la respuesta es 502
//	con el reporte de lo aplicado y lo pendiente.
//
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  sync.Report
// @Failure      502  {object}  map[string]interface{}
// @Router       /api/sync/flush [post]
func (h *SyncHandler) Flush(c *fiber.Ctx) error {
	report, err := h.dispatcher.Flush(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRemoteDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "REMOTE_DISABLED", Message: err.Error()})
		}
		// El reporte acompaña al error: el operador necesita saber cuánto
		// se aplicó y cuánto quedó pendiente para decidir si reintenta.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"code":    "SYNC_INCOMPLETE",
			"message": err.Error(),
			"report":  report,
		})
	}
	return c.JSON(report)
}

// Status godoc
// @Summary      Estado de la sincronización
// @Description  Pendientes en cola, conectividad y si hay una pasada activa.
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  sync.Status
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/sync/status [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	status, err := h.dispatcher.Status(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo leer el estado de la cola"})
	}
	return c.JSON(status)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/adjustment"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// AdjustmentHandler maneja los ajustes de stock (protegido).
type AdjustmentHandler struct {
	engine *adjustment.Engine
}

// NewAdjustmentHandler construye el handler de ajustes.
func NewAdjustmentHandler(engine *adjustment.Engine) *AdjustmentHandler {
	return &AdjustmentHandler{engine: engine}
}

// Create godoc
// @Summary      Aplicar ajuste de stock
// @Description  Ajuste relativo o absoluto sobre una celda producto+ubicación, con deduplicación por clave de idempotencia (header Idempotency-Key o campo idempotency_key; el header gana).
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, location_id, adjustment_type, mode, value"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	key := c.Get("Idempotency-Key")
	if key == "" {
		key = in.IdempotencyKey
	}

	result, err := h.engine.Adjust(c.Context(), entity.AdjustmentRequest{
		IdempotencyKey: key,
		StoreID:        storeID,
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		AdjustmentType: in.AdjustmentType,
		Mode:           in.Mode,
		Value:          in.Value,
		Reason:         in.Reason,
		Notes:          in.Notes,
		PerformedBy:    userID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}

	status := fiber.StatusCreated
	if result.Replayed {
		// Replay idempotente: misma respuesta, sin reaplicar nada.
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.AdjustmentResponse{
		AdjustmentID:   result.AdjustmentID,
		QuantityBefore: result.QuantityBefore,
		QuantityAfter:  result.QuantityAfter,
		CellTotal:      result.CellTotal,
		Replayed:       result.Replayed,
	})
}

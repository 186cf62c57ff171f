package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/conversion"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
)

// ConversionHandler maneja las conversiones padre → variante (protegido).
type ConversionHandler struct {
	engine *conversion.Engine
}

// NewConversionHandler construye el handler de conversiones.
func NewConversionHandler(engine *conversion.Engine) *ConversionHandler {
	return &ConversionHandler{engine: engine}
}

// Create godoc
// @Summary      Convertir stock padre en unidades de variante
// @Description  Decrementa el SKU padre en units_to_create * conversion_ratio e incrementa la variante en units_to_create, atómico y sin sobregiro.
// @Tags         conversions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConversionRequest  true  "product_id (padre), variant_id, location_id, units_to_create, conversion_ratio"
// @Success      201   {object}  dto.ConversionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/conversions [post]
func (h *ConversionHandler) Create(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConversionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	result, err := h.engine.Convert(c.Context(), conversion.Input{
		StoreID:         storeID,
		ProductID:       in.ProductID,
		VariantID:       in.VariantID,
		LocationID:      in.LocationID,
		UnitsToCreate:   in.UnitsToCreate,
		ConversionRatio: in.ConversionRatio,
		PerformedBy:     userID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ConversionResponse{
		ConversionID:           result.ConversionID,
		ParentQuantityConsumed: result.ParentQuantityConsumed,
		VariantUnitsCreated:    result.VariantUnitsCreated,
		ParentRemaining:        result.ParentRemaining,
		VariantTotal:           result.VariantTotal,
	})
}

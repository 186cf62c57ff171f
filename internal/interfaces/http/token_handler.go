package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/tokens"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// TokenHandler maneja los tokens físicos (protegido).
type TokenHandler struct {
	uc *tokens.UseCase
}

// NewTokenHandler construye el handler de tokens.
func NewTokenHandler(uc *tokens.UseCase) *TokenHandler {
	return &TokenHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar token físico
// @Tags         tokens
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTokenRequest  true  "code, location_id, product_id opcional"
// @Success      201   {object}  dto.TokenResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tokens [post]
func (h *TokenHandler) Create(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateTokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tok, err := h.uc.Create(c.Context(), tokens.CreateInput{
		StoreID:    storeID,
		Code:       in.Code,
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTokenResponse(tok))
}

// Get godoc
// @Summary      Resolver token por código (match exacto, luego normalizado)
// @Tags         tokens
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del token"
// @Success      200  {object}  dto.TokenResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tokens/{code} [get]
func (h *TokenHandler) Get(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	tok, err := h.uc.Resolve(c.Context(), storeID, c.Params("code"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toTokenResponse(tok))
}

// Scan godoc
// @Summary      Registrar escaneo de un token
// @Tags         tokens
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del token"
// @Success      200  {object}  dto.TokenResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tokens/{code}/scan [post]
func (h *TokenHandler) Scan(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	tok, err := h.uc.Scan(c.Context(), storeID, c.Params("code"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toTokenResponse(tok))
}

// MarkSold godoc
// @Summary      Marcar un token como vendido
// @Tags         tokens
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del token"
// @Success      200  {object}  dto.TokenResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tokens/{code}/sold [post]
func (h *TokenHandler) MarkSold(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	tok, err := h.uc.MarkSold(c.Context(), storeID, c.Params("code"), GetUserID(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toTokenResponse(tok))
}

func toTokenResponse(t *entity.PhysicalToken) dto.TokenResponse {
	return dto.TokenResponse{
		ID:                t.ID,
		Code:              t.Code,
		ProductID:         t.ProductID,
		CurrentLocationID: t.CurrentLocationID,
		Status:            t.Status,
		CurrentTransferID: t.CurrentTransferID,
		TotalScans:        t.TotalScans,
		LastScannedAt:     t.LastScannedAt,
	}
}

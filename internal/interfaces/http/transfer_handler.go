package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/transfer"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ManifestGenerator genera el documento de despacho de un traslado
// (PDF con un QR por token atado).
type ManifestGenerator interface {
	Generate(t *entity.Transfer, tokens []*entity.PhysicalToken) ([]byte, error)
}

// TransferHandler maneja el ciclo de vida de traslados (protegido).
type TransferHandler struct {
	uc       *transfer.UseCase
	manifest ManifestGenerator
}

// NewTransferHandler construye el handler de traslados.
func NewTransferHandler(uc *transfer.UseCase, manifest ManifestGenerator) *TransferHandler {
	return &TransferHandler{uc: uc, manifest: manifest}
}

// Create godoc
// @Summary      Crear traslado (nace despachado, in_transit)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "source_location_id, destination_location_id, items"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	items := make([]transfer.CreateItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, transfer.CreateItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			TokenCode: it.TokenCode,
		})
	}
	t, err := h.uc.Create(c.Context(), transfer.CreateInput{
		StoreID:               storeID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Notes:                 in.Notes,
		TrackingNumber:        in.TrackingNumber,
		CreatedBy:             userID,
		Items:                 items,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// Receive godoc
// @Summary      Recibir traslado en destino
// @Description  Mueve el kardex (ítems ledger-tracked) o libera los tokens (ítems token-bound) y completa el traslado. Exactamente una recepción por traslado; la segunda devuelve 409.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del traslado"
// @Param        body  body  dto.ReceiveTransferRequest  false  "condiciones por ítem"
// @Success      200   {object}  dto.ReceiveTransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	result, err := h.uc.Receive(c.Context(), transfer.ReceiveInput{
		TransferID:            c.Params("id"),
		DestinationLocationID: in.DestinationLocationID,
		ReceivedBy:            userID,
		Conditions:            in.Conditions,
	})
	if err != nil {
		return writeDomainError(c, err)
	}

	out := dto.ReceiveTransferResponse{
		TransferID: result.TransferID,
		Number:     result.Number,
		Warnings:   result.Warnings,
	}
	for _, it := range result.Items {
		out.Items = append(out.Items, dto.ReceivedItemResponse{
			ItemID:    it.ItemID,
			ProductID: it.ProductID,
			Tracking:  it.Tracking,
			Requested: it.Requested,
			Received:  it.Received,
			Shortfall: it.Shortfall,
		})
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar traslado en tránsito
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	t, err := h.uc.Cancel(c.Context(), c.Params("id"), userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// GetByID godoc
// @Summary      Consultar traslado con sus ítems
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	t, err := h.uc.GetByID(c.Context(), storeID, c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados de la tienda
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	list, err := h.uc.ListByStore(c.Context(), storeID, c.Query("status"), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransferResponse(t))
	}
	return c.JSON(out)
}

// ByToken godoc
// @Summary      Resolver traslado activo por código de token (escanear-para-recibir)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del token físico"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/by-token/{code} [get]
func (h *TransferHandler) ByToken(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	t, err := h.uc.LookupByToken(c.Context(), storeID, c.Params("code"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Manifest godoc
// @Summary      Documento de despacho en PDF (QR por token atado)
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/manifest.pdf [get]
func (h *TransferHandler) Manifest(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	t, toks, err := h.uc.Manifest(c.Context(), storeID, c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	pdf, err := h.manifest.Generate(t, toks)
	if err != nil {
		return writeDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+t.Number+`.pdf"`)
	return c.Send(pdf)
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:                    t.ID,
		Number:                t.Number,
		StoreID:               t.StoreID,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		Status:                t.Status,
		Notes:                 t.Notes,
		TrackingNumber:        t.TrackingNumber,
		ShippedAt:             t.ShippedAt,
		ReceivedAt:            t.ReceivedAt,
		CancelledAt:           t.CancelledAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
			Condition:        it.Condition,
			Tracking:         it.Tracking(),
			BoundTokenID:     it.BoundTokenID,
		})
	}
	return out
}

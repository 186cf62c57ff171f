package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
)

// StockHandler consultas de stock y del stream de auditoría del kardex (protegido).
type StockHandler struct {
	uc *usecase.StockQueryUseCase
}

// NewStockHandler construye el handler de consultas de stock.
func NewStockHandler(uc *usecase.StockQueryUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetCell godoc
// @Summary      Cantidad actual de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId   path  string  true  "ID del producto"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.StockCellResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/{locationId} [get]
func (h *StockHandler) GetCell(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	cell, err := h.uc.GetCell(storeID, c.Params("productId"), c.Params("locationId"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.StockCellResponse{
		ProductID:  cell.ProductID,
		LocationID: cell.LocationID,
		Quantity:   cell.Quantity,
		UpdatedAt:  cell.UpdatedAt,
	})
}

// ListLedger godoc
// @Summary      Asientos del kardex de una celda, en orden cronológico
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "ID del producto"
// @Param        location_id  query  string  true   "ID de la ubicación"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/entries [get]
func (h *StockHandler) ListLedger(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	productID := c.Query("product_id")
	locationID := c.Query("location_id")
	if productID == "" || locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y location_id son requeridos"})
	}

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &ts
	}
	if s := c.Query("to"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &ts
	}

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)
	entries, err := h.uc.ListLedger(storeID, productID, locationID, from, to, limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}

	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:              e.ID,
			LocationID:      e.LocationID,
			ProductID:       e.ProductID,
			TransactionType: e.TransactionType,
			QuantityBefore:  e.QuantityBefore,
			QuantityChange:  e.QuantityChange,
			QuantityAfter:   e.QuantityAfter,
			Reason:          e.Reason,
			ReferenceType:   e.ReferenceType,
			ReferenceID:     e.ReferenceID,
			PerformedBy:     e.PerformedBy,
			CreatedAt:       e.CreatedAt,
		})
	}
	return c.JSON(out)
}

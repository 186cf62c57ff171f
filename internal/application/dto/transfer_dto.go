package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferItemRequest línea de un traslado nuevo.
type CreateTransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	TokenCode string          `json:"token_code,omitempty"` // ata el ítem a un token físico
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceLocationID      string                      `json:"source_location_id"`
	DestinationLocationID string                      `json:"destination_location_id"`
	Notes                 string                      `json:"notes,omitempty"`
	TrackingNumber        string                      `json:"tracking_number,omitempty"`
	Items                 []CreateTransferItemRequest `json:"items"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receive.
type ReceiveTransferRequest struct {
	DestinationLocationID string            `json:"destination_location_id,omitempty"`
	Conditions            map[string]string `json:"conditions,omitempty"` // item_id -> good/damaged/missing
}

// TransferItemResponse línea del traslado en respuestas.
type TransferItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Condition        string          `json:"condition,omitempty"`
	Tracking         string          `json:"tracking"` // ledger | token
	BoundTokenID     string          `json:"bound_token_id,omitempty"`
}

// TransferResponse read model del traslado. Los nombres de ubicación los
// resuelve el colaborador externo de catálogo; aquí viajan los IDs.
type TransferResponse struct {
	ID                    string                 `json:"id"`
	Number                string                 `json:"number"`
	StoreID               string                 `json:"store_id"`
	SourceLocationID      string                 `json:"source_location_id"`
	DestinationLocationID string                 `json:"destination_location_id"`
	Status                string                 `json:"status"`
	Notes                 string                 `json:"notes,omitempty"`
	TrackingNumber        string                 `json:"tracking_number,omitempty"`
	ShippedAt             time.Time              `json:"shipped_at"`
	ReceivedAt            *time.Time             `json:"received_at,omitempty"`
	CancelledAt           *time.Time             `json:"cancelled_at,omitempty"`
	Items                 []TransferItemResponse `json:"items"`
}

// ReceivedItemResponse detalle por ítem de la recepción.
type ReceivedItemResponse struct {
	ItemID    string          `json:"item_id"`
	ProductID string          `json:"product_id"`
	Tracking  string          `json:"tracking"`
	Requested decimal.Decimal `json:"requested"`
	Received  decimal.Decimal `json:"received"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// ReceiveTransferResponse resultado de la recepción.
type ReceiveTransferResponse struct {
	TransferID string                 `json:"transfer_id"`
	Number     string                 `json:"number"`
	Items      []ReceivedItemResponse `json:"items"`
	Warnings   []string               `json:"warnings,omitempty"`
}

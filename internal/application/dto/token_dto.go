package dto

import "time"

// CreateTokenRequest body para POST /api/tokens.
type CreateTokenRequest struct {
	Code       string `json:"code"`
	ProductID  string `json:"product_id,omitempty"`
	LocationID string `json:"location_id"`
}

// TokenResponse read model de un token físico.
type TokenResponse struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	ProductID         string     `json:"product_id,omitempty"`
	CurrentLocationID string     `json:"current_location_id"`
	Status            string     `json:"status"`
	CurrentTransferID string     `json:"current_transfer_id,omitempty"`
	TotalScans        int        `json:"total_scans"`
	LastScannedAt     *time.Time `json:"last_scanned_at,omitempty"`
}

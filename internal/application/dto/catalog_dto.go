package dto

import "github.com/shopspring/decimal"

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// LocationResponse read model de una ubicación.
type LocationResponse struct {
	ID      string `json:"id"`
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	UnitMeasure     string           `json:"unit_measure,omitempty"`
	ParentID        string           `json:"parent_id,omitempty"`
	ConversionRatio *decimal.Decimal `json:"conversion_ratio,omitempty"`
}

// ProductResponse read model de un producto.
type ProductResponse struct {
	ID              string           `json:"id"`
	StoreID         string           `json:"store_id"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	UnitMeasure     string           `json:"unit_measure,omitempty"`
	ParentID        string           `json:"parent_id,omitempty"`
	ConversionRatio *decimal.Decimal `json:"conversion_ratio,omitempty"`
}

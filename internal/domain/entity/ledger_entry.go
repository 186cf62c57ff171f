package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de inventario (kardex).
const (
	TxTypeAdjustment    = "adjustment"
	TxTypeSale          = "sale"
	TxTypeTransferOut   = "transfer_out"
	TxTypeTransferIn    = "transfer_in"
	TxTypeConversionOut = "conversion_out"
	TxTypeConversionIn  = "conversion_in"
)

// Tipos de referencia para enlazar una entrada con su operación de origen.
const (
	RefTypeAdjustment = "adjustment"
	RefTypeTransfer   = "transfer"
	RefTypeConversion = "conversion"
)

// LedgerEntry es un registro inmutable del kardex: se agrega uno por cada
// mutación de un StockCell y nunca se modifica ni se borra.
// Invariante: QuantityAfter == QuantityBefore + QuantityChange, y ordenadas
// por CreatedAt dentro de una celda forman una traza de auditoría sin huecos.
type LedgerEntry struct {
	ID              string
	StoreID         string
	LocationID      string
	ProductID       string
	TransactionType string
	QuantityBefore  decimal.Decimal
	QuantityChange  decimal.Decimal // con signo: positivo entrada, negativo salida
	QuantityAfter   decimal.Decimal
	Reason          string
	ReferenceType   string // adjustment, transfer, conversion
	ReferenceID     string // enlaza las dos mitades de un traslado o conversión
	PerformedBy     string // actor; vacío si el sistema
	CreatedAt       time.Time
}

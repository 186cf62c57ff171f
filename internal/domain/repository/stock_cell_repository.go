package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// StockCellRepository define el puerto para leer/actualizar la celda de stock
// (producto + ubicación). Usado dentro de transacciones para garantizar que la
// secuencia leer-modificar-escribir de una celda sea atómica frente a otros writers.
type StockCellRepository interface {
	Get(productID, locationID string) (*entity.StockCell, error)
	// GetForUpdate bloquea la fila de la celda (SELECT FOR UPDATE).
	GetForUpdate(productID, locationID string) (*entity.StockCell, error)
	Upsert(cell *entity.StockCell) error
	ListByLocation(locationID string, limit, offset int) ([]*entity.StockCell, error)
	// SumByProduct suma la cantidad del producto en todas sus ubicaciones.
	SumByProduct(productID string) (decimal.Decimal, error)
}

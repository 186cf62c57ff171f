package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ConversionRecordRepository define el puerto de persistencia para conversiones
// padre → variante. Solo crea y lee; los registros son inmutables.
type ConversionRecordRepository interface {
	Create(record *entity.ConversionRecord) error
	GetByID(id string) (*entity.ConversionRecord, error)
	ListByProduct(productID string, limit, offset int) ([]*entity.ConversionRecord, error)
}

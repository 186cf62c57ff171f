package repository

import (
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// LedgerEntryRepository define el puerto de persistencia del kardex.
// Solo agrega y lee: las entradas nunca se modifican ni se borran.
type LedgerEntryRepository interface {
	Append(entry *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	// ListByCell devuelve las entradas de una celda ordenadas por CreatedAt
	// ascendente, para que el consumidor de auditoría reconstruya la cantidad.
	ListByCell(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	ListByReference(referenceType, referenceID string) ([]*entity.LedgerEntry, error)
}

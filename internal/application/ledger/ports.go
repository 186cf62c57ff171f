package ledger

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el par celda + entrada de kardex
// se escriba como unidad atómica o no se escriba nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
	) error) error
}

package transfer

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita el ciclo de vida del traslado. La recepción
// completa de un traslado corre dentro de una sola unidad atómica: un reintento
// tras un fallo parcial no puede duplicar ítems ya procesados.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		tokenRepo repository.TokenRepository,
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
	) error) error
}

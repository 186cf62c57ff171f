package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Kardex-api/internal/application/conversion"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/transfer"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de cada motor.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ transfer.TxRunner = (*TxRunner)(nil)
var _ conversion.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, pasando
// repositorios atados a la tx. Commit si fn devuelve nil, Rollback si no.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run transacción con los repos del kardex (celda + entradas).
func (r *TxRunner) Run(ctx context.Context, fn func(
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockCellRepository(q), NewLedgerEntryRepository(q))
	})
}

// RunTransfer transacción con los repos del ciclo de vida de traslados.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	tokenRepo repository.TokenRepository,
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewTransferRepository(q), NewTokenRepository(q),
			NewStockCellRepository(q), NewLedgerEntryRepository(q))
	})
}

// RunConversion transacción con los repos de conversión.
func (r *TxRunner) RunConversion(ctx context.Context, fn func(
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
	convRepo repository.ConversionRecordRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockCellRepository(q), NewLedgerEntryRepository(q),
			NewConversionRecordRepository(q))
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo persistencia del kardex (append-only) sobre PostgreSQL.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador.
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

const ledgerColumns = `id, store_id, location_id, product_id, transaction_type,
		quantity_before, quantity_change, quantity_after,
		reason, reference_type, reference_id, performed_by, created_at`

// Append inserta un asiento del kardex. Nunca se actualiza ni se borra.
func (r *LedgerEntryRepo) Append(e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.StoreID, e.LocationID, e.ProductID, e.TransactionType,
		e.QuantityBefore, e.QuantityChange, e.QuantityAfter,
		e.Reason, e.ReferenceType, e.ReferenceID, e.PerformedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por su ID.
func (r *LedgerEntryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	e, err := scanLedgerEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// ListByCell lista los asientos de una celda en orden cronológico ascendente,
// acotados opcionalmente por rango de fechas.
func (r *LedgerEntryRepo) ListByCell(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE product_id = $1 AND location_id = $2
			AND ($3::timestamptz IS NULL OR created_at >= $3)
			AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at ASC, id ASC
		LIMIT $5 OFFSET $6`
	return r.list(query, productID, locationID, from, to, limit, offset)
}

// ListByReference lista los asientos generados por una misma operación
// (p.ej. los dos asientos de una conversión).
func (r *LedgerEntryRepo) ListByReference(refType, refID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at ASC, id ASC`
	return r.list(query, refType, refID)
}

func (r *LedgerEntryRepo) list(query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := row.Scan(
		&e.ID, &e.StoreID, &e.LocationID, &e.ProductID, &e.TransactionType,
		&e.QuantityBefore, &e.QuantityChange, &e.QuantityAfter,
		&e.Reason, &e.ReferenceType, &e.ReferenceID, &e.PerformedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persistencia de traslados e ítems sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, number, store_id, source_location_id, destination_location_id,
		status, notes, tracking_number, created_by, received_by, cancelled_by,
		shipped_at, received_at, cancelled_at, created_at, updated_at`

// Create inserta la cabecera del traslado.
func (r *TransferRepo) Create(t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''),
			$12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Number, t.StoreID, t.SourceLocationID, t.DestinationLocationID,
		t.Status, t.Notes, t.TrackingNumber, t.CreatedByUserID, t.ReceivedByUserID, t.CancelledByUserID,
		t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		// UNIQUE (store_id, number): dos creadores del mismo día leyeron el
		// mismo consecutivo. El caso de uso reintenta con el siguiente.
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// CreateItem inserta una línea del traslado.
func (r *TransferRepo) CreateItem(item *entity.TransferItem) error {
	query := `
		INSERT INTO transfer_items
			(id, transfer_id, product_id, quantity, received_quantity, condition, bound_token_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.TransferID, item.ProductID, item.Quantity,
		item.ReceivedQuantity, item.Condition, item.BoundTokenID,
	)
	if err != nil {
		return fmt.Errorf("create transfer item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera del traslado (sin ítems).
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	return r.getOne(query, id, "get transfer")
}

// GetByIDForUpdate obtiene la cabecera bloqueando la fila (SELECT FOR UPDATE).
// Dos recepciones concurrentes del mismo traslado quedan serializadas aquí.
func (r *TransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id, "get transfer for update")
}

func (r *TransferRepo) getOne(query, id, op string) (*entity.Transfer, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListItems lista las líneas de un traslado.
func (r *TransferRepo) ListItems(transferID string) ([]*entity.TransferItem, error) {
	query := `
		SELECT id, transfer_id, product_id, quantity, received_quantity,
			COALESCE(condition, ''), COALESCE(bound_token_id::text, '')
		FROM transfer_items WHERE transfer_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	var items []*entity.TransferItem
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity,
			&it.ReceivedQuantity, &it.Condition, &it.BoundTokenID); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateStatus persiste la transición de estado y sus marcas asociadas.
func (r *TransferRepo) UpdateStatus(t *entity.Transfer) error {
	query := `
		UPDATE transfers
		SET status = $2, received_by = NULLIF($3, ''), cancelled_by = NULLIF($4, ''),
			received_at = $5, cancelled_at = $6, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Status, t.ReceivedByUserID, t.CancelledByUserID, t.ReceivedAt, t.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	return nil
}

// UpdateItemReceipt persiste cantidad recibida y condición de la línea.
func (r *TransferRepo) UpdateItemReceipt(item *entity.TransferItem) error {
	query := `
		UPDATE transfer_items
		SET received_quantity = $2, condition = NULLIF($3, '')
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, item.ID, item.ReceivedQuantity, item.Condition)
	if err != nil {
		return fmt.Errorf("update transfer item receipt: %w", err)
	}
	return nil
}

// ListByStore lista traslados de la tienda, opcionalmente por estado.
func (r *TransferRepo) ListByStore(storeID, status string, limit, offset int) ([]*entity.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE store_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, storeID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// NextSequence devuelve el consecutivo del día para el número legible.
func (r *TransferRepo) NextSequence(storeID, yyyymmdd string) (int, error) {
	query := `
		SELECT COUNT(*) + 1 FROM transfers
		WHERE store_id = $1 AND number LIKE 'TR-' || $2 || '-%'`
	var n int
	if err := r.q.QueryRow(context.Background(), query, storeID, yyyymmdd).Scan(&n); err != nil {
		return 0, fmt.Errorf("next transfer sequence: %w", err)
	}
	return n, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var receivedBy, cancelledBy *string
	err := row.Scan(
		&t.ID, &t.Number, &t.StoreID, &t.SourceLocationID, &t.DestinationLocationID,
		&t.Status, &t.Notes, &t.TrackingNumber, &t.CreatedByUserID, &receivedBy, &cancelledBy,
		&t.ShippedAt, &t.ReceivedAt, &t.CancelledAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if receivedBy != nil {
		t.ReceivedByUserID = *receivedBy
	}
	if cancelledBy != nil {
		t.CancelledByUserID = *cancelledBy
	}
	return &t, nil
}

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

var _ repository.ConversionRecordRepository = (*ConversionRecordRepo)(nil)

// ConversionRecordRepo persistencia de conversiones sobre PostgreSQL.
// Solo inserta y lee; los registros son inmutables.
type ConversionRecordRepo struct {
	q Querier
}

// NewConversionRecordRepository construye el adaptador.
func NewConversionRecordRepository(q Querier) *ConversionRecordRepo {
	return &ConversionRecordRepo{q: q}
}

const conversionColumns = `id, store_id, product_id, variant_id, location_id,
		parent_quantity_consumed, variant_units_created, conversion_ratio,
		performed_by, created_at`

// Create inserta el registro de conversión.
func (r *ConversionRecordRepo) Create(rec *entity.ConversionRecord) error {
	query := `
		INSERT INTO conversion_records (` + conversionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.StoreID, rec.ProductID, rec.VariantID, rec.LocationID,
		rec.ParentQuantityConsumed, rec.VariantUnitsCreated, rec.ConversionRatio,
		rec.PerformedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create conversion record: %w", err)
	}
	return nil
}

// GetByID obtiene un registro de conversión.
func (r *ConversionRecordRepo) GetByID(id string) (*entity.ConversionRecord, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversion_records WHERE id = $1`
	var rec entity.ConversionRecord
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.StoreID, &rec.ProductID, &rec.VariantID, &rec.LocationID,
		&rec.ParentQuantityConsumed, &rec.VariantUnitsCreated, &rec.ConversionRatio,
		&rec.PerformedBy, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conversion record: %w", err)
	}
	return &rec, nil
}

// ListByProduct lista conversiones donde el producto fue padre o variante.
func (r *ConversionRecordRepo) ListByProduct(productID string, limit, offset int) ([]*entity.ConversionRecord, error) {
	query := `
		SELECT ` + conversionColumns + `
		FROM conversion_records
		WHERE product_id = $1 OR variant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversion records: %w", err)
	}
	defer rows.Close()
	var list []*entity.ConversionRecord
	for rows.Next() {
		var rec entity.ConversionRecord
		if err := rows.Scan(
			&rec.ID, &rec.StoreID, &rec.ProductID, &rec.VariantID, &rec.LocationID,
			&rec.ParentQuantityConsumed, &rec.VariantUnitsCreated, &rec.ConversionRatio,
			&rec.PerformedBy, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

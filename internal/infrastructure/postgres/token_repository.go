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

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo persistencia de tokens físicos sobre PostgreSQL.
type TokenRepo struct {
	q Querier
}

// NewTokenRepository construye el adaptador.
func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

const tokenColumns = `id, code, store_id, COALESCE(product_id::text, ''), COALESCE(current_location_id::text, ''),
		status, COALESCE(current_transfer_id::text, ''), total_scans, last_scanned_at, created_at, updated_at`

// Create inserta un token físico.
func (r *TokenRepo) Create(t *entity.PhysicalToken) error {
	query := `
		INSERT INTO physical_tokens
			(id, code, store_id, product_id, current_location_id, status,
			 current_transfer_id, total_scans, last_scanned_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, NULLIF($5, '')::uuid, $6,
			NULLIF($7, '')::uuid, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Code, t.StoreID, t.ProductID, t.CurrentLocationID, t.Status,
		t.CurrentTransferID, t.TotalScans, t.LastScannedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// GetByID obtiene un token por su ID.
func (r *TokenRepo) GetByID(id string) (*entity.PhysicalToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM physical_tokens WHERE id = $1`
	return r.getOne(query, "get token", id)
}

// GetByCode busca por código exacto dentro de la tienda.
func (r *TokenRepo) GetByCode(storeID, code string) (*entity.PhysicalToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM physical_tokens WHERE store_id = $1 AND code = $2`
	return r.getOne(query, "get token by code", storeID, code)
}

// GetByCodeNormalized busca ignorando mayúsculas y espacios en blanco.
// Fallback para lectores QR ruidosos cuando el match exacto falla.
func (r *TokenRepo) GetByCodeNormalized(storeID, normalizedCode string) (*entity.PhysicalToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM physical_tokens
		WHERE store_id = $1 AND UPPER(regexp_replace(code, '\s', '', 'g')) = $2`
	return r.getOne(query, "get token by normalized code", storeID, normalizedCode)
}

// GetForUpdate obtiene el token bloqueando la fila (SELECT FOR UPDATE).
func (r *TokenRepo) GetForUpdate(id string) (*entity.PhysicalToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM physical_tokens WHERE id = $1 FOR UPDATE`
	return r.getOne(query, "get token for update", id)
}

func (r *TokenRepo) getOne(query, op string, args ...any) (*entity.PhysicalToken, error) {
	row := r.q.QueryRow(context.Background(), query, args...)
	t, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Update persiste estado, ubicación y atadura a traslado del token.
func (r *TokenRepo) Update(t *entity.PhysicalToken) error {
	query := `
		UPDATE physical_tokens
		SET product_id = NULLIF($2, '')::uuid, current_location_id = NULLIF($3, '')::uuid,
			status = $4, current_transfer_id = NULLIF($5, '')::uuid, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.ProductID, t.CurrentLocationID, t.Status, t.CurrentTransferID,
	)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	return nil
}

// RecordScan incrementa el contador de escaneos y la marca de último escaneo.
func (r *TokenRepo) RecordScan(id string) error {
	query := `
		UPDATE physical_tokens
		SET total_scans = total_scans + 1, last_scanned_at = now(), updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("record token scan: %w", err)
	}
	return nil
}

// ListByTransfer lista los tokens atados a un traslado.
func (r *TokenRepo) ListByTransfer(transferID string) ([]*entity.PhysicalToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM physical_tokens WHERE current_transfer_id = $1 ORDER BY code`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list tokens by transfer: %w", err)
	}
	defer rows.Close()
	var list []*entity.PhysicalToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanToken(row pgx.Row) (*entity.PhysicalToken, error) {
	var t entity.PhysicalToken
	err := row.Scan(
		&t.ID, &t.Code, &t.StoreID, &t.ProductID, &t.CurrentLocationID,
		&t.Status, &t.CurrentTransferID, &t.TotalScans, &t.LastScannedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

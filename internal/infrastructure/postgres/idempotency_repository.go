package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo registro de claves de idempotencia sobre PostgreSQL.
// El INSERT con ON CONFLICT DO NOTHING es la puerta de exclusión mutua:
// solo un caller por clave consigue insertar la fila pending.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador.
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// InsertPending intenta reclamar la clave. Devuelve true si esta llamada
// insertó la fila (ganó la carrera), false si la clave ya existía.
func (r *IdempotencyRepo) InsertPending(rec *entity.IdempotencyRecord) (bool, error) {
	query := `
		INSERT INTO idempotency_keys (key, store_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO NOTHING`
	tag, err := r.q.Exec(context.Background(), query,
		rec.Key, rec.StoreID, entity.IdempotencyPending, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get obtiene el registro de una clave.
func (r *IdempotencyRepo) Get(key string) (*entity.IdempotencyRecord, error) {
	query := `
		SELECT key, store_id, status, result, created_at, updated_at
		FROM idempotency_keys WHERE key = $1`
	var rec entity.IdempotencyRecord
	var result []byte
	err := r.q.QueryRow(context.Background(), query, key).Scan(
		&rec.Key, &rec.StoreID, &rec.Status, &result, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	rec.Result = json.RawMessage(result)
	return &rec, nil
}

// MarkCompleted marca la clave como completada guardando el resultado
// serializado para futuros replays.
func (r *IdempotencyRepo) MarkCompleted(key string, result json.RawMessage) error {
	query := `
		UPDATE idempotency_keys
		SET status = $2, result = $3, updated_at = now()
		WHERE key = $1`
	_, err := r.q.Exec(context.Background(), query, key, entity.IdempotencyCompleted, []byte(result))
	if err != nil {
		return fmt.Errorf("mark idempotency completed: %w", err)
	}
	return nil
}

// MarkFailed marca la clave como fallida; un reintento podrá reclamarla.
func (r *IdempotencyRepo) MarkFailed(key string) error {
	query := `
		UPDATE idempotency_keys
		SET status = $2, result = NULL, updated_at = now()
		WHERE key = $1`
	_, err := r.q.Exec(context.Background(), query, key, entity.IdempotencyFailed)
	if err != nil {
		return fmt.Errorf("mark idempotency failed: %w", err)
	}
	return nil
}

// TakeOverFailed reclama una clave en estado failed para un reintento.
// Devuelve true si esta llamada la reclamó (la devuelve a pending).
func (r *IdempotencyRepo) TakeOverFailed(key string) (bool, error) {
	query := `
		UPDATE idempotency_keys
		SET status = $2, updated_at = now()
		WHERE key = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query, key, entity.IdempotencyPending, entity.IdempotencyFailed)
	if err != nil {
		return false, fmt.Errorf("take over failed idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TakeOverStale reclama una clave pending cuyo dueño no la actualiza desde
// hace más de olderThan. El UPDATE condicionado resuelve la carrera entre
// varios reclamantes: solo uno ve la fila todavía vencida.
func (r *IdempotencyRepo) TakeOverStale(key string, olderThan time.Duration) (bool, error) {
	query := `
		UPDATE idempotency_keys
		SET updated_at = now()
		WHERE key = $1 AND status = $2
		  AND updated_at < now() - make_interval(secs => $3)`
	tag, err := r.q.Exec(context.Background(), query, key, entity.IdempotencyPending, olderThan.Seconds())
	if err != nil {
		return false, fmt.Errorf("take over stale idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

package repository

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// IdempotencyRepository define el puerto del registro de idempotencia.
// InsertPending es la puerta de exclusión mutua entre reintentos: el primer
// writer gana; el concurrente observa el conflicto y relee el registro.
type IdempotencyRepository interface {
	// InsertPending inserta el registro en pending. Devuelve (false, nil) si la
	// clave ya existía (conflicto de unicidad), sin tratarlo como error.
	InsertPending(record *entity.IdempotencyRecord) (inserted bool, err error)
	Get(key string) (*entity.IdempotencyRecord, error)
	MarkCompleted(key string, result json.RawMessage) error
	MarkFailed(key string) error
	// TakeOverFailed vuelve a pending un registro failed para reintentarlo.
	// Devuelve false si otro caller lo tomó primero.
	TakeOverFailed(key string) (bool, error)
	// TakeOverStale reclama un registro pending sin actividad desde hace más
	// de olderThan, asumiendo que su dueño murió antes de marcarlo.
	TakeOverStale(key string, olderThan time.Duration) (bool, error)
}

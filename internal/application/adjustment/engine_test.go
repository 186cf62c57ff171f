package adjustment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCellRepo struct {
	cells map[string]*entity.StockCell
}

func cellKey(p, l string) string { return p + "|" + l }

func (r *memCellRepo) Get(p, l string) (*entity.StockCell, error) { return r.GetForUpdate(p, l) }

func (r *memCellRepo) GetForUpdate(p, l string) (*entity.StockCell, error) {
	if c, ok := r.cells[cellKey(p, l)]; ok {
		cp := *c
		return &cp, nil
	}
	return &entity.StockCell{ProductID: p, LocationID: l, Quantity: decimal.Zero}, nil
}

func (r *memCellRepo) Upsert(c *entity.StockCell) error {
	cp := *c
	r.cells[cellKey(c.ProductID, c.LocationID)] = &cp
	return nil
}

func (r *memCellRepo) ListByLocation(string, int, int) ([]*entity.StockCell, error) { return nil, nil }

func (r *memCellRepo) SumByProduct(p string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range r.cells {
		if c.ProductID == p {
			total = total.Add(c.Quantity)
		}
	}
	return total, nil
}

type memEntryRepo struct {
	entries []*entity.LedgerEntry
}

func (r *memEntryRepo) Append(e *entity.LedgerEntry) error {
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}
func (r *memEntryRepo) GetByID(string) (*entity.LedgerEntry, error) { return nil, domain.ErrNotFound }
func (r *memEntryRepo) ListByCell(string, string, *time.Time, *time.Time, int, int) ([]*entity.LedgerEntry, error) {
	return r.entries, nil
}
func (r *memEntryRepo) ListByReference(string, string) ([]*entity.LedgerEntry, error) {
	return nil, nil
}

type memTxRunner struct {
	cells   *memCellRepo
	entries *memEntryRepo
}

func (r *memTxRunner) Run(_ context.Context, fn func(repository.StockCellRepository, repository.LedgerEntryRepository) error) error {
	return fn(r.cells, r.entries)
}

type memIdemRepo struct {
	records map[string]*entity.IdempotencyRecord
}

func (r *memIdemRepo) InsertPending(rec *entity.IdempotencyRecord) (bool, error) {
	if _, ok := r.records[rec.Key]; ok {
		return false, nil
	}
	cp := *rec
	r.records[rec.Key] = &cp
	return true, nil
}

func (r *memIdemRepo) Get(key string) (*entity.IdempotencyRecord, error) {
	if rec, ok := r.records[key]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memIdemRepo) MarkCompleted(key string, result json.RawMessage) error {
	r.records[key].Status = entity.IdempotencyCompleted
	r.records[key].Result = result
	return nil
}

func (r *memIdemRepo) MarkFailed(key string) error {
	r.records[key].Status = entity.IdempotencyFailed
	return nil
}

func (r *memIdemRepo) TakeOverFailed(key string) (bool, error) {
	rec, ok := r.records[key]
	if !ok || rec.Status != entity.IdempotencyFailed {
		return false, nil
	}
	rec.Status = entity.IdempotencyPending
	return true, nil
}

func (r *memIdemRepo) TakeOverStale(key string, olderThan time.Duration) (bool, error) {
	rec, ok := r.records[key]
	if !ok || rec.Status != entity.IdempotencyPending {
		return false, nil
	}
	if time.Since(rec.UpdatedAt) <= olderThan {
		return false, nil
	}
	rec.UpdatedAt = time.Now()
	return true, nil
}

type memProductRepo struct {
	products map[string]*entity.Product
}

func (r *memProductRepo) Create(p *entity.Product) error { r.products[p.ID] = p; return nil }
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}
func (r *memProductRepo) GetBySKU(string, string) (*entity.Product, error) {
	return nil, domain.ErrNotFound
}
func (r *memProductRepo) Update(*entity.Product) error                            { return nil }
func (r *memProductRepo) ListByStore(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r *memProductRepo) ListVariants(string) ([]*entity.Product, error)          { return nil, nil }

type memLocationRepo struct {
	locations map[string]*entity.Location
}

func (r *memLocationRepo) Create(l *entity.Location) error { r.locations[l.ID] = l; return nil }
func (r *memLocationRepo) GetByID(id string) (*entity.Location, error) {
	if l, ok := r.locations[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}
func (r *memLocationRepo) Update(*entity.Location) error                            { return nil }
func (r *memLocationRepo) ListByStore(string, int, int) ([]*entity.Location, error) { return nil, nil }

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	engine  *Engine
	cells   *memCellRepo
	entries *memEntryRepo
	idem    *memIdemRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cells := &memCellRepo{cells: make(map[string]*entity.StockCell)}
	entries := &memEntryRepo{}
	idem := &memIdemRepo{records: make(map[string]*entity.IdempotencyRecord)}
	products := &memProductRepo{products: map[string]*entity.Product{
		"p1": {ID: "p1", StoreID: "s1", SKU: "SKU-1"},
	}}
	locations := &memLocationRepo{locations: map[string]*entity.Location{
		"l1": {ID: "l1", StoreID: "s1", Name: "bodega"},
	}}
	store := ledger.NewStore(&memTxRunner{cells: cells, entries: entries}, ledger.Policy{})
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return &fixture{
		engine:  NewEngine(store, idem, cells, products, locations, log),
		cells:   cells,
		entries: entries,
		idem:    idem,
	}
}

func req(key, mode, value string) entity.AdjustmentRequest {
	return entity.AdjustmentRequest{
		StoreID:        "s1",
		ProductID:      "p1",
		LocationID:     "l1",
		AdjustmentType: entity.AdjustTypeCountCorrection,
		Mode:           mode,
		Value:          decimal.RequireFromString(value),
		IdempotencyKey: key,
		PerformedBy:    "u1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_ReintentoAplicaExactamenteUnaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.Adjust(ctx, req("k1", entity.AdjustModeRelative, "10"))
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	// Mismo key: misma respuesta, sin segunda entrada ni segundo cambio.
	second, err := f.engine.Adjust(ctx, req("k1", entity.AdjustModeRelative, "10"))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.AdjustmentID, second.AdjustmentID)
	assert.True(t, first.QuantityAfter.Equal(second.QuantityAfter))

	cell, _ := f.cells.Get("p1", "l1")
	assert.Equal(t, "10", cell.Quantity.String())
	assert.Len(t, f.entries.entries, 1)
}

func TestAdjust_ClavesDistintasAplicanCadaUna(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Adjust(ctx, req("k1", entity.AdjustModeRelative, "10"))
	require.NoError(t, err)
	_, err = f.engine.Adjust(ctx, req("k2", entity.AdjustModeRelative, "10"))
	require.NoError(t, err)

	cell, _ := f.cells.Get("p1", "l1")
	assert.Equal(t, "20", cell.Quantity.String())
	assert.Len(t, f.entries.entries, 2)
}

func TestAdjust_ClavePendingBloqueaConcurrente(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	// Simula una petición en curso: el registro pending existe sin resultado.
	_, err := f.idem.InsertPending(&entity.IdempotencyRecord{
		Key: "k1", StoreID: "s1", Status: entity.IdempotencyPending,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	_, err = f.engine.Adjust(context.Background(), req("k1", entity.AdjustModeRelative, "10"))
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)
}

func TestAdjust_ClavePendingVencidaSeRetoma(t *testing.T) {
	f := newFixture(t)
	// Dueño muerto: la clave quedó en pending sin actividad hace 10 minutos.
	stale := time.Now().Add(-10 * time.Minute)
	_, err := f.idem.InsertPending(&entity.IdempotencyRecord{
		Key: "k1", StoreID: "s1", Status: entity.IdempotencyPending,
		CreatedAt: stale, UpdatedAt: stale,
	})
	require.NoError(t, err)

	result, err := f.engine.Adjust(context.Background(), req("k1", entity.AdjustModeRelative, "10"))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, "10", result.QuantityAfter.String())
	assert.Equal(t, entity.IdempotencyCompleted, f.idem.records["k1"].Status)
}

func TestAdjust_ClaveFailedSeReintenta(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	_, err := f.idem.InsertPending(&entity.IdempotencyRecord{
		Key: "k1", StoreID: "s1", Status: entity.IdempotencyPending,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, f.idem.MarkFailed("k1"))

	result, err := f.engine.Adjust(context.Background(), req("k1", entity.AdjustModeRelative, "10"))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, "10", result.QuantityAfter.String())
}

func TestAdjust_FalloDeAplicacionMarcaFailed(t *testing.T) {
	f := newFixture(t)

	// Deducir de una celda vacía falla por stock insuficiente.
	_, err := f.engine.Adjust(context.Background(), req("k1", entity.AdjustModeRelative, "-5"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := f.idem.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, entity.IdempotencyFailed, rec.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Modos y validación
// ──────────────────────────────────────────────────────────────────────────────

// Secuencia del mostrador: 100 inicial, venta de 30 por kardex, conteo físico
// encuentra 50, corrección absoluta a 55. El estado final es el conteo, no la
// aritmética de deltas.
func TestAdjust_SecuenciaRelativaYAbsoluta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Adjust(ctx, req("k1", entity.AdjustModeAbsolute, "100"))
	require.NoError(t, err)
	_, err = f.engine.Adjust(ctx, req("k2", entity.AdjustModeRelative, "-30"))
	require.NoError(t, err)
	result, err := f.engine.Adjust(ctx, req("k3", entity.AdjustModeAbsolute, "55"))
	require.NoError(t, err)

	assert.Equal(t, "70", result.QuantityBefore.String())
	assert.Equal(t, "55", result.QuantityAfter.String())
	assert.Equal(t, "55", result.CellTotal.String())

	cell, _ := f.cells.Get("p1", "l1")
	assert.Equal(t, "55", cell.Quantity.String())
}

func TestAdjust_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	casos := []struct {
		nombre string
		mut    func(r *entity.AdjustmentRequest)
		want   error
	}{
		{"sin clave de idempotencia", func(r *entity.AdjustmentRequest) { r.IdempotencyKey = "" }, domain.ErrInvalidInput},
		{"tipo de ajuste desconocido", func(r *entity.AdjustmentRequest) { r.AdjustmentType = "invento" }, domain.ErrInvalidInput},
		{"modo desconocido", func(r *entity.AdjustmentRequest) { r.Mode = "otro" }, domain.ErrInvalidInput},
		{"delta relativo cero", func(r *entity.AdjustmentRequest) { r.Value = decimal.Zero }, domain.ErrInvalidQuantity},
		{"producto inexistente", func(r *entity.AdjustmentRequest) { r.ProductID = "nope" }, domain.ErrNotFound},
		{"producto de otra tienda", func(r *entity.AdjustmentRequest) { r.StoreID = "s2" }, domain.ErrForbidden},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			r := req("kx", entity.AdjustModeRelative, "10")
			c.mut(&r)
			_, err := f.engine.Adjust(ctx, r)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestAdjust_AbsolutoNegativoRechazado(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Adjust(context.Background(), req("k1", entity.AdjustModeAbsolute, "-5"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

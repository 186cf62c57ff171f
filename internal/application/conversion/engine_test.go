package conversion

import (
	"context"
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

func cellKey(productID, locationID string) string { return productID + "|" + locationID }

func (r *memCellRepo) Get(productID, locationID string) (*entity.StockCell, error) {
	return r.GetForUpdate(productID, locationID)
}

func (r *memCellRepo) GetForUpdate(productID, locationID string) (*entity.StockCell, error) {
	if c, ok := r.cells[cellKey(productID, locationID)]; ok {
		cp := *c
		return &cp, nil
	}
	return &entity.StockCell{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
}

func (r *memCellRepo) Upsert(cell *entity.StockCell) error {
	cp := *cell
	r.cells[cellKey(cell.ProductID, cell.LocationID)] = &cp
	return nil
}

func (r *memCellRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockCell, error) {
	return nil, nil
}

func (r *memCellRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *memCellRepo) quantity(productID, locationID string) decimal.Decimal {
	if c, ok := r.cells[cellKey(productID, locationID)]; ok {
		return c.Quantity
	}
	return decimal.Zero
}

type memEntryRepo struct {
	entries []*entity.LedgerEntry
}

func (r *memEntryRepo) Append(e *entity.LedgerEntry) error {
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memEntryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	return nil, domain.ErrNotFound
}

func (r *memEntryRepo) ListByCell(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) ListByReference(refType, refID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memConvRepo struct {
	records []*entity.ConversionRecord
}

func (r *memConvRepo) Create(rec *entity.ConversionRecord) error {
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *memConvRepo) GetByID(id string) (*entity.ConversionRecord, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memConvRepo) ListByProduct(productID string, limit, offset int) ([]*entity.ConversionRecord, error) {
	return nil, nil
}

type memProductRepo struct {
	products map[string]*entity.Product
}

func (r *memProductRepo) Create(p *entity.Product) error { return nil }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) GetBySKU(storeID, sku string) (*entity.Product, error) {
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) Update(p *entity.Product) error { return nil }

func (r *memProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) ListVariants(parentID string) ([]*entity.Product, error) { return nil, nil }

type memTxRunner struct {
	cells   *memCellRepo
	entries *memEntryRepo
	convs   *memConvRepo
}

// RunConversion imita el rollback: si fn falla, restaura el estado previo.
func (r *memTxRunner) RunConversion(_ context.Context, fn func(
	repository.StockCellRepository,
	repository.LedgerEntryRepository,
	repository.ConversionRecordRepository,
) error) error {
	prevCells := make(map[string]*entity.StockCell, len(r.cells.cells))
	for k, c := range r.cells.cells {
		cp := *c
		prevCells[k] = &cp
	}
	prevEntries := append([]*entity.LedgerEntry(nil), r.entries.entries...)
	prevRecords := append([]*entity.ConversionRecord(nil), r.convs.records...)

	if err := fn(r.cells, r.entries, r.convs); err != nil {
		r.cells.cells = prevCells
		r.entries.entries = prevEntries
		r.convs.records = prevRecords
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	engine  *Engine
	cells   *memCellRepo
	entries *memEntryRepo
	convs   *memConvRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ratio := decimal.NewFromInt(250)
	cells := &memCellRepo{cells: make(map[string]*entity.StockCell)}
	entries := &memEntryRepo{}
	convs := &memConvRepo{}
	products := &memProductRepo{products: map[string]*entity.Product{
		"granel": {ID: "granel", StoreID: "s1", SKU: "CAFE-G", Name: "Café a granel"},
		"bolsa":  {ID: "bolsa", StoreID: "s1", SKU: "CAFE-250", Name: "Café bolsa 250g", ParentID: "granel", ConversionRatio: &ratio},
		"azucar": {ID: "azucar", StoreID: "s1", SKU: "AZU-G", Name: "Azúcar a granel"},
	}}
	runner := &memTxRunner{cells: cells, entries: entries, convs: convs}
	store := ledger.NewStore(nil, ledger.Policy{})
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return &fixture{
		engine:  NewEngine(runner, store, products, log),
		cells:   cells,
		entries: entries,
		convs:   convs,
	}
}

func (f *fixture) seedCell(productID, locationID string, qty int64) {
	f.cells.cells[cellKey(productID, locationID)] = &entity.StockCell{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(qty),
	}
}

func input(units, ratio int64) Input {
	return Input{
		StoreID:         "s1",
		ProductID:       "granel",
		VariantID:       "bolsa",
		LocationID:      "l1",
		UnitsToCreate:   decimal.NewFromInt(units),
		ConversionRatio: decimal.NewFromInt(ratio),
		PerformedBy:     "u1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_DecrementaPadreYCreaVariante(t *testing.T) {
	f := newFixture(t)
	f.seedCell("granel", "l1", 1000)

	// 3 bolsas de 250g consumen 750g del granel.
	res, err := f.engine.Convert(context.Background(), input(3, 250))
	require.NoError(t, err)

	assert.True(t, res.ParentQuantityConsumed.Equal(decimal.NewFromInt(750)))
	assert.True(t, res.ParentRemaining.Equal(decimal.NewFromInt(250)))
	assert.True(t, res.VariantTotal.Equal(decimal.NewFromInt(3)))
	assert.True(t, f.cells.quantity("granel", "l1").Equal(decimal.NewFromInt(250)))
	assert.True(t, f.cells.quantity("bolsa", "l1").Equal(decimal.NewFromInt(3)))

	// Dos entradas de kardex enlazadas por el mismo ReferenceID, más el registro.
	refs, _ := f.entries.ListByReference(entity.RefTypeConversion, res.ConversionID)
	require.Len(t, refs, 2)
	assert.Equal(t, entity.TxTypeConversionOut, refs[0].TransactionType)
	assert.Equal(t, entity.TxTypeConversionIn, refs[1].TransactionType)
	require.Len(t, f.convs.records, 1)
	assert.Equal(t, res.ConversionID, f.convs.records[0].ID)
}

func TestConvert_CeldaDeVarianteSeMaterializaEnCero(t *testing.T) {
	f := newFixture(t)
	f.seedCell("granel", "l1", 500)

	res, err := f.engine.Convert(context.Background(), input(2, 250))
	require.NoError(t, err)

	// La variante no tenía celda: nace en 0 y termina en 2.
	assert.True(t, res.VariantTotal.Equal(decimal.NewFromInt(2)))
	refs, _ := f.entries.ListByReference(entity.RefTypeConversion, res.ConversionID)
	assert.True(t, refs[1].QuantityBefore.IsZero())
}

func TestConvert_StockInsuficienteReportaYNoMuta(t *testing.T) {
	f := newFixture(t)
	f.seedCell("granel", "l1", 400)

	_, err := f.engine.Convert(context.Background(), input(2, 250))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "500", stockErr.Required.String())
	assert.Equal(t, "400", stockErr.Available.String())

	// Nada cambió: ni celdas, ni kardex, ni registro.
	assert.True(t, f.cells.quantity("granel", "l1").Equal(decimal.NewFromInt(400)))
	assert.True(t, f.cells.quantity("bolsa", "l1").IsZero())
	assert.Empty(t, f.entries.entries)
	assert.Empty(t, f.convs.records)
}

func TestConvert_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	f.seedCell("granel", "l1", 1000)

	casos := []struct {
		nombre string
		mutar  func(*Input)
		want   error
	}{
		{"ratio cero", func(in *Input) { in.ConversionRatio = decimal.Zero }, domain.ErrInvalidConversionRatio},
		{"ratio negativo", func(in *Input) { in.ConversionRatio = decimal.NewFromInt(-1) }, domain.ErrInvalidConversionRatio},
		{"unidades cero", func(in *Input) { in.UnitsToCreate = decimal.Zero }, domain.ErrInvalidQuantity},
		{"padre igual a variante", func(in *Input) { in.VariantID = in.ProductID }, domain.ErrInvalidInput},
		{"padre inexistente", func(in *Input) { in.ProductID = "nope" }, domain.ErrNotFound},
		{"variante de otro padre", func(in *Input) { in.ProductID = "azucar" }, domain.ErrInvalidInput},
		{"tienda ajena", func(in *Input) { in.StoreID = "s2" }, domain.ErrForbidden},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			in := input(1, 250)
			tc.mutar(&in)
			_, err := f.engine.Convert(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

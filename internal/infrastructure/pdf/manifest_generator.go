// Package pdf implementa la generación del documento de despacho de un
// traslado (manifiesto) con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Traslado + Estado  │  Fecha de despacho         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RUTA: Origen → Destino  |  Guía transportadora             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Seguimiento                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOKENS: un QR por token físico atado, con su código        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ManifestGenerator genera el manifiesto de despacho usando Maroto v2.
type ManifestGenerator struct{}

// NewManifestGenerator construye el generador.
func NewManifestGenerator() *ManifestGenerator { return &ManifestGenerator{} }

// Generate genera el PDF del manifiesto y devuelve sus bytes.
func (g *ManifestGenerator) Generate(t *entity.Transfer, tokens []*entity.PhysicalToken) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Manifiesto de traslado "+t.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(routeRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(t.Items) {
		m.AddRows(r)
	}

	if len(tokens) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		for _, r := range tokenRows(tokens) {
			m.AddRows(r)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar manifiesto: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: número y estado (izq), fecha de despacho (der).
func headerRow(t *entity.Transfer) core.Row {
	fecha := t.ShippedAt.Format("02/01/2006 15:04")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("MANIFIESTO DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(t.Number, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 7,
			}),
			text.New("Estado: "+t.Status, props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Despachado: "+fecha, props.Text{
				Size: 9, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

// routeRow: origen → destino y guía de la transportadora.
func routeRow(t *entity.Transfer) core.Row {
	guia := t.TrackingNumber
	if guia == "" {
		guia = "sin guía"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("RUTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Origen: %s   |   Destino: %s   |   Guía: %s",
				t.SourceLocationID, t.DestinationLocationID, guia,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 7, align.Left),
		h("Seguimiento", 3, align.Center),
	)
}

// itemRows: una fila por línea del traslado.
func itemRows(items []entity.TransferItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		seguimiento := "kardex"
		if it.Tracking() == entity.TrackingToken {
			seguimiento = "token físico"
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(7).Add(text.New(
				it.ProductID,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				seguimiento,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
		))
	}
	return result
}

// tokenRows: QR por token atado, con el código legible al lado.
func tokenRows(tokens []*entity.PhysicalToken) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TOKENS FÍSICOS EN ESTE DESPACHO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, tok := range tokens {
		rows = append(rows, row.New(35).Add(
			col.New(3).Add(code.NewQr(tok.Code, props.Rect{
				Percent: 90,
				Center:  true,
			})),
			col.New(9).Add(
				text.New(tok.Code, props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 10, Left: 3,
				}),
				text.New("Escanear al recibir para resolver el traslado.", props.Text{
					Size: 8, Top: 18, Left: 3, Color: colorGray,
				}),
			),
		))
	}
	return rows
}

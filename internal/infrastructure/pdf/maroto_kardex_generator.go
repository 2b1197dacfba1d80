// Package pdf implementa la representación gráfica del kardex de un insumo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del insumo │ Sucursal │ Fecha del reporte   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Stock actual / Mínimo / Unidad / Costo unitario    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Ref | Cant | Saldo ant. | Saldo nuevo │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONCILIACIÓN: Σ movimientos / esperado / drift              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appinventory.KardexPDFGenerator = (*MarotoKardexGenerator)(nil)

// MarotoKardexGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type MarotoKardexGenerator struct{}

// NewMarotoKardexGenerator construye el generador.
func NewMarotoKardexGenerator() *MarotoKardexGenerator { return &MarotoKardexGenerator{} }

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoKardexGenerator) GenerateKardexPDF(
	_ context.Context,
	item *entity.InventoryItem,
	movements []*entity.MovementRecord,
	report *appinventory.ReconciliationReport,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex de insumo", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(item))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(item))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, mov := range movements {
		m.AddRows(movementRow(mov))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(reconciliationRows(report)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generar PDF kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(item *entity.InventoryItem) core.Row {
	return row.New(12).Add(
		col.New(7).Add(
			text.New(item.Name, props.Text{Size: 14, Style: fontstyle.Bold, Color: colorPrimary}),
			text.New("Kardex de insumo", props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Sucursal: "+item.BranchID, props.Text{Size: 8, Align: align.Right}),
			text.New("Generado: "+time.Now().Format("2006-01-02 15:04"), props.Text{Size: 8, Top: 4, Align: align.Right, Color: colorGray}),
		),
	)
}

func summaryRow(item *entity.InventoryItem) core.Row {
	return row.New(10).Add(
		summaryCol("Stock actual", item.CurrentStock.String()+" "+item.Unit),
		summaryCol("Stock mínimo", item.MinimumStock.String()+" "+item.Unit),
		summaryCol("Costo unitario", "$"+item.UnitCost.StringFixed(2)),
		summaryCol("Versión", fmt.Sprintf("%d", item.Version)),
	)
}

func summaryCol(label, value string) core.Col {
	return col.New(3).Add(
		text.New(label, props.Text{Size: 7, Color: colorGray}),
		text.New(value, props.Text{Size: 10, Top: 4, Style: fontstyle.Bold}),
	)
}

func tableHeaderRow() core.Row {
	header := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary}
	return row.New(7).Add(
		col.New(2).Add(text.New("Fecha", header)),
		col.New(2).Add(text.New("Tipo", header)),
		col.New(3).Add(text.New("Referencia", header)),
		col.New(2).Add(text.New("Cantidad", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
		col.New(3).Add(text.New("Saldo ant. → nuevo", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
	)
}

func movementRow(mov *entity.MovementRecord) core.Row {
	qtyColor := colorGray
	if mov.Quantity.IsNegative() {
		qtyColor = colorAlert
	}
	ref := mov.ReferenceType
	if mov.ReferenceID != "" {
		ref += " " + mov.ReferenceID
	}
	return row.New(6).Add(
		col.New(2).Add(text.New(mov.CreatedAt.Format("2006-01-02 15:04"), props.Text{Size: 7})),
		col.New(2).Add(text.New(mov.Type, props.Text{Size: 7})),
		col.New(3).Add(text.New(ref, props.Text{Size: 7, Color: colorGray})),
		col.New(2).Add(text.New(mov.Quantity.String(), props.Text{Size: 7, Align: align.Right, Color: qtyColor})),
		col.New(3).Add(text.New(mov.PreviousStock.String()+" → "+mov.NewStock.String(), props.Text{Size: 7, Align: align.Right})),
	)
}

func reconciliationRows(report *appinventory.ReconciliationReport) []core.Row {
	status := "CONCILIADO"
	statusColor := colorPrimary
	if !report.Consistent {
		status = "DRIFT DETECTADO: " + report.Drift.String()
		statusColor = colorAlert
	}
	return []core.Row{
		row.New(8).Add(
			col.New(6).Add(
				text.New("Σ movimientos: "+report.MovementTotal.String(), props.Text{Size: 8}),
				text.New("Stock esperado: "+report.ExpectedStock.String(), props.Text{Size: 8, Top: 4}),
			),
			col.New(6).Add(
				text.New(status, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Color: statusColor}),
			),
		),
	}
}

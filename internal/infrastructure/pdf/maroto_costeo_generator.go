// Package pdf genera el resumen de costeo en PDF: metadatos de la factura
// procesada y la tabla de precios calculados, para imprimir o archivar junto
// al libro xlsx.
package pdf

import (
	"fmt"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// CosteoPDFGenerator implementa costeo.PDFGenerator usando Maroto v2.
type CosteoPDFGenerator struct{}

// NewCosteoPDFGenerator construye el generador.
func NewCosteoPDFGenerator() *CosteoPDFGenerator { return &CosteoPDFGenerator{} }

// GenerateCosteoPDF genera el PDF y devuelve sus bytes.
func (g *CosteoPDFGenerator) GenerateCosteoPDF(header *entity.InvoiceHeader, rows []entity.PriceRow) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de costeo", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRow(header))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(metadataRows(header)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	for _, r := range rows {
		m.AddRows(detailRow(r))
	}
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generar PDF de costeo: %w", err)
	}
	return doc.GetBytes(), nil
}

func titleRow(header *entity.InvoiceHeader) core.Row {
	titulo := "Resumen de costeo"
	if header.InvoiceID != "" {
		titulo = "Resumen de costeo — Factura " + header.InvoiceID
	}
	return row.New(10).Add(
		text.NewCol(12, titulo, props.Text{Size: 14, Style: fontstyle.Bold, Color: colorPrimary}),
	)
}

func metadataRows(header *entity.InvoiceHeader) []core.Row {
	meta := [][2]string{
		{"Proveedor", header.SupplierName},
		{"NIT", header.SupplierID},
		{"Fecha factura", header.IssueDate},
		{"Moneda", header.Currency},
		{"Total factura", header.Total.StringFixed(2)},
	}
	out := make([]core.Row, 0, len(meta))
	for _, kv := range meta {
		if kv[1] == "" {
			continue
		}
		out = append(out, row.New(5).Add(
			text.NewCol(3, kv[0], props.Text{Size: 8, Style: fontstyle.Bold, Color: colorGray}),
			text.NewCol(9, kv[1], props.Text{Size: 8}),
		))
	}
	return out
}

func tableHeaderRow() core.Row {
	style := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary}
	return row.New(7).Add(
		text.NewCol(5, "Producto", style),
		text.NewCol(1, "Cant", styleRight(style)),
		text.NewCol(2, "Costo neto", styleRight(style)),
		text.NewCol(2, "Venta neta", styleRight(style)),
		text.NewCol(2, "Venta bruta", styleRight(style)),
	)
}

func detailRow(r entity.PriceRow) core.Row {
	style := props.Text{Size: 8}
	return row.New(5).Add(
		text.NewCol(5, r.Producto, style),
		text.NewCol(1, r.Cantidad.String(), styleRight(style)),
		text.NewCol(2, r.CostoNetoUnit.StringFixed(2), styleRight(style)),
		text.NewCol(2, r.VentaNetaUnit.StringFixed(2), styleRight(style)),
		text.NewCol(2, r.VentaBrutaUnit.StringFixed(2), styleRight(style)),
	)
}

func totalsRow(rows []entity.PriceRow) core.Row {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.CostoNetoUnit.Mul(r.Cantidad))
	}
	return row.New(8).Add(
		col.New(7),
		text.NewCol(3, "Total neto compra", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, total.Round(2).StringFixed(2), styleRight(props.Text{Size: 9, Style: fontstyle.Bold})),
	)
}

func styleRight(base props.Text) props.Text {
	base.Align = align.Right
	return base
}

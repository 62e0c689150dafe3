package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// SheetName hoja de productos por defecto.
const SheetName = "Productos"

var columnHeaders = []string{
	"Linea factura",
	"Producto",
	"Cantidad",
	"IVA %",
	"Costo bruto unitario",
	"Costo neto unitario",
	"Venta bruta unitario",
	"Venta neto unitario",
	"Valor total Neto compra",
	"Descuento %",
}

// BuildWorkbook arma el libro: hoja de productos con las columnas calculadas
// como fórmulas y hoja de encabezado con los metadatos de la factura.
func BuildWorkbook(rows []entity.PriceRow, header *entity.InvoiceHeader, cfg entity.MarkupConfig) (*excelize.File, error) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	if err := wb.SetSheetName(sheet, SheetName); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}
	sheet = SheetName

	for col, title := range columnHeaders {
		ref, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := wb.SetCellValue(sheet, ref, title); err != nil {
			return nil, fmt.Errorf("escribir encabezado: %w", err)
		}
	}

	for i, row := range rows {
		excelRow := i + 2
		qtyCell := fmt.Sprintf("C%d", excelRow)
		ivaCell := fmt.Sprintf("D%d", excelRow)
		brutoCell := fmt.Sprintf("E%d", excelRow)
		netCell := fmt.Sprintf("F%d", excelRow)
		ventaNetaCell := fmt.Sprintf("H%d", excelRow)
		descCell := fmt.Sprintf("J%d", excelRow)

		wb.SetCellValue(sheet, fmt.Sprintf("A%d", excelRow), row.SourceLineID)
		wb.SetCellValue(sheet, fmt.Sprintf("B%d", excelRow), row.Producto)
		wb.SetCellValue(sheet, qtyCell, row.Cantidad.InexactFloat64())
		wb.SetCellValue(sheet, ivaCell, row.TaxPercent.InexactFloat64())
		wb.SetCellValue(sheet, brutoCell, row.CostoBrutoUnit.InexactFloat64())
		wb.SetCellValue(sheet, descCell, row.DiscountPercent.InexactFloat64())

		if err := wb.SetCellFormula(sheet, netCell, NetCostFormula(brutoCell, descCell, ivaCell)); err != nil {
			return nil, fmt.Errorf("fórmula costo neto fila %d: %w", excelRow, err)
		}
		if err := wb.SetCellFormula(sheet, ventaNetaCell, SaleNetFormula(netCell, row.MarkupPercent, cfg)); err != nil {
			return nil, fmt.Errorf("fórmula venta neta fila %d: %w", excelRow, err)
		}
		if err := wb.SetCellFormula(sheet, fmt.Sprintf("G%d", excelRow), SaleGrossFormula(ventaNetaCell, ivaCell)); err != nil {
			return nil, fmt.Errorf("fórmula venta bruta fila %d: %w", excelRow, err)
		}
		if err := wb.SetCellFormula(sheet, fmt.Sprintf("I%d", excelRow), TotalNetFormula(netCell, qtyCell)); err != nil {
			return nil, fmt.Errorf("fórmula total neto fila %d: %w", excelRow, err)
		}
	}

	if err := applyFormats(wb, sheet, len(rows)); err != nil {
		return nil, err
	}
	if header != nil {
		if err := addHeaderSheet(wb, header); err != nil {
			return nil, err
		}
	}
	return wb, nil
}

func applyFormats(wb *excelize.File, sheet string, numRows int) error {
	for col, title := range columnHeaders {
		name, _ := excelize.ColumnNumberToName(col + 1)
		width := float64(len(title) + 2)
		if width < 18 {
			width = 18
		}
		if err := wb.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("ancho de columna %s: %w", name, err)
		}
	}
	if numRows == 0 {
		return nil
	}
	moneyFmt := "#,##0.00"
	percentFmt := "0.00"
	moneyStyle, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("estilo moneda: %w", err)
	}
	percentStyle, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt})
	if err != nil {
		return fmt.Errorf("estilo porcentaje: %w", err)
	}
	last := numRows + 1
	if err := wb.SetCellStyle(sheet, "C2", fmt.Sprintf("D%d", last), percentStyle); err != nil {
		return err
	}
	if err := wb.SetCellStyle(sheet, "E2", fmt.Sprintf("I%d", last), moneyStyle); err != nil {
		return err
	}
	return wb.SetCellStyle(sheet, "J2", fmt.Sprintf("J%d", last), percentStyle)
}

func addHeaderSheet(wb *excelize.File, header *entity.InvoiceHeader) error {
	const sheet = "Encabezado"
	if _, err := wb.NewSheet(sheet); err != nil {
		return fmt.Errorf("crear hoja de encabezado: %w", err)
	}
	entries := []struct {
		label string
		value interface{}
	}{
		{"Campo", "Valor"},
		{"Proveedor", header.SupplierName},
		{"NIT Proveedor", header.SupplierID},
		{"Cliente", header.CustomerName},
		{"Factura", header.InvoiceID},
		{"CUFE", header.CUFE},
		{"Fecha factura", header.IssueDate},
		{"Fecha vencimiento", header.DueDate},
		{"Moneda", header.Currency},
		{"Subtotal", header.Subtotal.InexactFloat64()},
		{"Impuestos", header.TaxTotal.InexactFloat64()},
		{"Total con impuestos", header.TotalTaxInclusive.InexactFloat64()},
		{"Total factura", header.Total.InexactFloat64()},
	}
	for i, e := range entries {
		row := i + 1
		if err := wb.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.label); err != nil {
			return err
		}
		if err := wb.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.value); err != nil {
			return err
		}
	}
	if err := wb.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	return wb.SetColWidth(sheet, "B", "B", 60)
}

// WriteWorkbook serializa el libro al writer dado.
func WriteWorkbook(rows []entity.PriceRow, header *entity.InvoiceHeader, cfg entity.MarkupConfig, w io.Writer) error {
	wb, err := BuildWorkbook(rows, header, cfg)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("escribir xlsx: %w", err)
	}
	return nil
}

// Renderer implementa costeo.WorkbookWriter.
type Renderer struct{}

// NewRenderer construye el adaptador.
func NewRenderer() *Renderer { return &Renderer{} }

// WriteWorkbook delega en la función del paquete.
func (Renderer) WriteWorkbook(rows []entity.PriceRow, header *entity.InvoiceHeader, cfg entity.MarkupConfig, w io.Writer) error {
	return WriteWorkbook(rows, header, cfg, w)
}

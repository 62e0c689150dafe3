package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// LoginRequest entrada para login del operador.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string `json:"token"`
}

// FacturaResponse cabecera de la factura procesada.
type FacturaResponse struct {
	InvoiceID    string `json:"invoice_id,omitempty"`
	CUFE         string `json:"cufe,omitempty"`
	Proveedor    string `json:"proveedor"`
	ProveedorNIT string `json:"proveedor_nit,omitempty"`
	Cliente      string `json:"cliente,omitempty"`
	FechaEmision string `json:"fecha_emision,omitempty"`
	Moneda       string `json:"moneda,omitempty"`
	Total        string `json:"total"`
}

// PrecioResponse una fila de precios calculada.
type PrecioResponse struct {
	Producto        string  `json:"producto"`
	Cantidad        string  `json:"cantidad"`
	IvaPercent      string  `json:"iva_percent"`
	DescuentoPct    string  `json:"descuento_percent"`
	CostoBrutoUnit  string  `json:"costo_bruto_unit"`
	CostoNetoUnit   string  `json:"costo_neto_unit"`
	VentaBrutaUnit  string  `json:"venta_bruta_unit"`
	VentaNetaUnit   string  `json:"venta_neta_unit"`
	UtilidadPercent *string `json:"utilidad_percent,omitempty"`
	SourceLineID    string  `json:"source_line_id,omitempty"`
}

// CosteoResponse resultado completo de procesar una factura.
type CosteoResponse struct {
	ProcesamientoID string           `json:"procesamiento_id,omitempty"`
	Factura         FacturaResponse  `json:"factura"`
	Precios         []PrecioResponse `json:"precios"`
	TienePDFAdjunto bool             `json:"tiene_pdf_adjunto"`
}

// ProcesamientoResponse elemento del historial.
type ProcesamientoResponse struct {
	ID            string    `json:"id"`
	InvoiceID     string    `json:"invoice_id,omitempty"`
	Proveedor     string    `json:"proveedor"`
	TotalFactura  string    `json:"total_factura"`
	NumLineas     int       `json:"num_lineas"`
	ArchivoOrigen string    `json:"archivo_origen"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProcesamientoDetalleResponse cabecera más líneas persistidas.
type ProcesamientoDetalleResponse struct {
	ProcesamientoResponse
	CUFE         string           `json:"cufe,omitempty"`
	ProveedorNIT string           `json:"proveedor_nit,omitempty"`
	Cliente      string           `json:"cliente,omitempty"`
	Moneda       string           `json:"moneda,omitempty"`
	FechaEmision string           `json:"fecha_emision,omitempty"`
	Precios      []PrecioResponse `json:"precios"`
}

// ToFacturaResponse proyecta la cabecera de dominio al DTO.
func ToFacturaResponse(h *entity.InvoiceHeader) FacturaResponse {
	return FacturaResponse{
		InvoiceID:    h.InvoiceID,
		CUFE:         h.CUFE,
		Proveedor:    h.SupplierName,
		ProveedorNIT: h.SupplierID,
		Cliente:      h.CustomerName,
		FechaEmision: h.IssueDate,
		Moneda:       h.Currency,
		Total:        h.Total.StringFixed(2),
	}
}

// ToPrecioResponse proyecta una fila de precios al DTO.
func ToPrecioResponse(r entity.PriceRow) PrecioResponse {
	out := PrecioResponse{
		Producto:       r.Producto,
		Cantidad:       r.Cantidad.String(),
		IvaPercent:     r.TaxPercent.String(),
		DescuentoPct:   r.DiscountPercent.String(),
		CostoBrutoUnit: r.CostoBrutoUnit.StringFixed(2),
		CostoNetoUnit:  r.CostoNetoUnit.StringFixed(2),
		VentaBrutaUnit: r.VentaBrutaUnit.StringFixed(2),
		VentaNetaUnit:  r.VentaNetaUnit.StringFixed(2),
		SourceLineID:   r.SourceLineID,
	}
	if r.MarkupPercent != nil {
		out.UtilidadPercent = decimalPtrString(r.MarkupPercent)
	}
	return out
}

// ToPrecioResponses proyecta todas las filas preservando el orden.
func ToPrecioResponses(rows []entity.PriceRow) []PrecioResponse {
	out := make([]PrecioResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToPrecioResponse(r))
	}
	return out
}

func decimalPtrString(d *decimal.Decimal) *string {
	s := d.String()
	return &s
}

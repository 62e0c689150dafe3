package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Procesamiento registro histórico de un costeo ejecutado vía API.
type Procesamiento struct {
	ID            string
	InvoiceID     string
	CUFE          string
	Proveedor     string
	ProveedorNIT  string
	Cliente       string
	Moneda        string
	FechaEmision  string
	TotalFactura  decimal.Decimal
	NumLineas     int
	ArchivoOrigen string
	CreatedAt     time.Time
}

// ProcesamientoLinea una fila de precios persistida junto con su corrida.
// Orden es la posición de la línea en la factura de origen; las consultas
// devuelven las líneas en ese orden.
type ProcesamientoLinea struct {
	ID               string
	ProcesamientoID  string
	Orden            int
	Producto         string
	Cantidad         decimal.Decimal
	IvaPercent       decimal.Decimal
	DescuentoPercent decimal.Decimal
	CostoBrutoUnit   decimal.Decimal
	CostoNetoUnit    decimal.Decimal
	VentaBrutaUnit   decimal.Decimal
	VentaNetaUnit    decimal.Decimal
	UtilidadPercent  *decimal.Decimal
	SourceLineID     string
}

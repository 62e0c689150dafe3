package entity

import "github.com/shopspring/decimal"

// InvoiceLine una línea de compra de la factura embebida, ya normalizada.
// BaseAmount es el monto pre-descuento inferido (escala de línea completa) y
// DiscountPercent el descuento efectivo derivado; nunca se dejan valores
// crudos sin validar de la fuente.
type InvoiceLine struct {
	LineID              string          // cbc:ID de la línea; puede venir vacío
	Description         string          // descripción del producto; también es la llave de matching de reglas
	Quantity            decimal.Decimal // puede ser cero o negativa, no asumir positividad
	LineExtensionAmount decimal.Decimal // total neto declarado (post-descuento, pre-IVA)
	TaxPercent          decimal.Decimal // 0 si el XML no lo trae
	BaseAmount          decimal.Decimal // monto pre-descuento inferido
	DiscountPercent     decimal.Decimal // inferido, nunca negativo
}

// InvoiceHeader resumen a nivel de documento de la factura embebida.
// Las fechas se conservan como texto tal cual vienen en el XML (YYYY-MM-DD).
type InvoiceHeader struct {
	SupplierName      string
	SupplierID        string
	CustomerName      string
	InvoiceID         string
	CUFE              string
	IssueDate         string
	DueDate           string
	Currency          string
	Subtotal          decimal.Decimal
	TaxTotal          decimal.Decimal
	Total             decimal.Decimal
	TotalTaxInclusive decimal.Decimal
}

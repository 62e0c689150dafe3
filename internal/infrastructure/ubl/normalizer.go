package ubl

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

var cien = decimal.NewFromInt(100)

// parseDecimalOrZero política de lenidad numérica del normalizador: cualquier
// texto que no parsee como decimal degrada a cero, nunca falla. Los XML de
// los emisores traen malformaciones menores con frecuencia.
func parseDecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// allowanceFields campos crudos acumulados de los cac:AllowanceCharge de una
// línea, excluyendo los cargos aditivos (ChargeIndicator = true).
type allowanceFields struct {
	multiplierSum  decimal.Decimal
	amountSum      decimal.Decimal
	baseCandidates []decimal.Decimal
}

func collectAllowances(node *etree.Element) allowanceFields {
	var f allowanceFields
	for _, allowance := range childrenByTag(node, "AllowanceCharge") {
		indicator := textAtPath(allowance, "ChargeIndicator")
		if strings.EqualFold(indicator, "true") {
			continue
		}
		if v := textAtPath(allowance, "MultiplierFactorNumeric"); v != "" {
			f.multiplierSum = f.multiplierSum.Add(parseDecimalOrZero(v))
		}
		if v := textAtPath(allowance, "Amount"); v != "" {
			f.amountSum = f.amountSum.Add(parseDecimalOrZero(v))
		}
		if v := textAtPath(allowance, "BaseAmount"); v != "" {
			f.baseCandidates = append(f.baseCandidates, parseDecimalOrZero(v))
		}
	}
	return f
}

// baseStrategy una estrategia de inferencia del monto base pre-descuento.
// Se evalúan en orden y gana la primera aplicable.
type baseStrategy struct {
	name  string
	apply func(f allowanceFields, qty, net decimal.Decimal) (decimal.Decimal, bool)
}

var baseStrategies = []baseStrategy{
	{
		// BaseAmount explícito. Si el valor crudo es menor al neto declarado
		// pero crudo*cantidad lo cubre, venía en escala unitaria: reescalar.
		name: "base-explicita",
		apply: func(f allowanceFields, qty, net decimal.Decimal) (decimal.Decimal, bool) {
			if len(f.baseCandidates) == 0 {
				return decimal.Zero, false
			}
			raw := f.baseCandidates[0]
			if qty.IsPositive() && raw.LessThan(net) && raw.Mul(qty).GreaterThanOrEqual(net) {
				return raw.Mul(qty), true
			}
			return raw, true
		},
	},
	{
		// Suma de multiplicadores de descuento (0, 100): despejar el base
		// desde el neto declarado.
		name: "multiplicador",
		apply: func(f allowanceFields, _, net decimal.Decimal) (decimal.Decimal, bool) {
			if !f.multiplierSum.IsPositive() || !net.IsPositive() || f.multiplierSum.GreaterThanOrEqual(cien) {
				return decimal.Zero, false
			}
			factor := decimal.NewFromInt(1).Sub(f.multiplierSum.Div(cien))
			return net.Div(factor), true
		},
	},
	{
		// Montos de descuento presentes: base = neto + descuentos.
		name: "monto-descuento",
		apply: func(f allowanceFields, _, net decimal.Decimal) (decimal.Decimal, bool) {
			if f.amountSum.IsZero() {
				return decimal.Zero, false
			}
			return net.Add(f.amountSum), true
		},
	},
	{
		// Sin información de descuento: el neto declarado es el base.
		name: "neto-declarado",
		apply: func(_ allowanceFields, _, net decimal.Decimal) (decimal.Decimal, bool) {
			return net, true
		},
	},
}

func inferBaseAmount(f allowanceFields, qty, net decimal.Decimal) decimal.Decimal {
	for _, s := range baseStrategies {
		if base, ok := s.apply(f, qty, net); ok {
			return base
		}
	}
	return net
}

// discountStrategy derivación del descuento efectivo, también en cadena de
// prioridad. El resultado se trunca en 0 si sale negativo.
type discountStrategy struct {
	name  string
	apply func(f allowanceFields, base, net decimal.Decimal) (decimal.Decimal, bool)
}

var discountStrategies = []discountStrategy{
	{
		name: "ratio-base-neto",
		apply: func(_ allowanceFields, base, net decimal.Decimal) (decimal.Decimal, bool) {
			if !base.IsPositive() || !net.IsPositive() || net.GreaterThan(base) {
				return decimal.Zero, false
			}
			return decimal.NewFromInt(1).Sub(net.Div(base)).Mul(cien), true
		},
	},
	{
		name: "multiplicador-directo",
		apply: func(f allowanceFields, _, _ decimal.Decimal) (decimal.Decimal, bool) {
			if !f.multiplierSum.IsPositive() {
				return decimal.Zero, false
			}
			return f.multiplierSum, true
		},
	},
	{
		name: "monto-sobre-base",
		apply: func(f allowanceFields, base, _ decimal.Decimal) (decimal.Decimal, bool) {
			if !base.IsPositive() || !f.amountSum.IsPositive() {
				return decimal.Zero, false
			}
			return f.amountSum.Div(base).Mul(cien), true
		},
	},
}

func deriveDiscountPercent(f allowanceFields, base, net decimal.Decimal) decimal.Decimal {
	for _, s := range discountStrategies {
		if pct, ok := s.apply(f, base, net); ok {
			if pct.IsNegative() {
				return decimal.Zero
			}
			return pct
		}
	}
	return decimal.Zero
}

// ParseInvoiceLines convierte los cac:InvoiceLine en líneas tipadas con la
// inferencia de base y descuento aplicada. Una factura sin líneas no sirve
// para costear: es un fallo del documento completo.
func ParseInvoiceLines(root *etree.Element) ([]entity.InvoiceLine, error) {
	var lines []entity.InvoiceLine
	for _, node := range descendantsByTag(root, "InvoiceLine") {
		quantity := parseDecimalOrZero(textAtPath(node, "InvoicedQuantity"))
		lineExtension := parseDecimalOrZero(textAtPath(node, "LineExtensionAmount"))

		taxPercent := decimal.Zero
		for _, tc := range descendantsByTag(node, "TaxCategory") {
			if v := textAtPath(tc, "Percent"); v != "" {
				taxPercent = parseDecimalOrZero(v)
				break
			}
		}

		fields := collectAllowances(node)
		base := inferBaseAmount(fields, quantity, lineExtension)
		discount := deriveDiscountPercent(fields, base, lineExtension)

		lines = append(lines, entity.InvoiceLine{
			LineID:              textAtPath(node, "ID"),
			Description:         textAtPath(node, "Item/Description"),
			Quantity:            quantity,
			LineExtensionAmount: lineExtension,
			TaxPercent:          taxPercent,
			BaseAmount:          base,
			DiscountPercent:     discount,
		})
	}
	if len(lines) == 0 {
		return nil, domain.ErrSinLineas
	}
	return lines, nil
}

// Rutas candidatas por campo de cabecera, en orden de prioridad. El nombre
// legal del proveedor puede vivir bajo el tax scheme, la legal entity o el
// party name según el software del emisor.
var (
	supplierNamePaths = []string{
		"AccountingSupplierParty/Party/PartyTaxScheme/RegistrationName",
		"AccountingSupplierParty/Party/PartyLegalEntity/RegistrationName",
		"AccountingSupplierParty/Party/PartyName/Name",
	}
	supplierIDPaths = []string{
		"AccountingSupplierParty/Party/PartyTaxScheme/CompanyID",
		"AccountingSupplierParty/Party/PartyLegalEntity/CompanyID",
	}
	customerNamePaths = []string{
		"AccountingCustomerParty/Party/PartyTaxScheme/RegistrationName",
		"AccountingCustomerParty/Party/PartyName/Name",
	}
)

// ParseInvoiceHeader construye el resumen de cabecera desde la raíz del
// Invoice. Inmutable una vez construido.
func ParseInvoiceHeader(root *etree.Element) entity.InvoiceHeader {
	taxTotal := decimal.Zero
	for _, tax := range childrenByTag(root, "TaxTotal") {
		taxTotal = taxTotal.Add(parseDecimalOrZero(textAtPath(tax, "TaxAmount")))
	}
	return entity.InvoiceHeader{
		SupplierName:      firstText(root, supplierNamePaths),
		SupplierID:        firstText(root, supplierIDPaths),
		CustomerName:      firstText(root, customerNamePaths),
		InvoiceID:         textAtPath(root, "ID"),
		CUFE:              textAtPath(root, "UUID"),
		IssueDate:         textAtPath(root, "IssueDate"),
		DueDate:           textAtPath(root, "DueDate"),
		Currency:          textAtPath(root, "DocumentCurrencyCode"),
		Subtotal:          parseDecimalOrZero(textAtPath(root, "LegalMonetaryTotal/LineExtensionAmount")),
		TaxTotal:          taxTotal,
		Total:             parseDecimalOrZero(textAtPath(root, "LegalMonetaryTotal/PayableAmount")),
		TotalTaxInclusive: parseDecimalOrZero(textAtPath(root, "LegalMonetaryTotal/TaxInclusiveAmount")),
	}
}

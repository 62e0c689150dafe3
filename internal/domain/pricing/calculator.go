// Package pricing implementa el motor de precios (servicio de dominio puro):
// a partir de cada línea de factura calcula los cuatro niveles de precio
// (costo bruto, costo neto, venta neta, venta bruta) aplicando la política de
// utilidad y el redondeo al paso configurado.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

var (
	cien = decimal.NewFromInt(100)
	mil  = decimal.NewFromInt(1000)
	uno  = decimal.NewFromInt(1)
)

// money cuantiza a 2 decimales con half-up como paso final; los cálculos
// intermedios conservan la precisión completa.
func money(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// RoundToStep redondea value al múltiplo de step según el modo. Con paso <= 0
// devuelve el valor intacto. Regla de negocio sobre el resultado: si cae en
// un múltiplo exacto de 1000 se suma un paso adicional, para evitar precios
// publicados en miles cerrados (16.000 → 16.100). El valor corregido no se
// vuelve a verificar contra 1000.
func RoundToStep(value, step decimal.Decimal, mode entity.RoundingMode) (decimal.Decimal, error) {
	if step.LessThanOrEqual(decimal.Zero) {
		return value, nil
	}
	step = step.Abs()
	ratio := value.Div(step)
	var rounded decimal.Decimal
	switch mode {
	case entity.RoundingNearest:
		// Round de shopspring: half away from zero
		rounded = ratio.Round(0)
	case entity.RoundingUp:
		rounded = ratio.Ceil()
	case entity.RoundingDown:
		rounded = ratio.Floor()
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrModoRedondeo, mode)
	}
	result := rounded.Mul(step)
	if result.Mod(mil).IsZero() {
		result = result.Add(step)
	}
	return result, nil
}

// BuildRow calcula la fila de precios de una línea. rule puede ser nil (sin
// regla aplicable: se usa la política de umbral).
//
//	costoBruto = base/cantidad (0 si cantidad == 0)
//	costoNeto  = costoBruto * (1 - desc/100) * (1 + iva/100)
//	ventaNeta  = redondeo(costoNeto * utilidad | umbral) al paso
//	ventaBruta = ventaNeta / (1 + iva/100)
func BuildRow(line entity.InvoiceLine, cfg entity.MarkupConfig, rule *entity.PricingRule) (entity.PriceRow, error) {
	taxFactor := line.TaxPercent.Div(cien)
	unitBase := decimal.Zero
	if !line.Quantity.IsZero() {
		unitBase = line.BaseAmount.Div(line.Quantity)
	}
	discountFactor := uno.Sub(line.DiscountPercent.Div(cien))
	if discountFactor.IsNegative() {
		discountFactor = decimal.Zero
	}
	costoNeto := unitBase.Mul(discountFactor).Mul(uno.Add(taxFactor))

	var ventaNetaRaw decimal.Decimal
	var markup *decimal.Decimal
	if rule != nil && rule.UtilidadPercent != nil {
		markup = rule.UtilidadPercent
		ventaNetaRaw = costoNeto.Mul(uno.Add(markup.Div(cien)))
	} else if costoNeto.LessThan(cfg.Threshold) {
		ventaNetaRaw = costoNeto.Div(cfg.BelowDivisor)
	} else {
		// umbral exacto cae en esta rama (semántica >=)
		ventaNetaRaw = costoNeto.Mul(cfg.AboveMultiplier)
	}

	ventaNeta, err := RoundToStep(ventaNetaRaw, cfg.RoundNetStep, cfg.RoundingMode)
	if err != nil {
		return entity.PriceRow{}, err
	}
	ventaBruta := ventaNeta.Div(uno.Add(taxFactor))

	return entity.PriceRow{
		Producto:        line.Description,
		Cantidad:        line.Quantity,
		TaxPercent:      line.TaxPercent,
		DiscountPercent: line.DiscountPercent,
		CostoBrutoUnit:  money(unitBase),
		CostoNetoUnit:   money(costoNeto),
		VentaBrutaUnit:  money(ventaBruta),
		VentaNetaUnit:   money(ventaNeta),
		SourceLineID:    line.LineID,
		MarkupPercent:   markup,
	}, nil
}

// BuildPriceRows calcula las filas de todas las líneas preservando el orden
// de inserción. Consulta la tabla de reglas por cada línea.
func BuildPriceRows(lines []entity.InvoiceLine, cfg entity.MarkupConfig, rules []entity.PricingRule) ([]entity.PriceRow, error) {
	rows := make([]entity.PriceRow, 0, len(lines))
	for _, line := range lines {
		rule := FindRule(line.Description, rules)
		row, err := BuildRow(line, cfg, rule)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

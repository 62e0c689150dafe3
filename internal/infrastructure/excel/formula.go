// Package excel escribe el libro de resultados del costeo. Las columnas
// calculadas van como fórmulas vivas, no como valores: el usuario edita
// cantidad, descuento, IVA o costo en la hoja y todo recalcula. Las fórmulas
// reproducen exactamente el algoritmo del motor de precios; el test de
// equivalencia de este paquete impide que las dos implementaciones se
// desincronicen.
package excel

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// roundToStepExpr envuelve una expresión en el redondeo al paso con la regla
// de evitar miles cerrados: IF(MOD(r,1000)=0,r+paso,r).
func roundToStepExpr(expr string, step decimal.Decimal, mode entity.RoundingMode) string {
	if step.LessThanOrEqual(decimal.Zero) {
		return expr
	}
	stepStr := step.String()
	var rounded string
	switch mode {
	case entity.RoundingNearest:
		rounded = fmt.Sprintf("ROUND((%s)/%s,0)*%s", expr, stepStr, stepStr)
	case entity.RoundingDown:
		rounded = fmt.Sprintf("FLOOR(%s,%s)", expr, stepStr)
	default:
		rounded = fmt.Sprintf("CEILING(%s,%s)", expr, stepStr)
	}
	return fmt.Sprintf("IF(MOD(%s,1000)=0,%s+%s,%s)", rounded, rounded, stepStr, rounded)
}

// NetCostFormula costo neto unitario: bruto con descuento e IVA, a 2 decimales.
func NetCostFormula(brutoCell, descCell, ivaCell string) string {
	return fmt.Sprintf("ROUND(%s*(1-%s/100)*(1+%s/100),2)", brutoCell, descCell, ivaCell)
}

// SaleNetFormula venta neta unitaria: utilidad de regla o política de umbral,
// pasada por el redondeo al paso.
func SaleNetFormula(netCell string, markup *decimal.Decimal, cfg entity.MarkupConfig) string {
	var raw string
	if markup != nil {
		raw = fmt.Sprintf("%s*(1+%s/100)", netCell, markup.String())
	} else {
		raw = fmt.Sprintf("IF(%s<%s,%s/%s,%s*%s)",
			netCell, cfg.Threshold.String(),
			netCell, cfg.BelowDivisor.String(),
			netCell, cfg.AboveMultiplier.String())
	}
	return roundToStepExpr(raw, cfg.RoundNetStep, cfg.RoundingMode)
}

// SaleGrossFormula venta bruta unitaria: la neta sin IVA.
func SaleGrossFormula(ventaNetaCell, ivaCell string) string {
	return fmt.Sprintf("%s/(1+%s/100)", ventaNetaCell, ivaCell)
}

// TotalNetFormula valor total neto de compra de la línea.
func TotalNetFormula(netCell, qtyCell string) string {
	return fmt.Sprintf("ROUND(%s*%s,2)", netCell, qtyCell)
}

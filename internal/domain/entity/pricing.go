package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/domain"
)

// Tipos de matching soportados por la tabla de reglas.
// "contiene" es sinónimo de "contains" (la tabla la editan usuarios en español).
const (
	MatchExact      = "exact"
	MatchStartsWith = "startswith"
	MatchContains   = "contains"
	MatchContiene   = "contiene"
	MatchRegex      = "regex"
)

// PricingRule una entrada de la tabla de reglas especiales. El orden en la
// lista es significativo: gana la primera que haga match.
type PricingRule struct {
	MatchType       string
	Pattern         string
	UtilidadPercent *decimal.Decimal // nil = la regla no sobreescribe la utilidad
}

// RoundingMode modo de redondeo del paso de venta neta.
type RoundingMode string

// Modos de redondeo reconocidos.
const (
	RoundingUp      RoundingMode = "up"
	RoundingDown    RoundingMode = "down"
	RoundingNearest RoundingMode = "nearest"
)

// ParseRoundingMode valida el modo de redondeo. Un modo desconocido es un
// error de configuración fatal: el motor no asume un default silencioso.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch RoundingMode(s) {
	case RoundingUp, RoundingDown, RoundingNearest:
		return RoundingMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrModoRedondeo, s)
}

// MarkupConfig política de utilidad de la corrida. El motor nunca la muta.
type MarkupConfig struct {
	Threshold       decimal.Decimal
	BelowDivisor    decimal.Decimal
	AboveMultiplier decimal.Decimal
	RoundNetStep    decimal.Decimal
	RoundingMode    RoundingMode
}

// DefaultMarkupConfig los valores de política usados en producción:
// umbral 10.000, divisor 0.68 por debajo, multiplicador 1.32 por encima,
// redondeo hacia arriba al paso de 100.
func DefaultMarkupConfig() MarkupConfig {
	return MarkupConfig{
		Threshold:       decimal.NewFromInt(10000),
		BelowDivisor:    decimal.RequireFromString("0.68"),
		AboveMultiplier: decimal.RequireFromString("1.32"),
		RoundNetStep:    decimal.NewFromInt(100),
		RoundingMode:    RoundingUp,
	}
}

// Validate verifica que el modo de redondeo sea reconocido.
func (c MarkupConfig) Validate() error {
	_, err := ParseRoundingMode(string(c.RoundingMode))
	return err
}

// PriceRow una línea de salida con los cuatro niveles de precio, ya
// cuantizados a 2 decimales. Inmutable; el orden de las filas respeta el
// orden de las líneas en la factura fuente.
type PriceRow struct {
	Producto        string
	Cantidad        decimal.Decimal
	TaxPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
	CostoBrutoUnit  decimal.Decimal
	CostoNetoUnit   decimal.Decimal
	VentaBrutaUnit  decimal.Decimal
	VentaNetaUnit   decimal.Decimal
	SourceLineID    string
	// MarkupPercent utilidad aplicada por regla; nil cuando se usó la
	// política de umbral por defecto.
	MarkupPercent *decimal.Decimal
}

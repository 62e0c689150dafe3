// Package rules carga la tabla de reglas especiales de precios desde un
// libro xlsx. Las columnas se reconocen por nombre sin importar mayúsculas,
// tildes ni espacios ("Tipo", "Patrón", "Utilidad %").
package rules

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// quita tildes y deja solo alfanuméricos en minúscula.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(value string) string {
	folded, _, err := transform.String(foldTransformer, value)
	if err != nil {
		folded = value
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnas reconocidas → índice por defecto si el encabezado no aparece.
const (
	defaultMatchTypeCol = 0
	defaultPatternCol   = 1
	defaultUtilidadCol  = 2
)

// LoadRules carga la tabla desde disco. Un archivo inexistente no es error:
// simplemente no hay reglas (la tabla es opcional).
func LoadRules(path string) ([]entity.PricingRule, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("abrir tabla de reglas: %w", err)
	}
	defer f.Close()
	return LoadRulesFromReader(f)
}

// LoadRulesFromReader parsea el xlsx de la primera hoja. La fila 1 es el
// encabezado; filas sin patrón se descartan.
func LoadRulesFromReader(r io.Reader) ([]entity.PricingRule, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReglasInvalida, err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReglasInvalida, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	matchCol, patternCol, utilidadCol := defaultMatchTypeCol, defaultPatternCol, defaultUtilidadCol
	hasUtilidad := false
	for idx, name := range rows[0] {
		switch normalizeHeader(name) {
		case "matchtype", "tipo":
			matchCol = idx
		case "pattern", "patron":
			patternCol = idx
		case "utilidadpercent", "utilidad", "markuppercent", "markup":
			utilidadCol = idx
			hasUtilidad = true
		}
	}

	var out []entity.PricingRule
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		pattern := strings.TrimSpace(cellAt(row, patternCol))
		if pattern == "" {
			continue
		}
		matchType := strings.ToLower(strings.TrimSpace(cellAt(row, matchCol)))
		if matchType == "" {
			matchType = entity.MatchContains
		}
		rule := entity.PricingRule{MatchType: matchType, Pattern: pattern}
		if hasUtilidad {
			if raw := strings.TrimSpace(cellAt(row, utilidadCol)); raw != "" {
				if utilidad, err := decimal.NewFromString(raw); err == nil {
					rule.UtilidadPercent = &utilidad
				}
			}
		}
		out = append(out, rule)
	}
	return out, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// FileSource fuente de reglas respaldada en archivo; relee la tabla en cada
// corrida para que los cambios del usuario apliquen sin reiniciar.
type FileSource struct {
	Path string
}

// Load implementa costeo.RuleSource.
func (s FileSource) Load() ([]entity.PricingRule, error) {
	if s.Path == "" {
		return nil, nil
	}
	return LoadRules(s.Path)
}

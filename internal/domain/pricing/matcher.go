package pricing

import (
	"regexp"
	"strings"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// FindRule recorre la tabla de reglas en orden y devuelve la primera que haga
// match con la descripción, o nil. No hay scoring ni especificidad: gana la
// primera de la lista.
//
// exact/startswith/contains comparan en minúsculas; regex se busca (sin
// anclar) sobre la descripción original con flag case-insensitive. Un patrón
// regex malformado se salta y se sigue escaneando.
func FindRule(description string, rules []entity.PricingRule) *entity.PricingRule {
	if description == "" {
		return nil
	}
	text := strings.ToLower(description)
	for i := range rules {
		rule := &rules[i]
		pattern := strings.ToLower(rule.Pattern)
		switch rule.MatchType {
		case entity.MatchExact:
			if text == pattern {
				return rule
			}
		case entity.MatchStartsWith:
			if strings.HasPrefix(text, pattern) {
				return rule
			}
		case entity.MatchRegex:
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				continue
			}
			if re.MatchString(description) {
				return rule
			}
		case entity.MatchContains, entity.MatchContiene:
			if strings.Contains(text, pattern) {
				return rule
			}
		}
	}
	return nil
}

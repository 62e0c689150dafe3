package costeo

import "strings"

// SafeName sanea un identificador de factura para usarlo como nombre de
// archivo o carpeta. Devuelve "Factura" si no queda nada utilizable.
func SafeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Factura"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		case r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), " .")
	if out == "" {
		return "Factura"
	}
	return out
}

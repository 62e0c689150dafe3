package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// ErrSinFactura y ErrSinLineas llevan mensajes distintos a propósito: los
// orquestadores por lotes deciden saltar o abortar según el texto del fallo.
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrSinFactura     = errors.New("no se encontró un XML de Invoice embebido en el archivo")
	ErrSinLineas      = errors.New("la Invoice no contiene líneas de items")
	ErrModoRedondeo   = errors.New("modo de redondeo no soportado")
	ErrReglasInvalida = errors.New("tabla de reglas inválida")
)

package repository

import "github.com/jhoicas/Costeo-api/internal/domain/entity"

// ProcesamientoRepository persistencia del historial de costeos.
type ProcesamientoRepository interface {
	// Create guarda la cabecera y sus líneas de forma atómica.
	Create(p *entity.Procesamiento, lineas []entity.ProcesamientoLinea) error
	// List devuelve los procesamientos más recientes primero.
	List(limit, offset int) ([]entity.Procesamiento, error)
	// GetByID devuelve un procesamiento con sus líneas; nil si no existe.
	GetByID(id string) (*entity.Procesamiento, []entity.ProcesamientoLinea, error)
}

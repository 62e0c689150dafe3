package costeo

import (
	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

// HistorialUseCase consulta los procesamientos guardados.
type HistorialUseCase struct {
	repo repository.ProcesamientoRepository
}

// NewHistorialUseCase construye el caso de uso.
func NewHistorialUseCase(repo repository.ProcesamientoRepository) *HistorialUseCase {
	return &HistorialUseCase{repo: repo}
}

// List devuelve una página del historial, más reciente primero.
func (uc *HistorialUseCase) List(page dto.PageRequest) ([]dto.ProcesamientoResponse, error) {
	page.DefaultPage()
	items, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProcesamientoResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProcesamientoResponse(&p))
	}
	return out, nil
}

// Get devuelve un procesamiento con sus líneas. domain.ErrNotFound si no existe.
func (uc *HistorialUseCase) Get(id string) (*dto.ProcesamientoDetalleResponse, error) {
	p, lineas, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	res := &dto.ProcesamientoDetalleResponse{
		ProcesamientoResponse: toProcesamientoResponse(p),
		CUFE:                  p.CUFE,
		ProveedorNIT:          p.ProveedorNIT,
		Cliente:               p.Cliente,
		Moneda:                p.Moneda,
		FechaEmision:          p.FechaEmision,
		Precios:               make([]dto.PrecioResponse, 0, len(lineas)),
	}
	for _, l := range lineas {
		res.Precios = append(res.Precios, toPrecioFromLinea(l))
	}
	return res, nil
}

func toProcesamientoResponse(p *entity.Procesamiento) dto.ProcesamientoResponse {
	return dto.ProcesamientoResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Proveedor:     p.Proveedor,
		TotalFactura:  p.TotalFactura.StringFixed(2),
		NumLineas:     p.NumLineas,
		ArchivoOrigen: p.ArchivoOrigen,
		CreatedAt:     p.CreatedAt,
	}
}

func toPrecioFromLinea(l entity.ProcesamientoLinea) dto.PrecioResponse {
	out := dto.PrecioResponse{
		Producto:       l.Producto,
		Cantidad:       l.Cantidad.String(),
		IvaPercent:     l.IvaPercent.String(),
		DescuentoPct:   l.DescuentoPercent.String(),
		CostoBrutoUnit: l.CostoBrutoUnit.StringFixed(2),
		CostoNetoUnit:  l.CostoNetoUnit.StringFixed(2),
		VentaBrutaUnit: l.VentaBrutaUnit.StringFixed(2),
		VentaNetaUnit:  l.VentaNetaUnit.StringFixed(2),
		SourceLineID:   l.SourceLineID,
	}
	if l.UtilidadPercent != nil {
		s := l.UtilidadPercent.String()
		out.UtilidadPercent = &s
	}
	return out
}

// Package costeo implementa el caso de uso central: parsear una factura
// electrónica, calcular los cuatro niveles de precio por línea y dejar registro
// del procesamiento.
package costeo

import (
	"fmt"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/pricing"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// Resultado de procesar un archivo de entrada.
type Resultado struct {
	ProcesamientoID string
	Header          entity.InvoiceHeader
	Rows            []entity.PriceRow
	Config          entity.MarkupConfig
	ArchivoXML      string
	PDFNombre       string
	PDFBytes        []byte
}

// ProcesarUseCase orquesta el pipeline completo de costeo.
type ProcesarUseCase struct {
	invoices InvoiceSource
	rules    RuleSource
	cfg      entity.MarkupConfig
	repo     repository.ProcesamientoRepository // nil = sin historial
	log      *logger.Logger
}

// NewProcesarUseCase construye el caso de uso. repo puede ser nil si la
// instalación no tiene base de datos.
func NewProcesarUseCase(
	invoices InvoiceSource,
	rules RuleSource,
	cfg entity.MarkupConfig,
	repo repository.ProcesamientoRepository,
	log *logger.Logger,
) (*ProcesarUseCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ProcesarUseCase{invoices: invoices, rules: rules, cfg: cfg, repo: repo, log: log}, nil
}

// Procesar corre el pipeline sobre los bytes recibidos: parseo, reglas,
// cálculo de precios y registro en el historial (best effort).
func (uc *ProcesarUseCase) Procesar(data []byte, nombre string) (*Resultado, error) {
	factura, err := uc.invoices.Load(data, nombre)
	if err != nil {
		return nil, err
	}

	var reglas []entity.PricingRule
	if uc.rules != nil {
		reglas, err = uc.rules.Load()
		if err != nil {
			return nil, fmt.Errorf("cargar reglas de utilidad: %w", err)
		}
	}

	rows, err := pricing.BuildPriceRows(factura.Lines, uc.cfg, reglas)
	if err != nil {
		return nil, err
	}

	res := &Resultado{
		Header:     factura.Header,
		Rows:       rows,
		Config:     uc.cfg,
		ArchivoXML: factura.ArchivoXML,
		PDFNombre:  factura.PDFNombre,
		PDFBytes:   factura.PDFBytes,
	}

	// El historial nunca bloquea la respuesta: si la DB falla se registra y sigue.
	if uc.repo != nil {
		id, err := uc.persistir(res, nombre)
		if err != nil {
			uc.log.Warn().Err(err).Str("archivo", nombre).Msg("no se pudo guardar el historial de costeo")
		} else {
			res.ProcesamientoID = id
		}
	}

	uc.log.Info().
		Str("archivo", nombre).
		Str("factura", res.Header.InvoiceID).
		Int("lineas", len(rows)).
		Msg("costeo procesado")

	return res, nil
}

func (uc *ProcesarUseCase) persistir(res *Resultado, nombre string) (string, error) {
	p := &entity.Procesamiento{
		InvoiceID:     res.Header.InvoiceID,
		CUFE:          res.Header.CUFE,
		Proveedor:     res.Header.SupplierName,
		ProveedorNIT:  res.Header.SupplierID,
		Cliente:       res.Header.CustomerName,
		Moneda:        res.Header.Currency,
		FechaEmision:  res.Header.IssueDate,
		TotalFactura:  res.Header.Total,
		NumLineas:     len(res.Rows),
		ArchivoOrigen: nombre,
	}
	lineas := make([]entity.ProcesamientoLinea, 0, len(res.Rows))
	for _, r := range res.Rows {
		lineas = append(lineas, entity.ProcesamientoLinea{
			Producto:         r.Producto,
			Cantidad:         r.Cantidad,
			IvaPercent:       r.TaxPercent,
			DescuentoPercent: r.DiscountPercent,
			CostoBrutoUnit:   r.CostoBrutoUnit,
			CostoNetoUnit:    r.CostoNetoUnit,
			VentaBrutaUnit:   r.VentaBrutaUnit,
			VentaNetaUnit:    r.VentaNetaUnit,
			UtilidadPercent:  r.MarkupPercent,
			SourceLineID:     r.SourceLineID,
		})
	}
	if err := uc.repo.Create(p, lineas); err != nil {
		return "", err
	}
	return p.ID, nil
}

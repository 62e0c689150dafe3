package costeo

import (
	"io"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
)

// FacturaCargada es el resultado de parsear un archivo de entrada: cabecera,
// líneas normalizadas y el PDF adjunto si venía en un ZIP.
type FacturaCargada struct {
	Header     entity.InvoiceHeader
	Lines      []entity.InvoiceLine
	ArchivoXML string
	PDFNombre  string
	PDFBytes   []byte
}

// InvoiceSource parsea el archivo recibido (XML suelto o ZIP) a una factura.
type InvoiceSource interface {
	Load(data []byte, nombre string) (*FacturaCargada, error)
}

// RuleSource provee las reglas de utilidad por producto. Una fuente sin reglas
// devuelve (nil, nil).
type RuleSource interface {
	Load() ([]entity.PricingRule, error)
}

// WorkbookWriter serializa el costeo como libro xlsx con fórmulas vivas.
type WorkbookWriter interface {
	WriteWorkbook(rows []entity.PriceRow, header *entity.InvoiceHeader, cfg entity.MarkupConfig, w io.Writer) error
}

// PDFGenerator genera el resumen de costeo en PDF.
type PDFGenerator interface {
	GenerateCosteoPDF(header *entity.InvoiceHeader, rows []entity.PriceRow) ([]byte, error)
}

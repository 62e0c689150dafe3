package ubl

import (
	"github.com/jhoicas/Costeo-api/internal/application/costeo"
)

var _ costeo.InvoiceSource = (*Loader)(nil)

// Loader implementa costeo.InvoiceSource sobre el extractor UBL.
type Loader struct{}

// NewLoader construye el adaptador.
func NewLoader() *Loader { return &Loader{} }

// Load parsea el archivo (XML o ZIP) y devuelve la factura normalizada.
func (l *Loader) Load(data []byte, nombre string) (*costeo.FacturaCargada, error) {
	doc, err := LoadDocumento(data, nombre)
	if err != nil {
		return nil, err
	}
	lines, err := ParseInvoiceLines(doc.Root)
	if err != nil {
		return nil, err
	}
	header := ParseInvoiceHeader(doc.Root)
	return &costeo.FacturaCargada{
		Header:     header,
		Lines:      lines,
		ArchivoXML: doc.ArchivoXML,
		PDFNombre:  doc.PDFNombre,
		PDFBytes:   doc.PDFBytes,
	}, nil
}

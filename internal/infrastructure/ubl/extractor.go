// Package ubl extrae y normaliza la factura electrónica UBL embebida en un
// AttachedDocument DIAN. Los documentos reales llegan con prefijos de
// namespace inconsistentes, así que todo el matching de elementos se hace por
// nombre local, ignorando el prefijo declarado.
package ubl

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/Costeo-api/internal/domain"
)

// Documento resultado de la extracción: la raíz del Invoice más el adjunto
// binario co-localizado (la representación gráfica PDF), si existe.
type Documento struct {
	Root       *etree.Element
	ArchivoXML string
	PDFNombre  string
	PDFBytes   []byte
}

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// ExtractInvoiceRoot parsea los bytes y devuelve la raíz del Invoice. Si la
// raíz ya es un Invoice se devuelve directa; si es un envelope se busca el
// primer Attachment/ExternalReference/Description cuyo texto contenga un tag
// de apertura de Invoice y se re-parsea ese payload como documento aparte.
// No encontrar ningún candidato es un fallo duro, sin fallback silencioso.
func ExtractInvoiceRoot(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsear XML: documento sin elemento raíz")
	}
	if root.Tag == "Invoice" {
		return root, nil
	}
	return extractFromAttached(root)
}

// extractFromAttached busca el Invoice serializado como texto escapado dentro
// de los cbc:Description del AttachedDocument.
func extractFromAttached(root *etree.Element) (*etree.Element, error) {
	for _, desc := range descendantsByTag(root, "Description") {
		parent := desc.Parent()
		if parent == nil || parent.Tag != "ExternalReference" {
			continue
		}
		if gp := parent.Parent(); gp == nil || gp.Tag != "Attachment" {
			continue
		}
		payload := desc.Text()
		if payload == "" || !strings.Contains(payload, "<Invoice") {
			continue
		}
		embedded := etree.NewDocument()
		if err := embedded.ReadFromString(payload); err != nil {
			continue
		}
		if embedded.Root() != nil {
			return embedded.Root(), nil
		}
	}
	return nil, domain.ErrSinFactura
}

// LoadDocumento punto de entrada del extractor: decide entre XML directo y
// contenedor ZIP según el nombre o la firma mágica del archivo.
func LoadDocumento(data []byte, nombre string) (*Documento, error) {
	if strings.HasSuffix(strings.ToLower(nombre), ".zip") || bytes.HasPrefix(data, zipMagic) {
		return loadFromZip(data)
	}
	root, err := ExtractInvoiceRoot(data)
	if err != nil {
		return nil, err
	}
	return &Documento{Root: root, ArchivoXML: nombre}, nil
}

// loadFromZip prueba cada XML del contenedor en orden de archivo y se queda
// con el primero que parsea y produce al menos una línea. Si todos fallan se
// reporta el último error agregado. El primer PDF del ZIP viaja como adjunto.
func loadFromZip(data []byte) (*Documento, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("abrir ZIP: %w", err)
	}

	var xmlEntries []*zip.File
	var pdfEntry *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		lower := strings.ToLower(f.Name)
		switch {
		case strings.HasSuffix(lower, ".xml"):
			xmlEntries = append(xmlEntries, f)
		case strings.HasSuffix(lower, ".pdf") && pdfEntry == nil:
			pdfEntry = f
		}
	}
	if len(xmlEntries) == 0 {
		return nil, fmt.Errorf("no se encontró ningún XML dentro del ZIP: %w", domain.ErrSinFactura)
	}

	var lastErr error
	for _, entry := range xmlEntries {
		payload, err := readZipEntry(entry)
		if err != nil {
			lastErr = err
			continue
		}
		root, err := ExtractInvoiceRoot(payload)
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := ParseInvoiceLines(root); err != nil {
			lastErr = err
			continue
		}
		doc := &Documento{Root: root, ArchivoXML: entry.Name}
		if pdfEntry != nil {
			if pdfBytes, err := readZipEntry(pdfEntry); err == nil {
				doc.PDFNombre = pdfEntry.Name
				doc.PDFBytes = pdfBytes
			}
		}
		return doc, nil
	}
	return nil, fmt.Errorf("no se pudo leer un XML de factura válido dentro del ZIP, último error: %w", lastErr)
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir entrada %s: %w", f.Name, err)
	}
	defer rc.Close()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("leer entrada %s: %w", f.Name, err)
	}
	return payload, nil
}

// descendantsByTag recorre todo el subárbol en profundidad y devuelve los
// elementos cuyo nombre local coincide, sin importar el prefijo de namespace.
func descendantsByTag(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
		out = append(out, descendantsByTag(child, tag)...)
	}
	return out
}

// childrenByTag hijos directos con el nombre local dado.
func childrenByTag(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}

// textAtPath sigue una ruta de nombres locales separados por "/" y devuelve
// el texto del primer elemento que complete la ruta, ya recortado.
func textAtPath(el *etree.Element, path string) string {
	parts := strings.Split(path, "/")
	if found := elementAtPath(el, parts); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}

func elementAtPath(el *etree.Element, parts []string) *etree.Element {
	if len(parts) == 0 {
		return el
	}
	for _, child := range childrenByTag(el, parts[0]) {
		if found := elementAtPath(child, parts[1:]); found != nil {
			return found
		}
	}
	return nil
}

// firstText evalúa rutas candidatas en orden fijo de prioridad y devuelve el
// primer texto no vacío. Campos como la razón social del proveedor existen en
// varias ubicaciones según el emisor.
func firstText(el *etree.Element, paths []string) string {
	for _, path := range paths {
		if value := textAtPath(el, path); value != "" {
			return value
		}
	}
	return ""
}

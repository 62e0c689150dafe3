package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/jhoicas/Costeo-api/internal/application/auth"
	"github.com/jhoicas/Costeo-api/internal/application/costeo"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/excel"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/ubl"
	apphttp "github.com/jhoicas/Costeo-api/internal/interfaces/http"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// Factura de una línea calibrada para el escenario de referencia del motor:
// qty 10, base 100000, IVA 19% -> costo neto 11900, venta neta 15800.
const facturaEscenarioXML = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
  xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
  xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:ID>FVE100</cbc:ID>
  <cbc:IssueDate>2025-05-02</cbc:IssueDate>
  <cbc:DocumentCurrencyCode>COP</cbc:DocumentCurrencyCode>
  <cac:AccountingSupplierParty>
    <cac:Party>
      <cac:PartyTaxScheme>
        <cbc:RegistrationName>PROVEEDOR PRUEBA SAS</cbc:RegistrationName>
      </cac:PartyTaxScheme>
    </cac:Party>
  </cac:AccountingSupplierParty>
  <cac:LegalMonetaryTotal>
    <cbc:PayableAmount currencyID="COP">119000.00</cbc:PayableAmount>
  </cac:LegalMonetaryTotal>
  <cac:InvoiceLine>
    <cbc:ID>1</cbc:ID>
    <cbc:InvoicedQuantity unitCode="EA">10</cbc:InvoicedQuantity>
    <cbc:LineExtensionAmount currencyID="COP">100000.00</cbc:LineExtensionAmount>
    <cac:TaxTotal>
      <cac:TaxSubtotal>
        <cac:TaxCategory>
          <cbc:Percent>19.00</cbc:Percent>
        </cac:TaxCategory>
      </cac:TaxSubtotal>
    </cac:TaxTotal>
    <cac:Item>
      <cbc:Description>ALCOHOL ANTISEPTICO 700ML</cbc:Description>
    </cac:Item>
  </cac:InvoiceLine>
</Invoice>`

// buildCosteoApp arma la app completa con el pipeline real y sin base de datos.
func buildCosteoApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	procesar, err := costeo.NewProcesarUseCase(ubl.NewLoader(), nil, entity.DefaultMarkupConfig(), nil, log)
	require.NoError(t, err)

	authUC := appauth.NewAuthUseCase(testUser, hashFor(t, testPassword), appauth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProcesarUC:  procesar,
		HistorialUC: nil,
		AuthUC:      authUC,
		Workbooks:   excel.NewRenderer(),
		PDFs:        pdf.NewCosteoPDFGenerator(),
		JWTSecret:   testJWTSecret,
	})
	return app
}

// postFactura sube el archivo como multipart al endpoint de costeos.
func postFactura(t *testing.T, app *fiber.App, nombre string, data []byte, query string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if data != nil {
		part, err := mw.CreateFormFile("archivo", nombre)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	url := "/api/costeos/"
	if query != "" {
		url += "?" + query
	}
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", validToken(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestProcesar_JSONDevuelvePreciosCalculados(t *testing.T) {
	app := buildCosteoApp(t)
	resp := postFactura(t, app, "factura.xml", []byte(facturaEscenarioXML), "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "una factura válida debe procesarse")

	var body struct {
		Factura struct {
			InvoiceID string `json:"invoice_id"`
			Proveedor string `json:"proveedor"`
			Total     string `json:"total"`
		} `json:"factura"`
		Precios []struct {
			Producto       string `json:"producto"`
			CostoNetoUnit  string `json:"costo_neto_unit"`
			VentaNetaUnit  string `json:"venta_neta_unit"`
			VentaBrutaUnit string `json:"venta_bruta_unit"`
		} `json:"precios"`
		TienePDFAdjunto bool `json:"tiene_pdf_adjunto"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "FVE100", body.Factura.InvoiceID)
	assert.Equal(t, "PROVEEDOR PRUEBA SAS", body.Factura.Proveedor)
	assert.Equal(t, "119000.00", body.Factura.Total)
	require.Len(t, body.Precios, 1)
	assert.Equal(t, "ALCOHOL ANTISEPTICO 700ML", body.Precios[0].Producto)
	assert.Equal(t, "11900.00", body.Precios[0].CostoNetoUnit)
	assert.Equal(t, "15800.00", body.Precios[0].VentaNetaUnit)
	assert.Equal(t, "13277.31", body.Precios[0].VentaBrutaUnit)
	assert.False(t, body.TienePDFAdjunto, "un XML suelto no trae PDF adjunto")
}

func TestProcesar_FormatoXLSXDescargaLibro(t *testing.T) {
	app := buildCosteoApp(t)
	resp := postFactura(t, app, "factura.xml", []byte(facturaEscenarioXML), "formato=xlsx")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "FVE100.xlsx",
		"el nombre del archivo sale del ID de la factura")
}

func TestProcesar_FormatoPDFDescargaResumen(t *testing.T) {
	app := buildCosteoApp(t)
	resp := postFactura(t, app, "factura.xml", []byte(facturaEscenarioXML), "formato=pdf")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestProcesar_FormatoDesconocidoValidacion(t *testing.T) {
	app := buildCosteoApp(t)
	resp := postFactura(t, app, "factura.xml", []byte(facturaEscenarioXML), "formato=csv")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "formato desconocido debe ser 400")
}

func TestProcesar_SinArchivoFalla(t *testing.T) {
	app := buildCosteoApp(t)
	resp := postFactura(t, app, "factura.xml", nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "falta el campo multipart archivo")
}

func TestProcesar_XMLSinFacturaEs422(t *testing.T) {
	app := buildCosteoApp(t)
	resp := postFactura(t, app, "otro.xml", []byte(`<?xml version="1.0"?><Otro/>`), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode,
		"un XML sin Invoice embebido debe ser 422")
}

func TestProcesar_SinTokenRechaza(t *testing.T) {
	app := buildCosteoApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/costeos/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el endpoint de costeos es protegido")
}

func TestHistorial_SinBaseDeDatosEs503(t *testing.T) {
	app := buildCosteoApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/costeos/", nil)
	req.Header.Set("Authorization", validToken(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode,
		"sin DB el historial responde 503")
}

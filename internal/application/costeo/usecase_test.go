package costeo_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Costeo-api/internal/application/costeo"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stubs de puertos
// ──────────────────────────────────────────────────────────────────────────────

type stubInvoices struct {
	factura *costeo.FacturaCargada
	err     error
}

func (s stubInvoices) Load(_ []byte, _ string) (*costeo.FacturaCargada, error) {
	return s.factura, s.err
}

type stubRules struct {
	reglas []entity.PricingRule
	err    error
}

func (s stubRules) Load() ([]entity.PricingRule, error) { return s.reglas, s.err }

type stubRepo struct {
	saved         *entity.Procesamiento
	savedLineas   []entity.ProcesamientoLinea
	detalle       *entity.Procesamiento
	detalleLineas []entity.ProcesamientoLinea
	err           error
}

func (r *stubRepo) Create(p *entity.Procesamiento, lineas []entity.ProcesamientoLinea) error {
	if r.err != nil {
		return r.err
	}
	p.ID = "proc-0001"
	r.saved = p
	r.savedLineas = lineas
	return nil
}

func (r *stubRepo) List(_, _ int) ([]entity.Procesamiento, error) { return nil, nil }
func (r *stubRepo) GetByID(_ string) (*entity.Procesamiento, []entity.ProcesamientoLinea, error) {
	return r.detalle, r.detalleLineas, r.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// facturaDeReferencia una línea: qty 10, base 100000, IVA 19%.
func facturaDeReferencia() *costeo.FacturaCargada {
	return &costeo.FacturaCargada{
		Header: entity.InvoiceHeader{
			InvoiceID:    "FVE100",
			SupplierName: "PROVEEDOR PRUEBA SAS",
			Total:        dec("119000"),
		},
		Lines: []entity.InvoiceLine{{
			LineID:              "1",
			Description:         "GUANTE DE NITRILO TALLA M",
			Quantity:            dec("10"),
			LineExtensionAmount: dec("100000"),
			TaxPercent:          dec("19"),
			BaseAmount:          dec("100000"),
			DiscountPercent:     decimal.Zero,
		}},
		ArchivoXML: "factura.xml",
		PDFNombre:  "factura.pdf",
		PDFBytes:   []byte("%PDF-falso"),
	}
}

func newUC(t *testing.T, inv costeo.InvoiceSource, rules costeo.RuleSource, repo *stubRepo) *costeo.ProcesarUseCase {
	t.Helper()
	var r repository.ProcesamientoRepository
	if repo != nil {
		r = repo
	}
	uc, err := costeo.NewProcesarUseCase(inv, rules, entity.DefaultMarkupConfig(), r, testLogger())
	require.NoError(t, err)
	return uc
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestProcesar_PipelineCompleto(t *testing.T) {
	uc := newUC(t, stubInvoices{factura: facturaDeReferencia()}, nil, nil)

	res, err := uc.Procesar([]byte("xml"), "factura.xml")
	require.NoError(t, err)

	assert.Equal(t, "FVE100", res.Header.InvoiceID)
	require.Len(t, res.Rows, 1)
	assert.True(t, dec("11900").Equal(res.Rows[0].CostoNetoUnit),
		"costo neto: 10000 * 1.19 = 11900")
	assert.True(t, dec("15800").Equal(res.Rows[0].VentaNetaUnit),
		"venta neta: 11900 * 1.32 redondeado arriba a paso 100")
	assert.Equal(t, []byte("%PDF-falso"), res.PDFBytes, "el PDF adjunto viaja en el resultado")
	assert.Empty(t, res.ProcesamientoID, "sin repo no hay ID de historial")
}

func TestProcesar_AplicaReglaDeUtilidad(t *testing.T) {
	reglas := []entity.PricingRule{{
		MatchType:       entity.MatchContains,
		Pattern:         "guante",
		UtilidadPercent: decPtr("50"),
	}}
	uc := newUC(t, stubInvoices{factura: facturaDeReferencia()}, stubRules{reglas: reglas}, nil)

	res, err := uc.Procesar([]byte("xml"), "factura.xml")
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	// 11900 * 1.50 = 17850 -> arriba a paso 100 = 17900
	assert.True(t, dec("17900").Equal(res.Rows[0].VentaNetaUnit),
		"la regla de utilidad debe reemplazar la estrategia por umbral")
	require.NotNil(t, res.Rows[0].MarkupPercent)
	assert.True(t, dec("50").Equal(*res.Rows[0].MarkupPercent))
}

func TestProcesar_ErrorDeParseoSePropaga(t *testing.T) {
	uc := newUC(t, stubInvoices{err: domain.ErrSinFactura}, nil, nil)

	_, err := uc.Procesar([]byte("basura"), "nada.xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSinFactura)
}

func TestProcesar_ErrorDeReglasAborta(t *testing.T) {
	uc := newUC(t, stubInvoices{factura: facturaDeReferencia()}, stubRules{err: errors.New("xlsx corrupto")}, nil)

	_, err := uc.Procesar([]byte("xml"), "factura.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cargar reglas de utilidad")
}

func TestProcesar_GuardaHistorial(t *testing.T) {
	repo := &stubRepo{}
	uc := newUC(t, stubInvoices{factura: facturaDeReferencia()}, nil, repo)

	res, err := uc.Procesar([]byte("xml"), "factura.xml")
	require.NoError(t, err)

	assert.Equal(t, "proc-0001", res.ProcesamientoID)
	require.NotNil(t, repo.saved)
	assert.Equal(t, "FVE100", repo.saved.InvoiceID)
	assert.Equal(t, 1, repo.saved.NumLineas)
	assert.Equal(t, "factura.xml", repo.saved.ArchivoOrigen)
	require.Len(t, repo.savedLineas, 1)
	assert.Equal(t, "GUANTE DE NITRILO TALLA M", repo.savedLineas[0].Producto)
}

func TestProcesar_HistorialConservaOrdenDeLineas(t *testing.T) {
	factura := facturaDeReferencia()
	factura.Lines = []entity.InvoiceLine{
		{LineID: "1", Description: "ZINC PASTA 50G", Quantity: dec("2"), LineExtensionAmount: dec("20000"), BaseAmount: dec("20000")},
		{LineID: "2", Description: "ACETAMINOFEN 500MG", Quantity: dec("3"), LineExtensionAmount: dec("30000"), BaseAmount: dec("30000")},
		{LineID: "3", Description: "MICROPORE 1IN", Quantity: dec("4"), LineExtensionAmount: dec("40000"), BaseAmount: dec("40000")},
	}
	repo := &stubRepo{}
	uc := newUC(t, stubInvoices{factura: factura}, nil, repo)

	_, err := uc.Procesar([]byte("xml"), "factura.xml")
	require.NoError(t, err)

	require.Len(t, repo.savedLineas, 3)
	productos := make([]string, 0, 3)
	for _, l := range repo.savedLineas {
		productos = append(productos, l.Producto)
	}
	assert.Equal(t, []string{"ZINC PASTA 50G", "ACETAMINOFEN 500MG", "MICROPORE 1IN"}, productos,
		"las líneas deben llegar al historial en el orden de la factura, no reordenadas")
}

// Las líneas guardadas llevan IDs UUID aleatorios; el detalle debe respetar la
// posición de origen aunque los IDs ordenen distinto lexicográficamente.
func TestHistorialGet_ConservaOrdenDeFactura(t *testing.T) {
	repo := &stubRepo{
		detalle: &entity.Procesamiento{ID: "proc-0001", InvoiceID: "FVE100", NumLineas: 3},
		detalleLineas: []entity.ProcesamientoLinea{
			{ID: "ffffffff-0000-0000-0000-000000000000", Orden: 0, Producto: "ZINC PASTA 50G"},
			{ID: "00000000-0000-0000-0000-000000000000", Orden: 1, Producto: "ACETAMINOFEN 500MG"},
			{ID: "aaaaaaaa-0000-0000-0000-000000000000", Orden: 2, Producto: "MICROPORE 1IN"},
		},
	}
	uc := costeo.NewHistorialUseCase(repo)

	res, err := uc.Get("proc-0001")
	require.NoError(t, err)

	productos := make([]string, 0, len(res.Precios))
	for _, p := range res.Precios {
		productos = append(productos, p.Producto)
	}
	assert.Equal(t, []string{"ZINC PASTA 50G", "ACETAMINOFEN 500MG", "MICROPORE 1IN"}, productos,
		"el detalle debe salir en el orden de la factura aunque los UUID ordenen al revés")
}

func TestProcesar_FalloDeHistorialNoBloquea(t *testing.T) {
	repo := &stubRepo{err: errors.New("db caída")}
	uc := newUC(t, stubInvoices{factura: facturaDeReferencia()}, nil, repo)

	res, err := uc.Procesar([]byte("xml"), "factura.xml")
	require.NoError(t, err, "el historial es best effort: la respuesta no depende de la DB")
	assert.Empty(t, res.ProcesamientoID)
	require.Len(t, res.Rows, 1)
}

func TestSafeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"FVE12345", "FVE12345"},
		{"FE/2024:001*", "FE_2024_001_"},
		{"", "Factura"},
		{"   ", "Factura"},
		{"...", "Factura"},
		{`a<b>c|d`, "a_b_c_d"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, costeo.SafeName(tc.in), "entrada: %q", tc.in)
	}
}

// costear procesa facturas electrónicas por lotes desde la línea de comandos:
// toma un XML/ZIP (o un directorio con varios) y deja por cada factura una
// carpeta con el libro xlsx de costeo y el PDF adjunto si venía en el ZIP.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Costeo-api/internal/application/costeo"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/excel"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/rules"
	"github.com/jhoicas/Costeo-api/internal/infrastructure/ubl"
	"github.com/jhoicas/Costeo-api/pkg/config"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

var (
	flagSalida   string
	flagReglas   string
	flagSaltar   bool
	flagUmbral   string
	flagDivisor  string
	flagMulti    string
	flagPaso     string
	flagRedondeo string
	flagVerbose  bool
)

func main() {
	root := &cobra.Command{
		Use:   "costear <archivo-o-directorio>",
		Short: "Calcula precios de venta a partir de facturas electrónicas UBL",
		Long: `Procesa facturas electrónicas DIAN (XML de Invoice/AttachedDocument o ZIP)
y genera por cada una un libro xlsx con los cuatro niveles de precio y
fórmulas vivas, junto al PDF adjunto si la factura venía en ZIP.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	root.Flags().StringVarP(&flagSalida, "salida", "o", ".", "directorio donde dejar las carpetas de resultado")
	root.Flags().StringVar(&flagReglas, "reglas", "reglas.xlsx", "tabla xlsx de reglas de utilidad (opcional)")
	root.Flags().BoolVar(&flagSaltar, "saltar-existentes", false, "no reprocesar facturas cuya carpeta de salida ya existe")
	root.Flags().StringVar(&flagUmbral, "umbral", "", "umbral de costo neto que decide la estrategia de margen")
	root.Flags().StringVar(&flagDivisor, "divisor", "", "divisor aplicado bajo el umbral")
	root.Flags().StringVar(&flagMulti, "multiplicador", "", "multiplicador aplicado desde el umbral")
	root.Flags().StringVar(&flagPaso, "paso", "", "paso de redondeo de la venta neta")
	root.Flags().StringVar(&flagRedondeo, "redondeo", "", "modo de redondeo: up, down o nearest")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log detallado")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := "info"
	if flagVerbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Service: "costear"})

	markupCfg, err := buildMarkupConfig()
	if err != nil {
		return err
	}

	procesar, err := costeo.NewProcesarUseCase(
		ubl.NewLoader(),
		rules.FileSource{Path: flagReglas},
		markupCfg,
		nil, // el modo batch no usa base de datos
		log,
	)
	if err != nil {
		return err
	}

	archivos, err := collectInputs(args[0])
	if err != nil {
		return err
	}
	if len(archivos) == 0 {
		return fmt.Errorf("no se encontraron archivos .xml ni .zip en %s", args[0])
	}

	procesados, fallidos := 0, 0
	for _, path := range archivos {
		if err := processFile(procesar, path, log); err != nil {
			log.Warn().Err(err).Str("archivo", path).Msg("factura no procesada")
			fallidos++
			continue
		}
		procesados++
	}

	log.Info().Int("procesadas", procesados).Int("fallidas", fallidos).Msg("lote terminado")
	if procesados == 0 {
		return fmt.Errorf("ninguna factura pudo procesarse")
	}
	return nil
}

// buildMarkupConfig parte de los defaults y aplica los overrides de flags
// reusando la validación de la configuración de la app.
func buildMarkupConfig() (entity.MarkupConfig, error) {
	c := config.CosteoConfig{
		Threshold:       flagUmbral,
		BelowDivisor:    flagDivisor,
		AboveMultiplier: flagMulti,
		RoundNetStep:    flagPaso,
		RoundingMode:    flagRedondeo,
	}
	return c.MarkupConfig()
}

// collectInputs devuelve los archivos a procesar en orden estable.
func collectInputs(entrada string) ([]string, error) {
	info, err := os.Stat(entrada)
	if err != nil {
		return nil, fmt.Errorf("entrada %s: %w", entrada, err)
	}
	if !info.IsDir() {
		return []string{entrada}, nil
	}
	entries, err := os.ReadDir(entrada)
	if err != nil {
		return nil, fmt.Errorf("leer directorio %s: %w", entrada, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xml", ".zip":
			out = append(out, filepath.Join(entrada, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func processFile(procesar *costeo.ProcesarUseCase, path string, log *logger.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer %s: %w", path, err)
	}

	res, err := procesar.Procesar(data, filepath.Base(path))
	if err != nil {
		return err
	}

	nombre := costeo.SafeName(res.Header.InvoiceID)
	outDir := filepath.Join(flagSalida, nombre)
	if flagSaltar {
		if _, err := os.Stat(outDir); err == nil {
			log.Debug().Str("carpeta", outDir).Msg("ya existe, se salta")
			return nil
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("crear carpeta %s: %w", outDir, err)
	}

	xlsxPath := filepath.Join(outDir, nombre+".xlsx")
	f, err := os.Create(xlsxPath)
	if err != nil {
		return fmt.Errorf("crear %s: %w", xlsxPath, err)
	}
	defer f.Close()
	if err := excel.WriteWorkbook(res.Rows, &res.Header, res.Config, f); err != nil {
		return err
	}

	if len(res.PDFBytes) > 0 {
		pdfPath := filepath.Join(outDir, costeo.SafeName(res.PDFNombre))
		if err := os.WriteFile(pdfPath, res.PDFBytes, 0o644); err != nil {
			return fmt.Errorf("guardar PDF adjunto: %w", err)
		}
	}

	log.Info().Str("factura", res.Header.InvoiceID).Str("carpeta", outDir).Int("lineas", len(res.Rows)).Msg("costeo generado")
	return nil
}

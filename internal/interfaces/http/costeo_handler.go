package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/costeo"
	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/domain"
)

const maxUploadBytes = 20 << 20 // 20 MB por archivo de factura

// CosteoHandler procesa facturas subidas y consulta el historial.
type CosteoHandler struct {
	procesar  *costeo.ProcesarUseCase
	historial *costeo.HistorialUseCase // nil = sin base de datos
	workbooks costeo.WorkbookWriter
	pdfs      costeo.PDFGenerator
}

// NewCosteoHandler construye el handler. historial puede ser nil.
func NewCosteoHandler(
	procesar *costeo.ProcesarUseCase,
	historial *costeo.HistorialUseCase,
	workbooks costeo.WorkbookWriter,
	pdfs costeo.PDFGenerator,
) *CosteoHandler {
	return &CosteoHandler{procesar: procesar, historial: historial, workbooks: workbooks, pdfs: pdfs}
}

// Procesar recibe la factura (campo multipart "archivo", XML o ZIP) y responde
// según ?formato: json (default), xlsx o pdf.
func (h *CosteoHandler) Procesar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo multipart 'archivo' requerido"})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "el archivo supera el tamaño máximo permitido"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}

	res, err := h.procesar.Procesar(data, fileHeader.Filename)
	if err != nil {
		return costeoError(c, err)
	}

	switch c.Query("formato", "json") {
	case "json":
		return c.JSON(dto.CosteoResponse{
			ProcesamientoID: res.ProcesamientoID,
			Factura:         dto.ToFacturaResponse(&res.Header),
			Precios:         dto.ToPrecioResponses(res.Rows),
			TienePDFAdjunto: len(res.PDFBytes) > 0,
		})
	case "xlsx":
		var buf bytes.Buffer
		if err := h.workbooks.WriteWorkbook(res.Rows, &res.Header, res.Config, &buf); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", costeo.SafeName(res.Header.InvoiceID)+".xlsx"))
		return c.Send(buf.Bytes())
	case "pdf":
		out, err := h.pdfs.GenerateCosteoPDF(&res.Header, res.Rows)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", costeo.SafeName(res.Header.InvoiceID)+".pdf"))
		return c.Send(out)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "formato debe ser json, xlsx o pdf"})
	}
}

// List devuelve una página del historial.
func (h *CosteoHandler) List(c *fiber.Ctx) error {
	if h.historial == nil {
		return historialDeshabilitado(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	items, err := h.historial.List(page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(items)
}

// GetByID devuelve un procesamiento con sus líneas.
func (h *CosteoHandler) GetByID(c *fiber.Ctx) error {
	if h.historial == nil {
		return historialDeshabilitado(c)
	}
	res, err := h.historial.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "procesamiento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(res)
}

func historialDeshabilitado(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "HISTORY_DISABLED", Message: "el historial requiere base de datos configurada"})
}

// costeoError traduce errores del pipeline a códigos HTTP.
func costeoError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSinFactura):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_INVOICE", Message: err.Error()})
	case errors.Is(err, domain.ErrSinLineas):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_LINES", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrReglasInvalida):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

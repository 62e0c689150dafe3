package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Costeo-api/internal/application/auth"
	"github.com/jhoicas/Costeo-api/internal/application/costeo"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProcesarUC  *costeo.ProcesarUseCase
	HistorialUC *costeo.HistorialUseCase // nil = sin base de datos
	AuthUC      *auth.AuthUseCase
	Workbooks   costeo.WorkbookWriter
	PDFs        costeo.PDFGenerator
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Costeos (protegido, requiere Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	costeoHandler := NewCosteoHandler(deps.ProcesarUC, deps.HistorialUC, deps.Workbooks, deps.PDFs)
	costeos := protected.Group("/costeos")
	costeos.Post("/", costeoHandler.Procesar)
	costeos.Get("/", costeoHandler.List)
	costeos.Get("/:id", costeoHandler.GetByID)
}

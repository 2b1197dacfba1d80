package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/application/deduction"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *deduction.Orchestrator
	InventoryUC  *inventory.UseCase
	KardexPDFUC  *inventory.KardexPDFUseCase
	AlertService *alerting.Service
	JWTSecret    string
	// AllowNegativeStock valor por defecto para ventas que no traen el campo.
	AllowNegativeStock bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Explosión de ventas (protegido)
	deductions := protected.Group("/deductions")
	deductionHandler := NewDeductionHandler(deps.Orchestrator, deps.AllowNegativeStock)
	deductions.Post("/sale", deductionHandler.ProcessSale)
	deductions.Post("/preview", deductionHandler.Preview)

	// Kardex y entradas (protegido; restock solo admin/bodeguero)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.KardexPDFUC)
	invGroup.Post("/restock", RequireRole("admin", "bodeguero"), inventoryHandler.Restock)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/items/:id/reconciliation", inventoryHandler.Reconciliation)
	invGroup.Get("/items/:id/kardex.pdf", inventoryHandler.KardexPDF)

	// Alertas de stock (protegido)
	alerts := protected.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertService)
	alerts.Get("/", alertHandler.ListActive)
}

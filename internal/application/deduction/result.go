package deduction

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Estados terminales de una línea de venta.
const (
	LineCompleted = "completed" // todos los insumos descontados
	LineSkipped   = "skipped"   // producto sin receta activa (warning, no error)
	LineRejected  = "rejected"  // cantidad o receta inválida; nada se mutó
	LineFailed    = "failed"    // conflicto, stock insuficiente o fallo de compensación
)

// LineResult resultado de procesar una línea de venta (agregado efímero, local al proceso).
type LineResult struct {
	ProductID    string
	QuantitySold float64
	Status       string
	Movements    []*entity.MovementRecord
	CostDeducted decimal.Decimal
	Warnings     []string
	Errors       []string
	// RequiresReconciliation marca una compensación fallida en algún insumo:
	// stock y kardex divergieron y hace falta intervención manual.
	RequiresReconciliation bool
}

// BatchResult resultado agregado de una venta completa. Success es false si
// alguna línea falló, pero ItemsDeducted/Warnings/Errors reflejan la partición
// completa: las líneas no se abortan entre sí.
type BatchResult struct {
	SaleReference          string
	Success                bool
	ItemsProcessed         int
	ItemsDeducted          int
	TotalCostDeducted      decimal.Decimal
	Movements              []*entity.MovementRecord
	Warnings               []string
	Errors                 []string
	RequiresReconciliation bool
	Lines                  []LineResult
}

// PreviewLine una línea de la vista previa: cantidad requerida por insumo más
// disponibilidad actual, sin mutar nada.
type PreviewLine struct {
	IngredientID   string
	Unit           string
	ActualQuantity decimal.Decimal
	AvailableStock decimal.Decimal
	Sufficient     bool
}

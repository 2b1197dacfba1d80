package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/deduction"
)

// SaleLineRequest una línea de la venta a procesar. La cantidad viaja como
// número JSON y se valida en el núcleo, no aquí.
type SaleLineRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// ProcessSaleRequest body para POST /api/deductions/sale.
// AllowNegativeStock es un puntero para distinguir "no enviado" (aplica el
// valor por defecto configurado en el servidor) de un false explícito.
type ProcessSaleRequest struct {
	SaleReference      string            `json:"sale_reference"`
	AllowNegativeStock *bool             `json:"allow_negative_stock,omitempty"`
	Lines              []SaleLineRequest `json:"lines"`
}

// PreviewRequest body para POST /api/deductions/preview.
type PreviewRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// MovementResponse un apunte de kardex en respuestas.
type MovementResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	CreatedAt     string          `json:"created_at"`
}

// LineResultResponse resultado por línea de venta.
type LineResultResponse struct {
	ProductID              string             `json:"product_id"`
	QuantitySold           float64            `json:"quantity_sold"`
	Status                 string             `json:"status"`
	Movements              []MovementResponse `json:"movements,omitempty"`
	CostDeducted           decimal.Decimal    `json:"cost_deducted"`
	Warnings               []string           `json:"warnings,omitempty"`
	Errors                 []string           `json:"errors,omitempty"`
	RequiresReconciliation bool               `json:"requires_reconciliation,omitempty"`
}

// BatchResultResponse resultado agregado de la venta.
type BatchResultResponse struct {
	SaleReference          string               `json:"sale_reference"`
	Success                bool                 `json:"success"`
	ItemsProcessed         int                  `json:"items_processed"`
	ItemsDeducted          int                  `json:"items_deducted"`
	TotalCostDeducted      decimal.Decimal      `json:"total_cost_deducted"`
	Warnings               []string             `json:"warnings,omitempty"`
	Errors                 []string             `json:"errors,omitempty"`
	RequiresReconciliation bool                 `json:"requires_reconciliation"`
	Lines                  []LineResultResponse `json:"lines"`
}

// PreviewLineResponse cantidad requerida y disponibilidad por insumo (dry-run).
type PreviewLineResponse struct {
	IngredientID   string          `json:"ingredient_id"`
	Unit           string          `json:"unit"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	AvailableStock decimal.Decimal `json:"available_stock"`
	Sufficient     bool            `json:"sufficient"`
}

// FromBatchResult mapea el agregado del orquestador a la respuesta HTTP.
func FromBatchResult(b *deduction.BatchResult) BatchResultResponse {
	resp := BatchResultResponse{
		SaleReference:          b.SaleReference,
		Success:                b.Success,
		ItemsProcessed:         b.ItemsProcessed,
		ItemsDeducted:          b.ItemsDeducted,
		TotalCostDeducted:      b.TotalCostDeducted,
		Warnings:               b.Warnings,
		Errors:                 b.Errors,
		RequiresReconciliation: b.RequiresReconciliation,
	}
	for _, line := range b.Lines {
		lr := LineResultResponse{
			ProductID:              line.ProductID,
			QuantitySold:           line.QuantitySold,
			Status:                 line.Status,
			CostDeducted:           line.CostDeducted,
			Warnings:               line.Warnings,
			Errors:                 line.Errors,
			RequiresReconciliation: line.RequiresReconciliation,
		}
		for _, mov := range line.Movements {
			lr.Movements = append(lr.Movements, FromMovement(mov))
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

// FromPreview mapea las líneas de vista previa.
func FromPreview(lines []deduction.PreviewLine) []PreviewLineResponse {
	out := make([]PreviewLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, PreviewLineResponse{
			IngredientID:   l.IngredientID,
			Unit:           l.Unit,
			ActualQuantity: l.ActualQuantity,
			AvailableStock: l.AvailableStock,
			Sufficient:     l.Sufficient,
		})
	}
	return out
}

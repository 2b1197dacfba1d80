package deduction

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/deduction"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// SaleLine una línea de venta entrante: producto vendido y cantidad.
// La cantidad llega como float64 del colaborador de ingesta y no se confía en su
// validación: el cálculo la rechaza si es cero, negativa, NaN o infinita.
type SaleLine struct {
	ProductID    string
	QuantitySold float64
}

// SaleInput una venta completa a explotar contra el inventario.
type SaleInput struct {
	SaleReference      string
	Lines              []SaleLine
	AllowNegativeStock bool
	ProcessedBy        string
}

// Orchestrator coordina resolver → cálculo → ledger → alertas para una venta.
// Política de aislamiento: el fallo de una línea nunca aborta las demás; cada
// línea se confirma de forma independiente (no hay transacción global de venta).
type Orchestrator struct {
	resolver   *RecipeResolver
	ledger     *StockLedger
	alerts     *alerting.Service
	items      repository.ItemRepository
	maxRetries int
}

// NewOrchestrator construye el orquestador. maxRetries acota los reintentos por
// ingrediente cuando el CAS pierde la carrera (el ledger no reintenta solo).
func NewOrchestrator(
	resolver *RecipeResolver,
	ledger *StockLedger,
	alerts *alerting.Service,
	items repository.ItemRepository,
	maxRetries int,
) *Orchestrator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Orchestrator{
		resolver:   resolver,
		ledger:     ledger,
		alerts:     alerts,
		items:      items,
		maxRetries: maxRetries,
	}
}

// ProcessSale procesa todas las líneas de la venta y agrega el resultado.
func (o *Orchestrator) ProcessSale(ctx context.Context, in SaleInput) *BatchResult {
	batch := &BatchResult{
		SaleReference:     in.SaleReference,
		Success:           true,
		TotalCostDeducted: decimal.Zero,
	}
	for _, line := range in.Lines {
		lr := o.ProcessSaleLine(ctx, line, in.SaleReference, in.AllowNegativeStock, in.ProcessedBy)
		batch.Lines = append(batch.Lines, *lr)
		batch.ItemsProcessed++
		batch.Warnings = append(batch.Warnings, lr.Warnings...)
		batch.Errors = append(batch.Errors, lr.Errors...)
		batch.Movements = append(batch.Movements, lr.Movements...)
		batch.TotalCostDeducted = batch.TotalCostDeducted.Add(lr.CostDeducted)
		// Solo una línea completada mantiene el batch exitoso; una línea
		// omitida por falta de receta también baja la bandera, aunque quede
		// registrada como warning y no como error.
		if lr.Status == LineCompleted {
			batch.ItemsDeducted++
		} else {
			batch.Success = false
		}
		if lr.RequiresReconciliation {
			// Debe seguir visible aunque líneas posteriores terminen bien.
			batch.RequiresReconciliation = true
		}
	}
	logger.Ctx(ctx).Info().
		Str("sale_reference", in.SaleReference).
		Int("items_processed", batch.ItemsProcessed).
		Int("items_deducted", batch.ItemsDeducted).
		Bool("success", batch.Success).
		Bool("requires_reconciliation", batch.RequiresReconciliation).
		Msg("venta explotada contra inventario")
	return batch
}

// ProcessSaleLine ejecuta la máquina de estados de una línea:
// Pending → Resolving → Computing → Deducting (por insumo, con reintento CAS) →
// Evaluating → Completed, con terminales Skipped / Rejected / Failed.
func (o *Orchestrator) ProcessSaleLine(ctx context.Context, line SaleLine, saleRef string, allowNegative bool, processedBy string) *LineResult {
	res := &LineResult{
		ProductID:    line.ProductID,
		QuantitySold: line.QuantitySold,
		CostDeducted: decimal.Zero,
	}

	recipe, err := o.resolver.Resolve(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			res.Status = LineSkipped
			res.Warnings = append(res.Warnings, fmt.Sprintf("producto %s sin receta activa, línea omitida", line.ProductID))
			return res
		}
		res.Status = LineFailed
		res.Errors = append(res.Errors, fmt.Sprintf("producto %s: %v", line.ProductID, err))
		return res
	}

	deductions, err := deduction.ComputeDeductions(recipe, line.QuantitySold)
	if err != nil {
		// Cantidad o rendimiento inválidos: se rechaza antes de tocar stock alguno.
		res.Status = LineRejected
		res.Errors = append(res.Errors, fmt.Sprintf("producto %s: %v", line.ProductID, err))
		return res
	}

	failed := false
	for _, d := range deductions {
		mov, err := o.deductWithRetry(ctx, DeductInput{
			ItemID:             d.IngredientID,
			Quantity:           d.ActualQuantity,
			ReferenceType:      entity.ReferenceTypeSale,
			ReferenceID:        saleRef,
			CreatedBy:          processedBy,
			AllowNegativeStock: allowNegative,
		})
		if err != nil {
			failed = true
			res.Errors = append(res.Errors, fmt.Sprintf("insumo %s: %v", d.IngredientID, err))
			if errors.Is(err, domain.ErrCompensationFailed) {
				res.RequiresReconciliation = true
			}
			// Los insumos ya descontados de esta línea permanecen confirmados:
			// no hay rollback entre insumos, el resultado los itemiza.
			continue
		}
		res.Movements = append(res.Movements, mov)
		res.CostDeducted = res.CostDeducted.Add(mov.TotalCost.Neg())

		// Severidad derivada del mismo valor recién mutado, no de una relectura.
		if err := o.alerts.Evaluate(ctx, mov.ItemID, mov.NewStock); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("alerta de %s: %v", mov.ItemID, err))
		}
	}

	if failed {
		res.Status = LineFailed
	} else {
		res.Status = LineCompleted
	}
	return res
}

// deductWithRetry reintenta el descuento hasta maxRetries veces adicionales
// cuando el update condicional pierde la carrera; cada intento relee el insumo.
// Cualquier otro error corta de inmediato.
func (o *Orchestrator) deductWithRetry(ctx context.Context, in DeductInput) (*entity.MovementRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		mov, err := o.ledger.Deduct(ctx, in)
		if err == nil {
			return mov, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
		logger.Ctx(ctx).Debug().
			Str("item_id", in.ItemID).
			Int("attempt", attempt+1).
			Msg("conflicto CAS, reintentando descuento")
	}
	return nil, lastErr
}

// PreviewDeduction devuelve las mismas cantidades por insumo que produciría la
// ejecución real (comparten ComputeDeductions sin modificación), enriquecidas
// con la disponibilidad actual. Solo lecturas: jamás pasa por el ledger.
func (o *Orchestrator) PreviewDeduction(ctx context.Context, productID string, quantitySold float64) ([]PreviewLine, error) {
	recipe, err := o.resolver.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}
	deductions, err := deduction.ComputeDeductions(recipe, quantitySold)
	if err != nil {
		return nil, err
	}

	lines := make([]PreviewLine, 0, len(deductions))
	for _, d := range deductions {
		pl := PreviewLine{
			IngredientID:   d.IngredientID,
			Unit:           d.Unit,
			ActualQuantity: d.ActualQuantity,
		}
		item, err := o.items.Get(ctx, d.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("leer insumo %s: %w", d.IngredientID, err)
		}
		if item != nil {
			pl.AvailableStock = item.CurrentStock
			pl.Sufficient = item.CurrentStock.GreaterThanOrEqual(d.ActualQuantity)
		}
		lines = append(lines, pl)
	}
	return lines, nil
}

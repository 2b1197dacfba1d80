package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/alerting"
	"github.com/jhoicas/kardex-api/internal/application/deduction"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// UseCase operaciones de inventario alrededor del kardex: entradas de insumo,
// consulta de movimientos y verificación del invariante de conciliación.
type UseCase struct {
	ledger    *deduction.StockLedger
	alerts    *alerting.Service
	items     repository.ItemRepository
	movements repository.MovementRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	ledger *deduction.StockLedger,
	alerts *alerting.Service,
	items repository.ItemRepository,
	movements repository.MovementRepository,
) *UseCase {
	return &UseCase{ledger: ledger, alerts: alerts, items: items, movements: movements}
}

// Restock registra una entrada de insumo por el mismo camino CAS + kardex que
// los descuentos, y reevalúa la alerta activa (la resuelve si el stock se recuperó).
func (uc *UseCase) Restock(ctx context.Context, itemID string, quantity, unitCost decimal.Decimal, referenceID, createdBy string) (*entity.MovementRecord, error) {
	if !quantity.IsPositive() || unitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	refType := entity.ReferenceTypePurchase
	if referenceID == "" {
		refType = entity.ReferenceTypeManual
	}
	mov, err := uc.ledger.Restock(ctx, deduction.RestockInput{
		ItemID:        itemID,
		Quantity:      quantity,
		UnitCost:      unitCost,
		ReferenceType: refType,
		ReferenceID:   referenceID,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return nil, err
	}
	// La entrada ya quedó confirmada en stock y kardex; un fallo del subsistema
	// de alertas no la convierte en error (el cliente reintentaría y duplicaría
	// la entrada). Se degrada a warning, igual que en las ventas.
	if err := uc.alerts.Evaluate(ctx, mov.ItemID, mov.NewStock); err != nil {
		logger.Ctx(ctx).Warn().
			Str("item_id", mov.ItemID).
			Err(err).
			Msg("reevaluar alerta tras entrada de insumo")
	}
	return mov, nil
}

// ListMovements lista el kardex de un insumo en un rango de fechas.
func (uc *UseCase) ListMovements(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return uc.movements.ListByItem(ctx, itemID, from, to, limit, offset)
}

// ReconciliationReport comparación entre el contador de stock y el kardex.
type ReconciliationReport struct {
	ItemID        string
	CurrentStock  decimal.Decimal
	InitialStock  decimal.Decimal
	MovementTotal decimal.Decimal // Σ(quantity) de movimientos confirmados
	ExpectedStock decimal.Decimal // InitialStock + MovementTotal
	Drift         decimal.Decimal // CurrentStock - ExpectedStock
	Consistent    bool
	CheckedAt     time.Time
}

// Reconcile verifica el invariante final_stock == initial_stock + Σ(movimientos).
// Un drift distinto de cero señala la divergencia que deja una compensación
// fallida (o escritura fuera del ledger) y es el punto de partida de la
// conciliación manual.
func (uc *UseCase) Reconcile(ctx context.Context, itemID string) (*ReconciliationReport, error) {
	item, err := uc.items.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("leer insumo %s: %w", itemID, err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	total, err := uc.movements.SumByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("sumar kardex de %s: %w", itemID, err)
	}

	expected := item.InitialStock.Add(total)
	drift := item.CurrentStock.Sub(expected)
	return &ReconciliationReport{
		ItemID:        itemID,
		CurrentStock:  item.CurrentStock,
		InitialStock:  item.InitialStock,
		MovementTotal: total,
		ExpectedStock: expected,
		Drift:         drift,
		Consistent:    drift.IsZero(),
		CheckedAt:     time.Now(),
	}, nil
}

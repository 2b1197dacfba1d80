package deduction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// StockLedger es el dueño de la operación atómica "mutar stock + apuntar en kardex"
// para un insumo. Concurrencia optimista: la mutación es un update condicional sobre
// la columna version (ningún lock de aplicación cruza I/O). Dos fases deliberadas,
// mutate-then-record con compensación si el apunte falla, en lugar de una transacción
// que abarque ambas tablas: cada paso queda como operación de una sola fila y la
// ventana de inconsistencia es estrecha y detectada explícitamente.
//
// Este componente nunca reintenta un conflicto de concurrencia; el reintento
// acotado es decisión del caller.
type StockLedger struct {
	items     repository.ItemRepository
	movements repository.MovementRepository
}

// NewStockLedger construye el ledger.
func NewStockLedger(items repository.ItemRepository, movements repository.MovementRepository) *StockLedger {
	return &StockLedger{items: items, movements: movements}
}

// DeductInput parámetros para descontar stock de un insumo.
type DeductInput struct {
	ItemID        string
	Quantity      decimal.Decimal // magnitud positiva a descontar
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
	// AllowNegativeStock permite que el stock quede bajo cero (override explícito del caller).
	AllowNegativeStock bool
}

// RestockInput parámetros para una entrada de insumo.
type RestockInput struct {
	ItemID        string
	Quantity      decimal.Decimal // magnitud positiva a ingresar
	UnitCost      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
}

// Deduct descuenta stock y apunta el movimiento en el kardex.
//
// Pasos:
//  1. Lee el insumo (stock, versión, activo, soft delete).
//  2. Rechaza insumo inactivo o borrado (ErrItemNotFound).
//  3. newStock = current - quantity; si queda negativo sin override, ErrInsufficientStock
//     y no hay mutación alguna.
//  4. Update condicional sobre version; cero filas afectadas = otro escritor ganó
//     la carrera, ErrConcurrencyConflict.
//  5. Apunta el MovementRecord. Si el insert falla, un único intento de compensación
//     revierte el stock al valor previo; si la compensación también falla, se
//     devuelve ErrCompensationFailed: stock y kardex divergieron.
func (l *StockLedger) Deduct(ctx context.Context, in DeductInput) (*entity.MovementRecord, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	return l.apply(ctx, applyInput{
		itemID:             in.ItemID,
		delta:              in.Quantity.Neg(),
		movementType:       entity.MovementTypeSale,
		referenceType:      in.ReferenceType,
		referenceID:        in.ReferenceID,
		createdBy:          in.CreatedBy,
		allowNegativeStock: in.AllowNegativeStock,
	})
}

// Restock ingresa stock con la misma forma CAS + apunte + compensación que Deduct.
func (l *StockLedger) Restock(ctx context.Context, in RestockInput) (*entity.MovementRecord, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	return l.apply(ctx, applyInput{
		itemID:        in.ItemID,
		delta:         in.Quantity,
		movementType:  entity.MovementTypeRestock,
		referenceType: in.ReferenceType,
		referenceID:   in.ReferenceID,
		createdBy:     in.CreatedBy,
		unitCost:      &in.UnitCost,
		// Una entrada nunca baja el stock; el override no aplica.
		allowNegativeStock: true,
	})
}

type applyInput struct {
	itemID             string
	delta              decimal.Decimal // firmado: negativo = consumo
	movementType       string
	referenceType      string
	referenceID        string
	createdBy          string
	unitCost           *decimal.Decimal // nil = usar costo del insumo
	allowNegativeStock bool
}

func (l *StockLedger) apply(ctx context.Context, in applyInput) (*entity.MovementRecord, error) {
	item, err := l.items.Get(ctx, in.itemID)
	if err != nil {
		return nil, fmt.Errorf("leer insumo %s: %w", in.itemID, err)
	}
	if item == nil || !item.Usable() {
		return nil, domain.ErrItemNotFound
	}

	newStock := item.CurrentStock.Add(in.delta)
	if newStock.IsNegative() && !in.allowNegativeStock {
		return nil, domain.ErrInsufficientStock
	}

	affected, err := l.items.UpdateStockVersioned(ctx, item.ID, newStock, item.Version)
	if err != nil {
		return nil, fmt.Errorf("update condicional de stock %s: %w", item.ID, err)
	}
	if !affected {
		return nil, domain.ErrConcurrencyConflict
	}

	unitCost := item.UnitCost
	if in.unitCost != nil {
		unitCost = *in.unitCost
	}
	now := time.Now()
	mov := &entity.MovementRecord{
		ID:            uuid.New().String(),
		ItemID:        item.ID,
		BranchID:      item.BranchID,
		Type:          in.movementType,
		Quantity:      in.delta,
		PreviousStock: item.CurrentStock,
		NewStock:      newStock,
		ReferenceType: in.referenceType,
		ReferenceID:   in.referenceID,
		UnitCost:      unitCost,
		TotalCost:     in.delta.Mul(unitCost),
		CreatedAt:     now,
		CreatedBy:     in.createdBy,
	}

	if err := l.movements.Create(ctx, mov); err != nil {
		return nil, l.compensate(ctx, item, err)
	}
	return mov, nil
}

// compensate revierte el stock al valor previo tras un fallo de apunte en kardex.
// Un solo intento: la versión esperada es la que dejó nuestra propia mutación
// (item.Version+1), así la reversión no pisa escrituras ajenas posteriores.
func (l *StockLedger) compensate(ctx context.Context, item *entity.InventoryItem, appendErr error) error {
	reverted, err := l.items.UpdateStockVersioned(ctx, item.ID, item.CurrentStock, item.Version+1)
	if err == nil && reverted {
		logger.Ctx(ctx).Warn().
			Str("item_id", item.ID).
			Str("stock", item.CurrentStock.String()).
			Err(appendErr).
			Msg("apunte de kardex falló; stock revertido por compensación")
		return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, appendErr)
	}
	// Stock mutado, kardex sin apunte y reversión fallida: la única condición
	// que exige conciliación manual. Jamás se degrada a un error ordinario.
	ev := logger.Ctx(ctx).Error().
		Str("item_id", item.ID).
		Str("expected_stock", item.CurrentStock.String()).
		AnErr("append_error", appendErr)
	if err != nil {
		ev = ev.AnErr("compensation_error", err)
	}
	ev.Msg("COMPENSACIÓN FALLIDA: stock y kardex divergieron, conciliar manualmente")
	if err != nil {
		return fmt.Errorf("%w: apunte: %v; reversión: %v", domain.ErrCompensationFailed, appendErr, err)
	}
	return fmt.Errorf("%w: apunte: %v; reversión perdió la carrera de versión", domain.ErrCompensationFailed, appendErr)
}

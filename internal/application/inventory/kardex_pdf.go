package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// KardexPDFGenerator puerto para la representación gráfica del kardex de un insumo.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, item *entity.InventoryItem, movements []*entity.MovementRecord, report *ReconciliationReport) ([]byte, error)
}

// KardexPDFUseCase arma el reporte PDF del kardex: insumo, movimientos y totales
// de conciliación.
type KardexPDFUseCase struct {
	base      *UseCase
	items     repository.ItemRepository
	movements repository.MovementRepository
	generator KardexPDFGenerator
}

// NewKardexPDFUseCase construye el caso de uso.
func NewKardexPDFUseCase(base *UseCase, items repository.ItemRepository, movements repository.MovementRepository, generator KardexPDFGenerator) *KardexPDFUseCase {
	return &KardexPDFUseCase{base: base, items: items, movements: movements, generator: generator}
}

// kardexPDFMaxRows tope de movimientos en el reporte; el kardex completo sale por el listado paginado.
const kardexPDFMaxRows = 500

// Generate produce el PDF del kardex del insumo.
func (uc *KardexPDFUseCase) Generate(ctx context.Context, itemID string) ([]byte, error) {
	item, err := uc.items.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("leer insumo %s: %w", itemID, err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	movements, err := uc.movements.ListByItem(ctx, itemID, nil, nil, kardexPDFMaxRows, 0)
	if err != nil {
		return nil, fmt.Errorf("listar kardex de %s: %w", itemID, err)
	}
	report, err := uc.base.Reconcile(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateKardexPDF(ctx, item, movements, report)
}

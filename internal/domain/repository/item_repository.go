package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para insumos.
// No expone escritura directa de stock: toda mutación pasa por UpdateStockVersioned,
// que solo afecta la fila si Version no cambió desde la lectura (bloqueo optimista).
type ItemRepository interface {
	Get(ctx context.Context, itemID string) (*entity.InventoryItem, error)
	// UpdateStockVersioned aplica el CAS: set current_stock = newStock, version = version+1
	// WHERE id = itemID AND version = expectedVersion. Devuelve false si no afectó filas
	// (otro escritor ganó la carrera). La señal "exactamente una fila" es obligatoria.
	UpdateStockVersioned(ctx context.Context, itemID string, newStock decimal.Decimal, expectedVersion int64) (bool, error)
	ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.InventoryItem, error)
}

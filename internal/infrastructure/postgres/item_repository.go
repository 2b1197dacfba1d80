package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de insumos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, branch_id, name, unit, current_stock, initial_stock, minimum_stock, unit_cost, version, is_active, created_at, updated_at, deleted_at`

// Get obtiene un insumo por ID, incluido su contador de versión.
func (r *ItemRepo) Get(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`
	item, err := scanItem(r.q.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// UpdateStockVersioned aplica el update condicional: la fila solo cambia si la
// versión sigue siendo la leída. RowsAffected es la señal que decide la carrera;
// cero filas significa que otro escritor ya avanzó el contador.
func (r *ItemRepo) UpdateStockVersioned(ctx context.Context, itemID string, newStock decimal.Decimal, expectedVersion int64) (bool, error) {
	query := `
		UPDATE inventory_items
		SET current_stock = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3`
	tag, err := r.q.Exec(ctx, query, newStock, itemID, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("update stock versioned: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByBranch lista insumos de una sucursal.
func (r *ItemRepo) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE branch_id = $1 AND deleted_at IS NULL
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	err := row.Scan(
		&i.ID, &i.BranchID, &i.Name, &i.Unit,
		&i.CurrentStock, &i.InitialStock, &i.MinimumStock, &i.UnitCost,
		&i.Version, &i.IsActive, &i.CreatedAt, &i.UpdatedAt, &i.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

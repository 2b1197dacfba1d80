package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no existen Update ni Delete.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, branch_id, type, quantity, previous_stock, new_stock, reference_type, reference_id, unit_cost, total_cost, created_at, created_by`

// Create apunta un movimiento en el kardex. El insert debe afectar exactamente una fila.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.MovementRecord) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	referenceID := (*string)(nil)
	if movement.ReferenceID != "" {
		referenceID = &movement.ReferenceID
	}
	tag, err := r.q.Exec(ctx, query,
		movement.ID, movement.ItemID, movement.BranchID, movement.Type,
		movement.Quantity, movement.PreviousStock, movement.NewStock,
		movement.ReferenceType, referenceID,
		movement.UnitCost, movement.TotalCost,
		movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("create movement: %d filas afectadas", tag.RowsAffected())
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	mov, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return mov, nil
}

// ListByItem lista el kardex de un insumo en un rango de fechas.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by item: %w", err)
	}
	defer rows.Close()

	var list []*entity.MovementRecord
	for rows.Next() {
		mov, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, mov)
	}
	return list, rows.Err()
}

// SumByItem devuelve Σ(quantity) de los movimientos confirmados del insumo.
func (r *MovementRepo) SumByItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE item_id = $1`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, itemID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum by item: %w", err)
	}
	return total, nil
}

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	var referenceID, createdBy *string
	err := row.Scan(
		&m.ID, &m.ItemID, &m.BranchID, &m.Type,
		&m.Quantity, &m.PreviousStock, &m.NewStock,
		&m.ReferenceType, &referenceID,
		&m.UnitCost, &m.TotalCost,
		&m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if referenceID != nil {
		m.ReferenceID = *referenceID
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación de AlertRepository sobre PostgreSQL.
// Un índice único parcial (item_id WHERE status = 'active') respalda en BD la
// regla de a lo sumo una alerta activa por insumo.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

const alertColumns = `id, item_id, branch_id, severity, percentage_remaining, status, created_at, updated_at, resolved_at`

// GetActiveByItem devuelve la alerta activa del insumo o (nil, nil) si no hay.
func (r *AlertRepo) GetActiveByItem(ctx context.Context, itemID string) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE item_id = $1 AND status = 'active'`
	alert, err := scanAlert(r.q.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active alert: %w", err)
	}
	return alert, nil
}

// Create persiste una alerta nueva.
func (r *AlertRepo) Create(ctx context.Context, alert *entity.Alert) error {
	query := `
		INSERT INTO stock_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		alert.ID, alert.ItemID, alert.BranchID, alert.Severity,
		alert.PercentageRemaining, alert.Status,
		alert.CreatedAt, alert.UpdatedAt, alert.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Carrera con otro escritor que ya levantó la alerta; la regla de
			// idempotencia la resuelve el siguiente Evaluate con un update.
			return nil
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// UpdateActive actualiza severidad y porcentaje de la alerta activa en sitio.
func (r *AlertRepo) UpdateActive(ctx context.Context, alert *entity.Alert) error {
	query := `
		UPDATE stock_alerts
		SET severity = $1, percentage_remaining = $2, updated_at = $3
		WHERE item_id = $4 AND status = 'active'`
	_, err := r.q.Exec(ctx, query, alert.Severity, alert.PercentageRemaining, alert.UpdatedAt, alert.ItemID)
	if err != nil {
		return fmt.Errorf("update active alert: %w", err)
	}
	return nil
}

// ResolveActive marca como resuelta la alerta activa del insumo, si existe.
func (r *AlertRepo) ResolveActive(ctx context.Context, itemID string) error {
	query := `
		UPDATE stock_alerts
		SET status = 'resolved', resolved_at = now(), updated_at = now()
		WHERE item_id = $1 AND status = 'active'`
	_, err := r.q.Exec(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	return nil
}

// ListActiveByBranch lista alertas activas de una sucursal, más severas primero.
func (r *AlertRepo) ListActiveByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.Alert, error) {
	query := `SELECT ` + alertColumns + `
		FROM stock_alerts
		WHERE branch_id = $1 AND status = 'active'
		ORDER BY CASE severity WHEN 'critical' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END, updated_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()

	var list []*entity.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, alert)
	}
	return list, rows.Err()
}

func scanAlert(row pgx.Row) (*entity.Alert, error) {
	var a entity.Alert
	err := row.Scan(
		&a.ID, &a.ItemID, &a.BranchID, &a.Severity,
		&a.PercentageRemaining, &a.Status,
		&a.CreatedAt, &a.UpdatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AlertRepository define el puerto de persistencia para alertas de stock.
type AlertRepository interface {
	// GetActiveByItem devuelve la alerta activa del insumo o (nil, nil) si no hay.
	GetActiveByItem(ctx context.Context, itemID string) (*entity.Alert, error)
	Create(ctx context.Context, alert *entity.Alert) error
	// UpdateActive actualiza severidad y porcentaje de la alerta activa en sitio.
	UpdateActive(ctx context.Context, alert *entity.Alert) error
	// ResolveActive marca como resuelta la alerta activa del insumo, si existe.
	ResolveActive(ctx context.Context, itemID string) error
	ListActiveByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.Alert, error)
}

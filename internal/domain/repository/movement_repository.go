package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para el kardex (append-only).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.MovementRecord) error
	GetByID(ctx context.Context, id string) (*entity.MovementRecord, error)
	ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error)
	// SumByItem devuelve Σ(quantity) de todos los movimientos confirmados del insumo,
	// para verificar el invariante de conciliación contra current_stock.
	SumByItem(ctx context.Context, itemID string) (decimal.Decimal, error)
}

package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/alerting"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// Service mantiene las alertas de stock: evaluación de severidad tras cada
// mutación y garantía de a lo sumo una alerta activa por insumo.
type Service struct {
	items  repository.ItemRepository
	alerts repository.AlertRepository
}

// NewService construye el servicio de alertas.
func NewService(items repository.ItemRepository, alerts repository.AlertRepository) *Service {
	return &Service{items: items, alerts: alerts}
}

// Evaluate clasifica currentStock (el valor recién mutado, no una relectura del
// contador) contra el mínimo configurado del insumo. Si el stock cayó al mínimo
// o por debajo levanta/actualiza la alerta activa; si se recuperó, la resuelve.
func (s *Service) Evaluate(ctx context.Context, itemID string, currentStock decimal.Decimal) error {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("leer insumo %s: %w", itemID, err)
	}
	if item == nil {
		return nil
	}

	if !alerting.BelowMinimum(currentStock, item.MinimumStock) {
		if err := s.alerts.ResolveActive(ctx, itemID); err != nil {
			return fmt.Errorf("resolver alerta de %s: %w", itemID, err)
		}
		return nil
	}

	severity, pct := alerting.SeverityFor(currentStock, item.MinimumStock)
	return s.EnsureActiveAlert(ctx, item, severity, pct)
}

// EnsureActiveAlert es idempotente: si ya existe alerta activa para el insumo se
// actualizan severidad y porcentaje en sitio; si no, se crea una nueva.
func (s *Service) EnsureActiveAlert(ctx context.Context, item *entity.InventoryItem, severity string, pct decimal.Decimal) error {
	existing, err := s.alerts.GetActiveByItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("buscar alerta activa de %s: %w", item.ID, err)
	}
	now := time.Now()
	if existing != nil {
		existing.Severity = severity
		existing.PercentageRemaining = pct
		existing.UpdatedAt = now
		if err := s.alerts.UpdateActive(ctx, existing); err != nil {
			return fmt.Errorf("actualizar alerta de %s: %w", item.ID, err)
		}
		return nil
	}

	alert := &entity.Alert{
		ID:                  uuid.New().String(),
		ItemID:              item.ID,
		BranchID:            item.BranchID,
		Severity:            severity,
		PercentageRemaining: pct,
		Status:              entity.AlertStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return fmt.Errorf("crear alerta de %s: %w", item.ID, err)
	}
	logger.Ctx(ctx).Info().
		Str("item_id", item.ID).
		Str("severity", severity).
		Str("pct_remaining", pct.StringFixed(2)).
		Msg("alerta de stock levantada")
	return nil
}

// ListActive devuelve las alertas activas de una sucursal.
func (s *Service) ListActive(ctx context.Context, branchID string, limit, offset int) ([]*entity.Alert, error) {
	return s.alerts.ListActiveByBranch(ctx, branchID, limit, offset)
}

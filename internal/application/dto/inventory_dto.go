package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// RestockRequest body para POST /api/inventory/restock.
type RestockRequest struct {
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	ReferenceID string          `json:"reference_id,omitempty"` // orden de compra, remisión, etc.
}

// MovementListRequest query para GET /api/inventory/movements.
type MovementListRequest struct {
	ItemID string `query:"item_id"`
	From   string `query:"from"` // RFC 3339
	To     string `query:"to"`
	PageRequest
}

// ReconciliationResponse reporte de conciliación stock vs kardex.
type ReconciliationResponse struct {
	ItemID        string          `json:"item_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	InitialStock  decimal.Decimal `json:"initial_stock"`
	MovementTotal decimal.Decimal `json:"movement_total"`
	ExpectedStock decimal.Decimal `json:"expected_stock"`
	Drift         decimal.Decimal `json:"drift"`
	Consistent    bool            `json:"consistent"`
	CheckedAt     string          `json:"checked_at"`
}

// AlertResponse una alerta de stock en respuestas.
type AlertResponse struct {
	ID                  string          `json:"id"`
	ItemID              string          `json:"item_id"`
	Severity            string          `json:"severity"`
	PercentageRemaining decimal.Decimal `json:"percentage_remaining"`
	Status              string          `json:"status"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

// FromMovement mapea un apunte de kardex.
func FromMovement(m *entity.MovementRecord) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

// FromMovements mapea una lista de apuntes.
func FromMovements(list []*entity.MovementRecord) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// FromReconciliation mapea el reporte de conciliación.
func FromReconciliation(r *inventory.ReconciliationReport) ReconciliationResponse {
	return ReconciliationResponse{
		ItemID:        r.ItemID,
		CurrentStock:  r.CurrentStock,
		InitialStock:  r.InitialStock,
		MovementTotal: r.MovementTotal,
		ExpectedStock: r.ExpectedStock,
		Drift:         r.Drift,
		Consistent:    r.Consistent,
		CheckedAt:     r.CheckedAt.Format(time.RFC3339),
	}
}

// FromAlert mapea una alerta.
func FromAlert(a *entity.Alert) AlertResponse {
	return AlertResponse{
		ID:                  a.ID,
		ItemID:              a.ItemID,
		Severity:            a.Severity,
		PercentageRemaining: a.PercentageRemaining,
		Status:              a.Status,
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           a.UpdatedAt.Format(time.RFC3339),
	}
}

// FromAlerts mapea una lista de alertas.
func FromAlerts(list []*entity.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromAlert(a))
	}
	return out
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severidades de alerta de stock.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityLow      = "low"
)

// Estados de alerta.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// Alert aviso de stock bajo para un insumo. A lo sumo una alerta activa por insumo:
// la creación es idempotente (si ya existe, se actualiza severidad y porcentaje).
type Alert struct {
	ID                  string
	ItemID              string
	BranchID            string
	Severity            string
	PercentageRemaining decimal.Decimal
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ResolvedAt          *time.Time
}

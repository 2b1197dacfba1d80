package alerting

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// SeverityFor clasifica el stock restante frente a su mínimo configurado
// (función pura y única; la lógica no se replica en otros puntos de llamada).
//
// Mínimo <= 0 es un piso inválido/ausente y devuelve siempre critical: un
// mínimo sin configurar nunca se interpreta como "sin riesgo".
// Con mínimo válido: pct = current/minimum*100; pct < 50 critical,
// 50 <= pct < 75 warning, pct >= 75 low.
func SeverityFor(currentStock, minimumStock decimal.Decimal) (severity string, percentage decimal.Decimal) {
	if !minimumStock.IsPositive() {
		return entity.SeverityCritical, decimal.Zero
	}
	pct := currentStock.Div(minimumStock).Mul(hundred)
	switch {
	case pct.LessThan(decimal.NewFromInt(50)):
		return entity.SeverityCritical, pct
	case pct.LessThan(decimal.NewFromInt(75)):
		return entity.SeverityWarning, pct
	default:
		return entity.SeverityLow, pct
	}
}

// BelowMinimum indica si el stock cayó al mínimo o por debajo (o el mínimo es
// inválido), es decir, si corresponde levantar o mantener una alerta activa.
func BelowMinimum(currentStock, minimumStock decimal.Decimal) bool {
	if !minimumStock.IsPositive() {
		return true
	}
	return currentStock.LessThanOrEqual(minimumStock)
}

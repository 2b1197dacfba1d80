package deduction

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// IngredientDeduction cantidad real a descontar de un insumo para una venta.
type IngredientDeduction struct {
	IngredientID   string
	Unit           string
	ActualQuantity decimal.Decimal
}

// ComputeDeductions calcula, para (receta, cantidad vendida), la cantidad real a
// descontar por insumo (servicio de dominio, función pura):
//
//	factor   = cantidadVendida / rendimiento
//	cantidad = base * factor * (1 + merma)
//
// La vista previa y la ejecución real comparten exactamente esta función; así los
// números previsualizados coinciden con los que la ejecución descuenta.
//
// Validaciones, en orden y con error propio cada una:
//  1. quantitySold finita, no NaN y estrictamente positiva.
//  2. YieldQuantity estrictamente positivo; un rendimiento cero o ausente es un
//     dato corrupto y nunca se asume 1.
func ComputeDeductions(recipe *entity.Recipe, quantitySold float64) ([]IngredientDeduction, error) {
	if math.IsNaN(quantitySold) || math.IsInf(quantitySold, 0) || quantitySold <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if recipe == nil || !recipe.YieldQuantity.IsPositive() {
		return nil, domain.ErrInvalidYield
	}

	sold := decimal.NewFromFloat(quantitySold)
	scaleFactor := sold.Div(recipe.YieldQuantity)
	one := decimal.NewFromInt(1)

	deductions := make([]IngredientDeduction, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		actual := ing.BaseQuantity.Mul(scaleFactor).Mul(one.Add(ing.WastePercentage))
		deductions = append(deductions, IngredientDeduction{
			IngredientID:   ing.IngredientID,
			Unit:           ing.Unit,
			ActualQuantity: actual,
		})
	}
	return deductions, nil
}

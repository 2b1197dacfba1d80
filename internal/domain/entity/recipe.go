package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe define la explosión de un producto vendible en sus insumos.
// Es de solo lectura para este núcleo; la gestión de recetas vive en otro servicio.
type Recipe struct {
	ID            string
	ProductID     string
	BranchID      string
	Name          string
	YieldQuantity decimal.Decimal // debe ser > 0 para ser usable
	Ingredients   []RecipeIngredient
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeIngredient una línea de la receta: cuánto insumo consume una tanda (yield) del producto.
type RecipeIngredient struct {
	ID              string
	RecipeID        string
	IngredientID    string
	BaseQuantity    decimal.Decimal // > 0
	Unit            string
	WastePercentage decimal.Decimal // fracción, ej. 0.10 = 10% de merma; 0 por defecto
	Position        int
}

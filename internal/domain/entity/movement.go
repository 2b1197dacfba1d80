package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de kardex.
const (
	MovementTypeSale       = "SALE"       // descuento por venta (explosión de receta)
	MovementTypeRestock    = "RESTOCK"    // entrada de insumo
	MovementTypeAdjustment = "ADJUSTMENT" // ajuste manual
)

// Tipos de referencia al documento que originó el movimiento.
const (
	ReferenceTypeSale     = "sale"
	ReferenceTypePurchase = "purchase"
	ReferenceTypeManual   = "manual"
)

// MovementRecord es un apunte inmutable del kardex: nunca se actualiza ni borra
// una vez confirmado. Quantity es el delta firmado (negativo = consumo).
// Invariante: NewStock = PreviousStock + Quantity, exacto al momento de crearse.
type MovementRecord struct {
	ID            string
	ItemID        string
	BranchID      string
	Type          string
	Quantity      decimal.Decimal
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	CreatedAt     time.Time
	CreatedBy     string
}

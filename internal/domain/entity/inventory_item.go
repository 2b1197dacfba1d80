package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa un insumo (materia prima) con su stock actual por sucursal.
// current_stock solo se muta vía el update condicional del ledger; Version es la
// columna de bloqueo optimista que avanza en cada mutación exitosa.
//
// Invariante de conciliación: CurrentStock == InitialStock + Σ(movimientos)
// sobre todos los movimientos confirmados del insumo, salvo la ventana estrecha
// entre una mutación exitosa y su apunte de kardex aún pendiente.
type InventoryItem struct {
	ID           string
	BranchID     string
	Name         string
	Unit         string // unidades, kg, gramos, litros, ml
	CurrentStock decimal.Decimal
	InitialStock decimal.Decimal
	MinimumStock decimal.Decimal // <= 0 se trata como mínimo inválido, no como "sin mínimo"
	UnitCost     decimal.Decimal
	Version      int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time // soft delete
}

// Usable indica si el insumo admite movimientos (activo y no borrado).
func (i *InventoryItem) Usable() bool {
	return i.IsActive && i.DeletedAt == nil
}

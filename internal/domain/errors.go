package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrItemNotFound   = errors.New("insumo no encontrado o inactivo")
	ErrRecipeNotFound = errors.New("el producto no tiene receta activa")
	ErrInvalidInput   = errors.New("entrada inválida")

	// ErrInvalidQuantity: cantidad vendida cero, negativa, NaN o infinita.
	ErrInvalidQuantity = errors.New("cantidad vendida inválida")
	// ErrInvalidYield: receta con rendimiento cero o negativo; dato corrupto, nunca se asume 1.
	ErrInvalidYield = errors.New("rendimiento de receta inválido")

	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConcurrencyConflict: el update condicional no afectó filas; otro escritor ganó la carrera.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia en stock")
	// ErrLedgerWrite: falló el insert en el kardex después de mutar el stock.
	ErrLedgerWrite = errors.New("fallo al registrar movimiento en kardex")
	// ErrCompensationFailed: el stock quedó mutado y la reversión también falló.
	// Stock y kardex divergieron: requiere conciliación manual. Nunca se degrada a otro error.
	ErrCompensationFailed = errors.New("compensación de stock fallida: requiere conciliación manual")
)

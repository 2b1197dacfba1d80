package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// RecipeRepository define el puerto de lectura de recetas (catálogo externo, solo lectura).
type RecipeRepository interface {
	// GetActiveByProduct devuelve la receta activa del producto con sus ingredientes
	// ordenados, o (nil, nil) si el producto no tiene receta activa: ese caso es
	// frecuente y esperado, no un error de persistencia.
	GetActiveByProduct(ctx context.Context, productID string) (*entity.Recipe, error)
}

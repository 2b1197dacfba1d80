package deduction

import (
	"context"
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// RecipeResolver resuelve la receta activa de un producto vendido (solo lectura).
type RecipeResolver struct {
	recipes repository.RecipeRepository
}

// NewRecipeResolver construye el resolver.
func NewRecipeResolver(recipes repository.RecipeRepository) *RecipeResolver {
	return &RecipeResolver{recipes: recipes}
}

// Resolve devuelve la receta activa del producto. Un producto sin receta es un
// caso frecuente y esperado (ítems sin mapear): se señala con ErrRecipeNotFound,
// distinguible de un fallo de persistencia.
func (r *RecipeResolver) Resolve(ctx context.Context, productID string) (*entity.Recipe, error) {
	recipe, err := r.recipes.GetActiveByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("consultar receta de %s: %w", productID, err)
	}
	if recipe == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return recipe, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo lectura de recetas sobre PostgreSQL. El catálogo de recetas lo
// gestiona otro servicio; aquí solo se consulta.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetActiveByProduct devuelve la receta activa del producto con sus ingredientes
// ordenados por posición, o (nil, nil) si no existe: producto sin receta es un
// caso esperado, no un error.
func (r *RecipeRepo) GetActiveByProduct(ctx context.Context, productID string) (*entity.Recipe, error) {
	query := `
		SELECT id, product_id, branch_id, name, yield_quantity, is_active, created_at, updated_at
		FROM recipes
		WHERE product_id = $1 AND is_active = true AND deleted_at IS NULL`
	var rec entity.Recipe
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&rec.ID, &rec.ProductID, &rec.BranchID, &rec.Name,
		&rec.YieldQuantity, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	ingQuery := `
		SELECT id, recipe_id, ingredient_id, base_quantity, unit, COALESCE(waste_percentage, 0), position
		FROM recipe_ingredients
		WHERE recipe_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, ingQuery, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing entity.RecipeIngredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.IngredientID,
			&ing.BaseQuantity, &ing.Unit, &ing.WastePercentage, &ing.Position); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

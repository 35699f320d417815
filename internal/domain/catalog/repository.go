package catalog

import (
	"context"

	"github.com/google/uuid"
)

// IngredientRepository defines persistence operations for ingredients
type IngredientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Ingredient, error)
	FindAll(ctx context.Context) ([]Ingredient, error)
	Save(ctx context.Context, ingredient *Ingredient) error
	// Delete removes an ingredient. Implementations must refuse the delete
	// while recipes or branch inventory still reference the ingredient.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecipeRepository defines read access to recipe rows.
// Recipes are maintained by catalog management; the ledger core only reads them.
type RecipeRepository interface {
	FindByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]Recipe, error)
	FindByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]Recipe, error)
}

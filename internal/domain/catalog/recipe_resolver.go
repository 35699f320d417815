package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeLine is one resolved ingredient requirement for a single unit of a
// menu item. Ingredient identity is unique within a resolved result.
type RecipeLine struct {
	IngredientID    uuid.UUID
	QuantityPerUnit decimal.Decimal
	Unit            string
}

// SaleLine is the resolver's view of one sold order line.
type SaleLine struct {
	MenuItemID        uuid.UUID
	MenuItemVariantID *uuid.UUID
	Quantity          decimal.Decimal
}

// RecipeResolver resolves the ingredient consumption of sold menu items.
//
// Resolution applies variant-override-then-base-fallback: when a variant is
// given, a variant-scoped row fully replaces the base row for the same
// ingredient; base rows still apply for ingredients the variant does not
// cover. A menu item with no recipe rows resolves to an empty list; that is
// a data-quality gap, not an error, and callers are expected to log it.
type RecipeResolver struct {
	recipes RecipeRepository
}

// NewRecipeResolver creates a new RecipeResolver
func NewRecipeResolver(recipes RecipeRepository) *RecipeResolver {
	return &RecipeResolver{recipes: recipes}
}

// Resolve returns the per-unit ingredient requirements for a menu item and
// optional variant.
func (r *RecipeResolver) Resolve(ctx context.Context, menuItemID uuid.UUID, variantID *uuid.UUID) ([]RecipeLine, error) {
	rows, err := r.recipes.FindByMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []RecipeLine{}, nil
	}

	base := make(map[uuid.UUID]Recipe)
	override := make(map[uuid.UUID]Recipe)
	for _, row := range rows {
		switch {
		case row.IsBase():
			base[row.IngredientID] = row
		case variantID != nil && row.MatchesVariant(*variantID):
			override[row.IngredientID] = row
		}
	}

	lines := make([]RecipeLine, 0, len(base)+len(override))
	for ingredientID, row := range override {
		lines = append(lines, RecipeLine{
			IngredientID:    ingredientID,
			QuantityPerUnit: row.QuantityRequired,
			Unit:            row.Unit,
		})
	}
	for ingredientID, row := range base {
		if _, covered := override[ingredientID]; covered {
			continue
		}
		lines = append(lines, RecipeLine{
			IngredientID:    ingredientID,
			QuantityPerUnit: row.QuantityRequired,
			Unit:            row.Unit,
		})
	}

	return lines, nil
}

// ResolveMany resolves a whole order's lines into one total requirement per
// distinct ingredient (quantity per unit multiplied by the sold quantity,
// summed across lines). The ledger issues exactly one mutation per entry.
// Lines whose menu item resolved to no ingredients are returned separately so
// callers can report the recipe gap per line.
func (r *RecipeResolver) ResolveMany(ctx context.Context, lines []SaleLine) (map[uuid.UUID]decimal.Decimal, []SaleLine, error) {
	totals := make(map[uuid.UUID]decimal.Decimal)
	var unresolved []SaleLine
	for _, line := range lines {
		resolved, err := r.Resolve(ctx, line.MenuItemID, line.MenuItemVariantID)
		if err != nil {
			return nil, nil, err
		}
		if len(resolved) == 0 {
			unresolved = append(unresolved, line)
			continue
		}
		for _, rl := range resolved {
			totals[rl.IngredientID] = totals[rl.IngredientID].Add(rl.QuantityPerUnit.Mul(line.Quantity))
		}
	}
	return totals, unresolved, nil
}

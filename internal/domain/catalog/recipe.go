package catalog

import (
	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipe maps a sellable menu item (optionally a specific variant of it)
// to one ingredient and the quantity consumed per unit sold.
// A base row has a nil MenuItemVariantID; a variant-specific row overrides
// the base row for the same ingredient when that variant is sold.
// Uniqueness holds on (menu_item_id, ingredient_id, menu_item_variant_id).
type Recipe struct {
	shared.BaseEntity
	MenuItemID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_item_ingredient_variant,priority:1;index:idx_recipe_menu_item"`
	MenuItemVariantID *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_recipe_item_ingredient_variant,priority:3"`
	IngredientID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_item_ingredient_variant,priority:2"`
	QuantityRequired  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// NewRecipe creates a new recipe row
func NewRecipe(menuItemID, ingredientID uuid.UUID, variantID *uuid.UUID, quantityRequired decimal.Decimal, unit string) (*Recipe, error) {
	if menuItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MENU_ITEM", "Menu item ID cannot be empty")
	}
	if ingredientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INGREDIENT", "Ingredient ID cannot be empty")
	}
	if variantID != nil && *variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be the nil UUID")
	}
	if quantityRequired.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity required must be positive")
	}

	return &Recipe{
		BaseEntity:        shared.NewBaseEntity(),
		MenuItemID:        menuItemID,
		MenuItemVariantID: variantID,
		IngredientID:      ingredientID,
		QuantityRequired:  quantityRequired,
		Unit:              unit,
	}, nil
}

// IsBase reports whether this is a base (variant-less) recipe row
func (r *Recipe) IsBase() bool {
	return r.MenuItemVariantID == nil
}

// MatchesVariant reports whether this row is scoped to the given variant
func (r *Recipe) MatchesVariant(variantID uuid.UUID) bool {
	return r.MenuItemVariantID != nil && *r.MenuItemVariantID == variantID
}

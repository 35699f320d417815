package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beanpos/backend/internal/domain/catalog"
)

// GormRecipeRepository implements RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// FindByMenuItem finds all recipe rows for a menu item, base and variant
// overrides alike
func (r *GormRecipeRepository) FindByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]catalog.Recipe, error) {
	var recipes []catalog.Recipe
	if err := r.db.WithContext(ctx).
		Where("menu_item_id = ?", menuItemID).
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindByIngredient finds every recipe row consuming an ingredient
func (r *GormRecipeRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]catalog.Recipe, error) {
	var recipes []catalog.Recipe
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

var _ catalog.RecipeRepository = (*GormRecipeRepository)(nil)

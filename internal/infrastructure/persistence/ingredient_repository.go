package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beanpos/backend/internal/domain/catalog"
	"github.com/beanpos/backend/internal/domain/inventory"
	"github.com/beanpos/backend/internal/domain/shared"
)

// GormIngredientRepository implements IngredientRepository using GORM
type GormIngredientRepository struct {
	db *gorm.DB
}

// NewGormIngredientRepository creates a new GormIngredientRepository
func NewGormIngredientRepository(db *gorm.DB) *GormIngredientRepository {
	return &GormIngredientRepository{db: db}
}

// FindByID finds an ingredient by its ID
func (r *GormIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error) {
	var ing catalog.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// FindByIDs finds the ingredients matching the given IDs. Missing IDs are
// silently absent from the result.
func (r *GormIngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []catalog.Ingredient
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// FindAll finds all ingredients ordered by name
func (r *GormIngredientRepository) FindAll(ctx context.Context) ([]catalog.Ingredient, error) {
	var ingredients []catalog.Ingredient
	if err := r.db.WithContext(ctx).
		Order("name").
		Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Save persists an ingredient
func (r *GormIngredientRepository) Save(ctx context.Context, ingredient *catalog.Ingredient) error {
	return r.db.WithContext(ctx).Save(ingredient).Error
}

// Delete removes an ingredient. The delete is refused while recipes or branch
// inventory rows still reference it.
func (r *GormIngredientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var refs int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Recipe{}).
		Where("ingredient_id = ?", id).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "ingredient is referenced by recipes")
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.BranchInventory{}).
		Where("ingredient_id = ?", id).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "ingredient is tracked by branch inventory")
	}

	result := r.db.WithContext(ctx).Delete(&catalog.Ingredient{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.IngredientRepository = (*GormIngredientRepository)(nil)

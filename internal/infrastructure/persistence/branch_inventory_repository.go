package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beanpos/backend/internal/domain/inventory"
	"github.com/beanpos/backend/internal/domain/shared"
)

// GormBranchInventoryRepository implements BranchInventoryRepository using GORM
type GormBranchInventoryRepository struct {
	db *gorm.DB
}

// NewGormBranchInventoryRepository creates a new GormBranchInventoryRepository
func NewGormBranchInventoryRepository(db *gorm.DB) *GormBranchInventoryRepository {
	return &GormBranchInventoryRepository{db: db}
}

// FindByBranchAndIngredient finds the stock row for a branch-ingredient pair
func (r *GormBranchInventoryRepository) FindByBranchAndIngredient(ctx context.Context, branchID, ingredientID uuid.UUID) (*inventory.BranchInventory, error) {
	var row inventory.BranchInventory
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByBranchAndIngredientForUpdate loads the row under SELECT ... FOR UPDATE.
// Callers must hold an open transaction or the lock is released immediately.
func (r *GormBranchInventoryRepository) FindByBranchAndIngredientForUpdate(ctx context.Context, branchID, ingredientID uuid.UUID) (*inventory.BranchInventory, error) {
	var row inventory.BranchInventory
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// GetOrCreate inserts a zero-stock row if the pair is untracked, then loads
// the row under the same exclusive lock as FindByBranchAndIngredientForUpdate.
// The insert uses ON CONFLICT DO NOTHING so concurrent first writes race
// safely on the unique (branch_id, ingredient_id) index.
func (r *GormBranchInventoryRepository) GetOrCreate(ctx context.Context, branchID, ingredientID uuid.UUID) (*inventory.BranchInventory, error) {
	row, err := inventory.NewBranchInventory(branchID, ingredientID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "branch_id"}, {Name: "ingredient_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.FindByBranchAndIngredientForUpdate(ctx, branchID, ingredientID)
}

// FindByBranch finds all stock rows tracked at a branch
func (r *GormBranchInventoryRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]inventory.BranchInventory, error) {
	var rows []inventory.BranchInventory
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("ingredient_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists a stock row
func (r *GormBranchInventoryRepository) Save(ctx context.Context, inv *inventory.BranchInventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// CountByBranch counts the stock rows tracked at a branch
func (r *GormBranchInventoryRepository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.BranchInventory{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.BranchInventoryRepository = (*GormBranchInventoryRepository)(nil)

package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beanpos/backend/internal/domain/inventory"
)

// GormInventoryTransactionRepository implements InventoryTransactionRepository
// using GORM. The table is append-only; this repository never updates or
// deletes rows.
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Create appends a transaction record
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *GormInventoryTransactionRepository) applyFilter(query *gorm.DB, filter inventory.TransactionFilter) *gorm.DB {
	if filter.TransactionType != "" {
		query = query.Where("transaction_type = ?", filter.TransactionType)
	}
	return query
}

// FindByBranch finds a branch's transactions, newest first
func (r *GormInventoryTransactionRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter inventory.TransactionFilter) ([]inventory.InventoryTransaction, error) {
	var txs []inventory.InventoryTransaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryTransaction{}).
			Where("branch_id = ?", branchID),
		filter,
	).Order("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByBranchAndIngredient finds the full history for one branch-ingredient
// pair, oldest first, the order a replay wants
func (r *GormInventoryTransactionRepository) FindByBranchAndIngredient(ctx context.Context, branchID, ingredientID uuid.UUID) ([]inventory.InventoryTransaction, error) {
	var txs []inventory.InventoryTransaction
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		Order("created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByOrder finds the transactions an order produced across its sale and
// any refund
func (r *GormInventoryTransactionRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.InventoryTransaction, error) {
	var txs []inventory.InventoryTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// CountByBranch counts a branch's transactions under the same filter as
// FindByBranch, ignoring paging
func (r *GormInventoryTransactionRepository) CountByBranch(ctx context.Context, branchID uuid.UUID, filter inventory.TransactionFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryTransaction{}).
			Where("branch_id = ?", branchID),
		filter,
	).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumByBranchAndIngredient totals the signed quantity changes for one
// branch-ingredient pair over its full history
func (r *GormInventoryTransactionRepository) SumByBranchAndIngredient(ctx context.Context, branchID, ingredientID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&inventory.InventoryTransaction{}).
		Select("SUM(quantity_change)").
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

var _ inventory.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)

package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows and pages transaction history queries.
// Results are always ordered newest first.
type TransactionFilter struct {
	TransactionType TransactionType // zero value = all types
	Limit           int
	Offset          int
}

// BranchInventoryRepository defines persistence operations for per-branch
// stock rows.
type BranchInventoryRepository interface {
	// FindByBranchAndIngredient returns the row or shared.ErrNotFound.
	FindByBranchAndIngredient(ctx context.Context, branchID, ingredientID uuid.UUID) (*BranchInventory, error)
	// FindByBranchAndIngredientForUpdate loads the row under an exclusive
	// row lock. It must be called inside a LedgerScope transaction; the lock
	// is the serialization point for concurrent mutations on the same pair.
	FindByBranchAndIngredientForUpdate(ctx context.Context, branchID, ingredientID uuid.UUID) (*BranchInventory, error)
	// GetOrCreate returns the existing row or lazily creates a zero-stock
	// one, taking the same exclusive lock as FindByBranchAndIngredientForUpdate.
	GetOrCreate(ctx context.Context, branchID, ingredientID uuid.UUID) (*BranchInventory, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]BranchInventory, error)
	Save(ctx context.Context, inv *BranchInventory) error
	CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)
}

// InventoryTransactionRepository defines append-only persistence for
// transaction records. There are deliberately no update or delete methods.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *InventoryTransaction) error
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter TransactionFilter) ([]InventoryTransaction, error)
	FindByBranchAndIngredient(ctx context.Context, branchID, ingredientID uuid.UUID) ([]InventoryTransaction, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]InventoryTransaction, error)
	CountByBranch(ctx context.Context, branchID uuid.UUID, filter TransactionFilter) (int64, error)
	// SumByBranchAndIngredient totals QuantityChange over a pair's full
	// history. The result equals the pair's current stock when every
	// mutation went through the ledger.
	SumByBranchAndIngredient(ctx context.Context, branchID, ingredientID uuid.UUID) (decimal.Decimal, error)
}

package inventory

import (
	"context"

	"github.com/beanpos/backend/internal/domain/inventory"
)

// LedgerScope provides the atomic unit every ledger mutation runs in.
// A single Execute covers exactly one (branch, ingredient) row: load the row
// under its exclusive lock, compute the new balance, save the row and append
// its transaction record. The function either commits as a whole or leaves no
// trace; a stock update without its transaction row (or vice versa) must
// never be observable.
//
// The row lock is the serialization point: concurrent mutations on the same
// (branch, ingredient) pair queue behind it, while mutations on different
// rows proceed independently.
type LedgerScope interface {
	// Execute runs fn within one storage transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed.
	Execute(ctx context.Context, fn func(repos LedgerRepositories) error) error
}

// LedgerRepositories exposes the repositories bound to the scope's current
// transaction. All returned repositories share the same underlying
// transaction handle.
type LedgerRepositories interface {
	InventoryRepo() inventory.BranchInventoryRepository
	TransactionRepo() inventory.InventoryTransactionRepository
}

// NoOpLedgerScope runs functions against fixed repositories without a real
// storage transaction. Used in tests and anywhere transactional storage is
// not wired.
type NoOpLedgerScope struct {
	inventoryRepo   inventory.BranchInventoryRepository
	transactionRepo inventory.InventoryTransactionRepository
}

// NewNoOpLedgerScope creates a NoOpLedgerScope over the given repositories.
func NewNoOpLedgerScope(
	inventoryRepo inventory.BranchInventoryRepository,
	transactionRepo inventory.InventoryTransactionRepository,
) *NoOpLedgerScope {
	return &NoOpLedgerScope{
		inventoryRepo:   inventoryRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function without transactional guarantees.
func (s *NoOpLedgerScope) Execute(_ context.Context, fn func(repos LedgerRepositories) error) error {
	return fn(s)
}

// InventoryRepo returns the branch inventory repository.
func (s *NoOpLedgerScope) InventoryRepo() inventory.BranchInventoryRepository {
	return s.inventoryRepo
}

// TransactionRepo returns the inventory transaction repository.
func (s *NoOpLedgerScope) TransactionRepo() inventory.InventoryTransactionRepository {
	return s.transactionRepo
}

var _ LedgerScope = (*NoOpLedgerScope)(nil)
var _ LedgerRepositories = (*NoOpLedgerScope)(nil)

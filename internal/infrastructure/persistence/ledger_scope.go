package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/beanpos/backend/internal/application/inventory"
	"github.com/beanpos/backend/internal/domain/inventory"
)

// GormLedgerScope implements LedgerScope using GORM transactions. Row locks
// taken via FindByBranchAndIngredientForUpdate inside Execute are held until
// the transaction commits or rolls back.
type GormLedgerScope struct {
	db *gorm.DB
}

// NewGormLedgerScope creates a new GormLedgerScope.
func NewGormLedgerScope(db *gorm.DB) *GormLedgerScope {
	return &GormLedgerScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerScope) Execute(ctx context.Context, fn func(repos appinv.LedgerRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories binds the ledger repositories to one transaction.
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// InventoryRepo returns the branch inventory repository scoped to the current transaction.
func (r *gormLedgerRepositories) InventoryRepo() inventory.BranchInventoryRepository {
	return NewGormBranchInventoryRepository(r.tx)
}

// TransactionRepo returns the transaction repository scoped to the current transaction.
func (r *gormLedgerRepositories) TransactionRepo() inventory.InventoryTransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

var _ appinv.LedgerScope = (*GormLedgerScope)(nil)
var _ appinv.LedgerRepositories = (*gormLedgerRepositories)(nil)

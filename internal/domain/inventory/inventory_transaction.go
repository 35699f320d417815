package inventory

import (
	"sort"

	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a stock mutation
type TransactionType string

const (
	// TransactionTypeSale is a deduction driven by a recipe-resolved sale
	TransactionTypeSale TransactionType = "SALE"
	// TransactionTypeRestock is an operator-initiated stock increase
	TransactionTypeRestock TransactionType = "RESTOCK"
	// TransactionTypeWaste is an operator-recorded loss (spoilage, spillage)
	TransactionTypeWaste TransactionType = "WASTE"
	// TransactionTypeRefund is a compensating restore for a refunded order
	TransactionTypeRefund TransactionType = "REFUND"
	// TransactionTypeAdjustment is a stock-count correction
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale,
		TransactionTypeRestock,
		TransactionTypeWaste,
		TransactionTypeRefund,
		TransactionTypeAdjustment:
		return true
	}
	return false
}

// InventoryTransaction is an immutable record of one stock mutation.
// Rows are append-only; corrections are made with new ADJUSTMENT rows, never
// by editing history. For every row StockAfter == StockBefore + QuantityChange,
// and replaying a (branch, ingredient) pair's rows in creation order from zero
// reproduces the current BranchInventory stock.
type InventoryTransaction struct {
	shared.BaseEntity
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_branch_ingredient_time,priority:1"`
	IngredientID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_branch_ingredient_time,priority:2"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null;index:idx_inv_tx_type"`
	QuantityChange  decimal.Decimal `gorm:"type:decimal(18,4);not null"` // signed; positive = stock increase
	StockBefore     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StockAfter      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderID         *uuid.UUID      `gorm:"type:uuid;index:idx_inv_tx_order"` // refund traceability
	Reason          string          `gorm:"type:varchar(255)"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction creates an inventory transaction, enforcing the
// balance invariant StockAfter == StockBefore + QuantityChange.
func NewInventoryTransaction(
	branchID uuid.UUID,
	ingredientID uuid.UUID,
	txType TransactionType,
	quantityChange decimal.Decimal,
	stockBefore decimal.Decimal,
	stockAfter decimal.Decimal,
	createdBy uuid.UUID,
) (*InventoryTransaction, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if ingredientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INGREDIENT", "Ingredient ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantityChange.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if !stockAfter.Equal(stockBefore.Add(quantityChange)) {
		return nil, shared.NewDomainError("BALANCE_MISMATCH", "Stock after must equal stock before plus quantity change")
	}

	return &InventoryTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		BranchID:        branchID,
		IngredientID:    ingredientID,
		TransactionType: txType,
		QuantityChange:  quantityChange,
		StockBefore:     stockBefore,
		StockAfter:      stockAfter,
		CreatedBy:       createdBy,
	}, nil
}

// WithOrderID links the transaction to the order that caused it
func (t *InventoryTransaction) WithOrderID(orderID uuid.UUID) *InventoryTransaction {
	t.OrderID = &orderID
	return t
}

// WithReason attaches a free-text reason (required for waste)
func (t *InventoryTransaction) WithReason(reason string) *InventoryTransaction {
	t.Reason = reason
	return t
}

// IsIncrease reports whether the transaction raised stock
func (t *InventoryTransaction) IsIncrease() bool {
	return t.QuantityChange.IsPositive()
}

// ReplayBalance folds transactions for one (branch, ingredient) pair in
// creation order starting from zero and returns the resulting balance. It is
// the audit counterpart of BranchInventory.CurrentStock: the two must agree.
func ReplayBalance(txs []InventoryTransaction) decimal.Decimal {
	ordered := make([]InventoryTransaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	balance := decimal.Zero
	for _, tx := range ordered {
		balance = balance.Add(tx.QuantityChange)
	}
	return balance
}

// VerifyChain checks that every row satisfies the balance invariant and that
// consecutive rows chain (each StockBefore equals the previous StockAfter,
// starting from zero). Used by audits and tests.
func VerifyChain(txs []InventoryTransaction) error {
	ordered := make([]InventoryTransaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	prev := decimal.Zero
	for _, tx := range ordered {
		if !tx.StockAfter.Equal(tx.StockBefore.Add(tx.QuantityChange)) {
			return shared.NewDomainError("BALANCE_MISMATCH", "Transaction "+tx.ID.String()+" violates the balance invariant")
		}
		if !tx.StockBefore.Equal(prev) {
			return shared.NewDomainError("CHAIN_BROKEN", "Transaction "+tx.ID.String()+" does not chain from the previous balance")
		}
		prev = tx.StockAfter
	}
	return nil
}

package inventory

import (
	"time"

	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BranchInventory is the current stock level of one ingredient at one branch.
// The composite identifier is BranchID + IngredientID; at most one row exists
// per pair. A missing row reads as zero stock and is created lazily on the
// first mutation.
//
// CurrentStock may legitimately go negative when waste or sale deductions
// exceed the recorded level. No floor is enforced; the ledger records what
// actually happened and reconciliation is an operator concern.
type BranchInventory struct {
	shared.BaseEntity
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_inventory_branch_ingredient,priority:1"`
	IngredientID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_inventory_branch_ingredient,priority:2"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastRestockAt *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (BranchInventory) TableName() string {
	return "branch_inventory"
}

// NewBranchInventory creates a zero-stock row for a branch-ingredient pair
func NewBranchInventory(branchID, ingredientID uuid.UUID) (*BranchInventory, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if ingredientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INGREDIENT", "Ingredient ID cannot be empty")
	}

	return &BranchInventory{
		BaseEntity:   shared.NewBaseEntity(),
		BranchID:     branchID,
		IngredientID: ingredientID,
		CurrentStock: decimal.Zero,
	}, nil
}

// ApplyChange applies a signed stock change and returns the balances either
// side of it. Negative results are allowed.
func (b *BranchInventory) ApplyChange(change decimal.Decimal) (before, after decimal.Decimal) {
	before = b.CurrentStock
	b.CurrentStock = b.CurrentStock.Add(change)
	b.Touch()
	return before, b.CurrentStock
}

// MarkRestocked records the time of the most recent restock
func (b *BranchInventory) MarkRestocked(at time.Time) {
	b.LastRestockAt = &at
	b.UpdatedAt = at
}

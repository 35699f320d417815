package catalog

import (
	"strings"

	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Ingredient is a raw material tracked by the inventory ledger.
// Ingredients are global reference data: identity, unit of measure, cost
// and the reorder threshold used for low-stock alerts. Stock levels are
// branch-scoped and live in the inventory context, not here.
type Ingredient struct {
	shared.BaseEntity
	Name             string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Unit             string          `gorm:"type:varchar(20);not null"` // e.g. "g", "ml", "pcs"
	CostPerUnit      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}

// NewIngredient creates a new ingredient
func NewIngredient(name, unit string, costPerUnit, reorderThreshold decimal.Decimal) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Ingredient name cannot be empty")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Ingredient unit cannot be empty")
	}
	if costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	if reorderThreshold.IsNegative() {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Reorder threshold cannot be negative")
	}

	return &Ingredient{
		BaseEntity:       shared.NewBaseEntity(),
		Name:             name,
		Unit:             unit,
		CostPerUnit:      costPerUnit,
		ReorderThreshold: reorderThreshold,
	}, nil
}

// UpdateCost changes the cost per unit
func (i *Ingredient) UpdateCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	i.CostPerUnit = cost
	i.Touch()
	return nil
}

// UpdateReorderThreshold changes the reorder threshold
func (i *Ingredient) UpdateReorderThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Reorder threshold cannot be negative")
	}
	i.ReorderThreshold = threshold
	i.Touch()
	return nil
}

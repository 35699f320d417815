package order

import (
	"time"

	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one sold menu item within an order. The ledger consumes lines
// read-only: they are the input to recipe resolution on sale and the replay
// source on refund.
type OrderLine struct {
	shared.BaseEntity
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID        uuid.UUID       `gorm:"type:uuid;not null"`
	MenuItemVariantID *uuid.UUID      `gorm:"type:uuid"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// Order is the slice of order state the inventory core needs: the branch it
// was sold at, its lines, and the refunded flag that guards compensation.
type Order struct {
	shared.BaseEntity
	BranchID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Refunded   bool       `gorm:"not null;default:false"`
	RefundedAt *time.Time `gorm:"type:timestamptz"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// MarkRefunded flips the refunded flag. It is the order-level idempotency
// guard for refund compensation: the ledger itself never checks whether an
// order was already compensated, so callers must consult this flag first.
func (o *Order) MarkRefunded(at time.Time) error {
	if o.Refunded {
		return shared.ErrAlreadyRefunded
	}
	o.Refunded = true
	o.RefundedAt = &at
	o.UpdatedAt = at
	return nil
}

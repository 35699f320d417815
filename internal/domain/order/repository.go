package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the order persistence the inventory core depends on.
// Order lifecycle (creation, payment, fulfilment) is managed elsewhere; the
// ledger only reads orders for refund replay and persists the refund flag.
type Repository interface {
	// FindByID returns the order with its lines preloaded.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Save(ctx context.Context, o *Order) error
}

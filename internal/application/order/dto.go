package order

import (
	"time"

	"github.com/google/uuid"

	appinventory "github.com/beanpos/backend/internal/application/inventory"
)

// SaleConsumptionRequest carries one completed order whose ingredient
// consumption should be written to the ledger.
type SaleConsumptionRequest struct {
	OrderID uuid.UUID `json:"order_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

// RefundRequest asks for an order's stock to be restored.
type RefundRequest struct {
	OrderID uuid.UUID `json:"order_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

// RefundResponse reports the compensation outcome. Restored lists one entry
// per distinct ingredient; skipped restores carry a nil transaction ID.
type RefundResponse struct {
	OrderID    uuid.UUID                      `json:"order_id"`
	RefundedAt time.Time                      `json:"refunded_at"`
	Restored   []appinventory.MutationResult  `json:"restored"`
}

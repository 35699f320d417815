package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beanpos/backend/internal/domain/inventory"
)

// RestockRequest describes a stock delivery for one ingredient at one branch.
type RestockRequest struct {
	BranchID     uuid.UUID       `json:"branch_id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason"`
	ActorID      uuid.UUID       `json:"actor_id"`
}

// WasteRequest describes spoilage or breakage written off at a branch.
type WasteRequest struct {
	BranchID     uuid.UUID       `json:"branch_id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason"`
	ActorID      uuid.UUID       `json:"actor_id"`
}

// AdjustRequest sets an ingredient's stock to a counted quantity, typically
// after a physical stocktake.
type AdjustRequest struct {
	BranchID       uuid.UUID       `json:"branch_id"`
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Reason         string          `json:"reason"`
	ActorID        uuid.UUID       `json:"actor_id"`
}

// MutationResult reports the outcome of a single ledger mutation.
// TransactionID is uuid.Nil when the mutation was a no-op (an adjustment
// that matched the recorded stock, or a refund restore on an untracked row).
type MutationResult struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	IngredientID  uuid.UUID       `json:"ingredient_id"`
	StockBefore   decimal.Decimal `json:"stock_before"`
	StockAfter    decimal.Decimal `json:"stock_after"`
}

// SaleDeductionResult reports how an order's ingredient requirements were
// applied. Atomicity holds per ingredient, not across the whole order: every
// entry in Applied committed even if a later ingredient failed.
type SaleDeductionResult struct {
	OrderID uuid.UUID        `json:"order_id"`
	Applied []MutationResult `json:"applied"`
}

// StockResponse is the read model for one branch inventory row.
type StockResponse struct {
	BranchID      uuid.UUID       `json:"branch_id"`
	IngredientID  uuid.UUID       `json:"ingredient_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	LastRestockAt *time.Time      `json:"last_restock_at,omitempty"`
}

// ToStockResponse converts a branch inventory row into its read model.
func ToStockResponse(row *inventory.BranchInventory) *StockResponse {
	return &StockResponse{
		BranchID:      row.BranchID,
		IngredientID:  row.IngredientID,
		CurrentStock:  row.CurrentStock,
		LastRestockAt: row.LastRestockAt,
	}
}

// StockAuditResponse reconciles a branch inventory row against the sum of
// its ledger entries. Drift is RowStock minus LedgerSum; it is nonzero when
// stock was touched outside the ledger.
type StockAuditResponse struct {
	BranchID     uuid.UUID       `json:"branch_id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	RowStock     decimal.Decimal `json:"row_stock"`
	LedgerSum    decimal.Decimal `json:"ledger_sum"`
	Drift        decimal.Decimal `json:"drift"`
	Consistent   bool            `json:"consistent"`
}

// LowStockAlert is one entry in a branch's low stock report.
type LowStockAlert struct {
	IngredientID     uuid.UUID              `json:"ingredient_id"`
	IngredientName   string                 `json:"ingredient_name"`
	Unit             string                 `json:"unit"`
	CurrentStock     decimal.Decimal        `json:"current_stock"`
	ReorderThreshold decimal.Decimal        `json:"reorder_threshold"`
	Deficit          decimal.Decimal        `json:"deficit"`
	Urgency          inventory.StockUrgency `json:"urgency"`
}

// TransactionResponse is the read model for one ledger entry.
type TransactionResponse struct {
	ID             uuid.UUID       `json:"id"`
	BranchID       uuid.UUID       `json:"branch_id"`
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	Type           string          `json:"type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	StockBefore    decimal.Decimal `json:"stock_before"`
	StockAfter     decimal.Decimal `json:"stock_after"`
	OrderID        *uuid.UUID      `json:"order_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a ledger entry into its read model.
func ToTransactionResponse(tx *inventory.InventoryTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             tx.ID,
		BranchID:       tx.BranchID,
		IngredientID:   tx.IngredientID,
		Type:           string(tx.TransactionType),
		QuantityChange: tx.QuantityChange,
		StockBefore:    tx.StockBefore,
		StockAfter:     tx.StockAfter,
		OrderID:        tx.OrderID,
		Reason:         tx.Reason,
		CreatedBy:      tx.CreatedBy,
		CreatedAt:      tx.CreatedAt,
	}
}

// TransactionListResponse is a paginated slice of ledger entries.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/beanpos/backend/internal/domain/catalog"
	"github.com/beanpos/backend/internal/domain/inventory"
	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/beanpos/backend/internal/infrastructure/telemetry"
)

// MutationRecorder counts committed ledger mutations for monitoring. A nil
// recorder disables counting.
type MutationRecorder interface {
	RecordStockMutation(ctx context.Context, branchID uuid.UUID, transactionType string)
	RecordSaleDeduction(ctx context.Context, branchID uuid.UUID, ingredientCount int64)
}

// StockLedgerService owns all stock mutations for branch inventory. Every
// mutation runs inside a LedgerScope: the (branch, ingredient) row is locked,
// the new balance computed from the locked value, and the row update plus the
// ledger entry committed together.
type StockLedgerService struct {
	scope           LedgerScope
	inventoryRepo   inventory.BranchInventoryRepository
	transactionRepo inventory.InventoryTransactionRepository
	ingredientRepo  catalog.IngredientRepository
	logger          *zap.Logger
	metrics         MutationRecorder
}

// NewStockLedgerService creates a new StockLedgerService. The standalone
// repositories serve the read paths; mutations always go through the scope.
func NewStockLedgerService(
	scope LedgerScope,
	inventoryRepo inventory.BranchInventoryRepository,
	transactionRepo inventory.InventoryTransactionRepository,
	ingredientRepo catalog.IngredientRepository,
	logger *zap.Logger,
) *StockLedgerService {
	return &StockLedgerService{
		scope:           scope,
		inventoryRepo:   inventoryRepo,
		transactionRepo: transactionRepo,
		ingredientRepo:  ingredientRepo,
		logger:          logger,
	}
}

// SetMetrics attaches a mutation recorder. Must be called before the service
// handles requests.
func (s *StockLedgerService) SetMetrics(metrics MutationRecorder) {
	s.metrics = metrics
}

func (s *StockLedgerService) recordMutation(ctx context.Context, branchID uuid.UUID, txType inventory.TransactionType) {
	if s.metrics != nil {
		s.metrics.RecordStockMutation(ctx, branchID, string(txType))
	}
}

// DeductForSale subtracts the quantity an order consumed of one ingredient.
// The row is created on first use, so stock may go negative when sales are
// rung up before the opening restock is recorded.
func (s *StockLedgerService) DeductForSale(
	ctx context.Context,
	branchID, ingredientID uuid.UUID,
	quantity decimal.Decimal,
	orderID uuid.UUID,
	actorID uuid.UUID,
) (*MutationResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "sale quantity must be positive")
	}

	var result *MutationResult
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		row, err := repos.InventoryRepo().GetOrCreate(ctx, branchID, ingredientID)
		if err != nil {
			return err
		}

		before, after := row.ApplyChange(quantity.Neg())
		if err := repos.InventoryRepo().Save(ctx, row); err != nil {
			return err
		}

		tx, err := inventory.NewInventoryTransaction(
			branchID, ingredientID,
			inventory.TransactionTypeSale,
			quantity.Neg(), before, after,
			actorID,
		)
		if err != nil {
			return err
		}
		tx.WithOrderID(orderID)
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return err
		}

		result = &MutationResult{
			TransactionID: tx.ID,
			IngredientID:  ingredientID,
			StockBefore:   before,
			StockAfter:    after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.StockAfter.IsNegative() {
		s.logger.Warn("Stock went negative after sale deduction",
			zap.String("branch_id", branchID.String()),
			zap.String("ingredient_id", ingredientID.String()),
			zap.String("stock_after", result.StockAfter.String()),
		)
	}
	return result, nil
}

// ApplySaleDeductions applies an order's total ingredient requirements, one
// ledger mutation per distinct ingredient. Ingredients are processed in a
// fixed order; if one fails, the deductions already committed stay committed
// and the error reports which ingredient stopped the run.
func (s *StockLedgerService) ApplySaleDeductions(
	ctx context.Context,
	branchID uuid.UUID,
	requirements map[uuid.UUID]decimal.Decimal,
	orderID uuid.UUID,
	actorID uuid.UUID,
) (*SaleDeductionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "apply_sale_deductions")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, branchID.String(),
		telemetry.SpanAttrOrderID, orderID.String(),
		"ingredient_count", len(requirements),
	)

	ingredientIDs := make([]uuid.UUID, 0, len(requirements))
	for id := range requirements {
		ingredientIDs = append(ingredientIDs, id)
	}
	sort.Slice(ingredientIDs, func(i, j int) bool {
		return strings.Compare(ingredientIDs[i].String(), ingredientIDs[j].String()) < 0
	})

	deduction := &SaleDeductionResult{
		OrderID: orderID,
		Applied: make([]MutationResult, 0, len(ingredientIDs)),
	}
	for _, ingredientID := range ingredientIDs {
		result, err := s.DeductForSale(ctx, branchID, ingredientID, requirements[ingredientID], orderID, actorID)
		if err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("Sale deduction failed mid-order",
				zap.String("order_id", orderID.String()),
				zap.String("ingredient_id", ingredientID.String()),
				zap.Int("applied", len(deduction.Applied)),
				zap.Error(err),
			)
			return deduction, err
		}
		deduction.Applied = append(deduction.Applied, *result)
	}
	if s.metrics != nil {
		s.metrics.RecordSaleDeduction(ctx, branchID, int64(len(deduction.Applied)))
	}
	return deduction, nil
}

// Restock adds delivered stock and stamps the row's last restock time.
func (s *StockLedgerService) Restock(ctx context.Context, req RestockRequest) (*MutationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "restock")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrIngredientID, req.IngredientID.String(),
		telemetry.SpanAttrQuantity, req.Quantity.String(),
	)

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "restock quantity must be positive")
	}

	var result *MutationResult
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		row, err := repos.InventoryRepo().GetOrCreate(ctx, req.BranchID, req.IngredientID)
		if err != nil {
			return err
		}

		before, after := row.ApplyChange(req.Quantity)
		row.MarkRestocked(time.Now())
		if err := repos.InventoryRepo().Save(ctx, row); err != nil {
			return err
		}

		tx, err := inventory.NewInventoryTransaction(
			req.BranchID, req.IngredientID,
			inventory.TransactionTypeRestock,
			req.Quantity, before, after,
			req.ActorID,
		)
		if err != nil {
			return err
		}
		tx.WithReason(req.Reason)
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return err
		}

		result = &MutationResult{
			TransactionID: tx.ID,
			IngredientID:  req.IngredientID,
			StockBefore:   before,
			StockAfter:    after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordMutation(ctx, req.BranchID, inventory.TransactionTypeRestock)
	return result, nil
}

// RecordWaste writes off spoiled or broken stock. Unlike sales, waste can
// only be recorded against an ingredient the branch already tracks: wasting
// something never stocked is a reporting mistake, not a lazy-init case.
func (s *StockLedgerService) RecordWaste(ctx context.Context, req WasteRequest) (*MutationResult, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "waste quantity must be positive")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "waste reason is required")
	}

	var result *MutationResult
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		row, err := repos.InventoryRepo().FindByBranchAndIngredientForUpdate(ctx, req.BranchID, req.IngredientID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError(shared.ErrCodeNotFound, "ingredient is not tracked at this branch")
			}
			return err
		}

		before, after := row.ApplyChange(req.Quantity.Neg())
		if err := repos.InventoryRepo().Save(ctx, row); err != nil {
			return err
		}

		tx, err := inventory.NewInventoryTransaction(
			req.BranchID, req.IngredientID,
			inventory.TransactionTypeWaste,
			req.Quantity.Neg(), before, after,
			req.ActorID,
		)
		if err != nil {
			return err
		}
		tx.WithReason(req.Reason)
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return err
		}

		result = &MutationResult{
			TransactionID: tx.ID,
			IngredientID:  req.IngredientID,
			StockBefore:   before,
			StockAfter:    after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordMutation(ctx, req.BranchID, inventory.TransactionTypeWaste)
	return result, nil
}

// RestoreForRefund puts back stock consumed by a refunded order. If the
// branch has no row for the ingredient (recipes changed since the sale, or
// the row was never created) the restore is skipped rather than failed: the
// refund compensator should not abort over an untracked ingredient. A skipped
// restore returns a result with a nil transaction ID.
func (s *StockLedgerService) RestoreForRefund(
	ctx context.Context,
	branchID, ingredientID uuid.UUID,
	quantity decimal.Decimal,
	orderID uuid.UUID,
	actorID uuid.UUID,
) (*MutationResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "refund restore quantity must be positive")
	}

	var result *MutationResult
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		row, err := repos.InventoryRepo().FindByBranchAndIngredientForUpdate(ctx, branchID, ingredientID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Refund restore skipped, ingredient untracked at branch",
					zap.String("branch_id", branchID.String()),
					zap.String("ingredient_id", ingredientID.String()),
					zap.String("order_id", orderID.String()),
				)
				result = &MutationResult{IngredientID: ingredientID}
				return nil
			}
			return err
		}

		before, after := row.ApplyChange(quantity)
		if err := repos.InventoryRepo().Save(ctx, row); err != nil {
			return err
		}

		tx, err := inventory.NewInventoryTransaction(
			branchID, ingredientID,
			inventory.TransactionTypeRefund,
			quantity, before, after,
			actorID,
		)
		if err != nil {
			return err
		}
		tx.WithOrderID(orderID)
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return err
		}

		result = &MutationResult{
			TransactionID: tx.ID,
			IngredientID:  ingredientID,
			StockBefore:   before,
			StockAfter:    after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.TransactionID != uuid.Nil {
		s.recordMutation(ctx, branchID, inventory.TransactionTypeRefund)
	}
	return result, nil
}

// Adjust corrects an ingredient's stock to the counted quantity. The ledger
// entry records the signed difference between the count and the recorded
// balance; a count matching the books produces no entry.
func (s *StockLedgerService) Adjust(ctx context.Context, req AdjustRequest) (*MutationResult, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "adjustment reason is required")
	}

	var result *MutationResult
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		row, err := repos.InventoryRepo().GetOrCreate(ctx, req.BranchID, req.IngredientID)
		if err != nil {
			return err
		}

		delta := req.ActualQuantity.Sub(row.CurrentStock)
		if delta.IsZero() {
			result = &MutationResult{
				IngredientID: req.IngredientID,
				StockBefore:  row.CurrentStock,
				StockAfter:   row.CurrentStock,
			}
			return nil
		}

		before, after := row.ApplyChange(delta)
		if err := repos.InventoryRepo().Save(ctx, row); err != nil {
			return err
		}

		tx, err := inventory.NewInventoryTransaction(
			req.BranchID, req.IngredientID,
			inventory.TransactionTypeAdjustment,
			delta, before, after,
			req.ActorID,
		)
		if err != nil {
			return err
		}
		tx.WithReason(req.Reason)
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return err
		}

		result = &MutationResult{
			TransactionID: tx.ID,
			IngredientID:  req.IngredientID,
			StockBefore:   before,
			StockAfter:    after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.TransactionID != uuid.Nil {
		s.recordMutation(ctx, req.BranchID, inventory.TransactionTypeAdjustment)
	}
	return result, nil
}

// GetStock returns the current inventory row for one ingredient at a branch.
// An absent row reads as zero stock; rows are only materialized by mutations.
func (s *StockLedgerService) GetStock(ctx context.Context, branchID, ingredientID uuid.UUID) (*StockResponse, error) {
	row, err := s.inventoryRepo.FindByBranchAndIngredient(ctx, branchID, ingredientID)
	if errors.Is(err, shared.ErrNotFound) {
		return &StockResponse{
			BranchID:     branchID,
			IngredientID: ingredientID,
			CurrentStock: decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return ToStockResponse(row), nil
}

// AuditStock reconciles the inventory row against its ledger history. The
// row's stock should equal the sum of every recorded quantity change; any
// drift means a mutation bypassed the ledger.
func (s *StockLedgerService) AuditStock(ctx context.Context, branchID, ingredientID uuid.UUID) (*StockAuditResponse, error) {
	row, err := s.inventoryRepo.FindByBranchAndIngredient(ctx, branchID, ingredientID)
	if err != nil {
		return nil, err
	}
	sum, err := s.transactionRepo.SumByBranchAndIngredient(ctx, branchID, ingredientID)
	if err != nil {
		return nil, err
	}

	drift := row.CurrentStock.Sub(sum)
	if !drift.IsZero() {
		s.logger.Warn("Stock drift detected against ledger history",
			zap.String("branch_id", branchID.String()),
			zap.String("ingredient_id", ingredientID.String()),
			zap.String("row_stock", row.CurrentStock.String()),
			zap.String("ledger_sum", sum.String()),
			zap.String("drift", drift.String()),
		)
	}
	return &StockAuditResponse{
		BranchID:     branchID,
		IngredientID: ingredientID,
		RowStock:     row.CurrentStock,
		LedgerSum:    sum,
		Drift:        drift,
		Consistent:   drift.IsZero(),
	}, nil
}

// LowStock reports every tracked ingredient at the branch whose stock sits at
// or below its reorder threshold, most urgent first.
func (s *StockLedgerService) LowStock(ctx context.Context, branchID uuid.UUID) ([]*LowStockAlert, error) {
	rows, err := s.inventoryRepo.FindByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*LowStockAlert{}, nil
	}

	ingredientIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ingredientIDs = append(ingredientIDs, row.IngredientID)
	}
	ingredients, err := s.ingredientRepo.FindByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Ingredient, len(ingredients))
	for i := range ingredients {
		byID[ingredients[i].ID] = &ingredients[i]
	}

	alerts := make([]*LowStockAlert, 0)
	for _, row := range rows {
		ing, ok := byID[row.IngredientID]
		if !ok {
			// Row survives its ingredient's deletion; nothing to report on.
			continue
		}
		urgency := inventory.StatusFor(row.CurrentStock, ing.ReorderThreshold)
		if urgency == inventory.StockUrgencyOK {
			continue
		}
		alerts = append(alerts, &LowStockAlert{
			IngredientID:     row.IngredientID,
			IngredientName:   ing.Name,
			Unit:             ing.Unit,
			CurrentStock:     row.CurrentStock,
			ReorderThreshold: ing.ReorderThreshold,
			Deficit:          inventory.Deficit(row.CurrentStock, ing.ReorderThreshold),
			Urgency:          urgency,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Deficit.GreaterThan(alerts[j].Deficit)
	})
	return alerts, nil
}

// ListTransactions returns a branch's ledger entries newest first.
func (s *StockLedgerService) ListTransactions(
	ctx context.Context,
	branchID uuid.UUID,
	filter inventory.TransactionFilter,
) (*TransactionListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.TransactionType != "" && !filter.TransactionType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "unknown transaction type")
	}

	txs, err := s.transactionRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.transactionRepo.CountByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*TransactionResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, ToTransactionResponse(&txs[i]))
	}
	return &TransactionListResponse{
		Transactions: responses,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

package order

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/beanpos/backend/internal/application/inventory"
	"github.com/beanpos/backend/internal/domain/catalog"
	"github.com/beanpos/backend/internal/domain/order"
	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/beanpos/backend/internal/infrastructure/telemetry"
)

// RefundService compensates refunded orders: it re-resolves the order's
// recipes and restores the consumed quantities to the branch ledger, then
// marks the order refunded. The refunded flag on the order is the only
// idempotency guard; the ledger itself happily accepts duplicate restores,
// so a second Compensate on the same order must be rejected here.
// RefundRecorder counts compensated refunds for monitoring. A nil recorder
// disables counting.
type RefundRecorder interface {
	RecordRefundRestore(ctx context.Context, branchID uuid.UUID)
}

type RefundService struct {
	orderRepo order.Repository
	resolver  *catalog.RecipeResolver
	ledger    *appinventory.StockLedgerService
	logger    *zap.Logger
	metrics   RefundRecorder
}

// NewRefundService creates a new RefundService.
func NewRefundService(
	orderRepo order.Repository,
	resolver *catalog.RecipeResolver,
	ledger *appinventory.StockLedgerService,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		orderRepo: orderRepo,
		resolver:  resolver,
		ledger:    ledger,
		logger:    logger,
	}
}

// SetMetrics attaches a refund recorder. Must be called before the service
// handles requests.
func (s *RefundService) SetMetrics(metrics RefundRecorder) {
	s.metrics = metrics
}

// Compensate restores the stock a refunded order consumed, one REFUND ledger
// entry per distinct ingredient. Recipes are resolved at refund time: if a
// recipe changed since the sale, the restored quantities follow the current
// recipe. Untracked ingredients are skipped, not failed.
func (s *RefundService) Compensate(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "compensate_refund")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, req.OrderID.String())

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "actor is required")
	}

	ord, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if ord.Refunded {
		telemetry.RecordError(span, shared.ErrAlreadyRefunded)
		return nil, shared.ErrAlreadyRefunded
	}

	lines := make([]catalog.SaleLine, 0, len(ord.Lines))
	for _, line := range ord.Lines {
		lines = append(lines, catalog.SaleLine{
			MenuItemID:        line.MenuItemID,
			MenuItemVariantID: line.MenuItemVariantID,
			Quantity:          line.Quantity,
		})
	}
	requirements, unresolved, err := s.resolver.ResolveMany(ctx, lines)
	if err != nil {
		return nil, err
	}
	for _, line := range unresolved {
		s.logger.Warn("Refunded line has no recipe, nothing to restore",
			zap.String("order_id", ord.ID.String()),
			zap.String("menu_item_id", line.MenuItemID.String()),
		)
	}

	ingredientIDs := make([]uuid.UUID, 0, len(requirements))
	for id := range requirements {
		ingredientIDs = append(ingredientIDs, id)
	}
	sort.Slice(ingredientIDs, func(i, j int) bool {
		return strings.Compare(ingredientIDs[i].String(), ingredientIDs[j].String()) < 0
	})

	restored := make([]appinventory.MutationResult, 0, len(ingredientIDs))
	for _, ingredientID := range ingredientIDs {
		result, err := s.ledger.RestoreForRefund(ctx, ord.BranchID, ingredientID, requirements[ingredientID], ord.ID, req.ActorID)
		if err != nil {
			s.logger.Error("Refund restore failed mid-order",
				zap.String("order_id", ord.ID.String()),
				zap.String("ingredient_id", ingredientID.String()),
				zap.Int("restored", len(restored)),
				zap.Error(err),
			)
			return nil, err
		}
		restored = append(restored, *result)
	}

	now := time.Now()
	if err := ord.MarkRefunded(now); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, ord); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRefundRestore(ctx, ord.BranchID)
	}
	s.logger.Info("Order refund compensated",
		zap.String("order_id", ord.ID.String()),
		zap.Int("ingredients_restored", len(restored)),
	)
	return &RefundResponse{
		OrderID:    ord.ID,
		RefundedAt: now,
		Restored:   restored,
	}, nil
}

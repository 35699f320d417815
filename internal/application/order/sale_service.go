package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/beanpos/backend/internal/application/inventory"
	"github.com/beanpos/backend/internal/domain/catalog"
	"github.com/beanpos/backend/internal/domain/order"
	"github.com/beanpos/backend/internal/domain/shared"
	"github.com/beanpos/backend/internal/infrastructure/telemetry"
)

// SaleConsumptionService turns a completed order into ledger deductions:
// resolve each line's recipe, sum the ingredient totals across lines, then
// deduct once per distinct ingredient.
type SaleConsumptionService struct {
	orderRepo order.Repository
	resolver  *catalog.RecipeResolver
	ledger    *appinventory.StockLedgerService
	logger    *zap.Logger
}

// NewSaleConsumptionService creates a new SaleConsumptionService.
func NewSaleConsumptionService(
	orderRepo order.Repository,
	resolver *catalog.RecipeResolver,
	ledger *appinventory.StockLedgerService,
	logger *zap.Logger,
) *SaleConsumptionService {
	return &SaleConsumptionService{
		orderRepo: orderRepo,
		resolver:  resolver,
		ledger:    ledger,
		logger:    logger,
	}
}

// DeductForOrder applies the order's total ingredient consumption to its
// branch's ledger. Lines whose menu item has no recipe consume nothing; an
// order made entirely of such lines succeeds with no deductions.
func (s *SaleConsumptionService) DeductForOrder(
	ctx context.Context,
	req SaleConsumptionRequest,
) (*appinventory.SaleDeductionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "deduct_for_order")
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
		s.logger.Warn("Order line has no recipe, nothing to deduct",
			zap.String("order_id", ord.ID.String()),
			zap.String("menu_item_id", line.MenuItemID.String()),
		)
	}
	if len(requirements) == 0 {
		s.logger.Warn("Order consumed no tracked ingredients",
			zap.String("order_id", ord.ID.String()),
			zap.Int("lines", len(ord.Lines)),
		)
		return &appinventory.SaleDeductionResult{
			OrderID: ord.ID,
			Applied: []appinventory.MutationResult{},
		}, nil
	}

	return s.ledger.ApplySaleDeductions(ctx, ord.BranchID, requirements, ord.ID, req.ActorID)
}

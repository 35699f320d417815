package order

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appinventory "github.com/beanpos/backend/internal/application/inventory"
	"github.com/beanpos/backend/internal/domain/catalog"
	"github.com/beanpos/backend/internal/domain/inventory"
	"github.com/beanpos/backend/internal/domain/order"
	"github.com/beanpos/backend/internal/domain/shared"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]*order.Order
	saved  int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	ord, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return ord, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, ord *order.Order) error {
	r.orders[ord.ID] = ord
	r.saved++
	return nil
}

type fakeRecipeRepo struct {
	byMenuItem map[uuid.UUID][]catalog.Recipe
}

func (r *fakeRecipeRepo) FindByMenuItem(_ context.Context, menuItemID uuid.UUID) ([]catalog.Recipe, error) {
	return r.byMenuItem[menuItemID], nil
}

func (r *fakeRecipeRepo) FindByIngredient(_ context.Context, _ uuid.UUID) ([]catalog.Recipe, error) {
	return nil, nil
}

type rowKey struct {
	branchID     uuid.UUID
	ingredientID uuid.UUID
}

type fakeBranchInventoryRepo struct {
	mu   sync.Mutex
	rows map[rowKey]*inventory.BranchInventory
}

func newFakeBranchInventoryRepo() *fakeBranchInventoryRepo {
	return &fakeBranchInventoryRepo{rows: make(map[rowKey]*inventory.BranchInventory)}
}

func (r *fakeBranchInventoryRepo) FindByBranchAndIngredient(_ context.Context, branchID, ingredientID uuid.UUID) (*inventory.BranchInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[rowKey{branchID, ingredientID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeBranchInventoryRepo) FindByBranchAndIngredientForUpdate(ctx context.Context, branchID, ingredientID uuid.UUID) (*inventory.BranchInventory, error) {
	return r.FindByBranchAndIngredient(ctx, branchID, ingredientID)
}

func (r *fakeBranchInventoryRepo) GetOrCreate(_ context.Context, branchID, ingredientID uuid.UUID) (*inventory.BranchInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rowKey{branchID, ingredientID}
	if row, ok := r.rows[key]; ok {
		copied := *row
		return &copied, nil
	}
	row, err := inventory.NewBranchInventory(branchID, ingredientID)
	if err != nil {
		return nil, err
	}
	r.rows[key] = row
	copied := *row
	return &copied, nil
}

func (r *fakeBranchInventoryRepo) FindByBranch(_ context.Context, _ uuid.UUID) ([]inventory.BranchInventory, error) {
	return nil, nil
}

func (r *fakeBranchInventoryRepo) Save(_ context.Context, inv *inventory.BranchInventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *inv
	r.rows[rowKey{inv.BranchID, inv.IngredientID}] = &copied
	return nil
}

func (r *fakeBranchInventoryRepo) CountByBranch(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeBranchInventoryRepo) seed(branchID, ingredientID uuid.UUID, stock decimal.Decimal) {
	row, _ := inventory.NewBranchInventory(branchID, ingredientID)
	row.CurrentStock = stock
	r.rows[rowKey{branchID, ingredientID}] = row
}

func (r *fakeBranchInventoryRepo) stock(branchID, ingredientID uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[rowKey{branchID, ingredientID}]
	if !ok {
		return decimal.Zero
	}
	return row.CurrentStock
}

type fakeTransactionRepo struct {
	mu  sync.Mutex
	txs []inventory.InventoryTransaction
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *inventory.InventoryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *fakeTransactionRepo) FindByBranch(_ context.Context, _ uuid.UUID, _ inventory.TransactionFilter) ([]inventory.InventoryTransaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) FindByBranchAndIngredient(_ context.Context, _, _ uuid.UUID) ([]inventory.InventoryTransaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]inventory.InventoryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.InventoryTransaction
	for _, tx := range r.txs {
		if tx.OrderID != nil && *tx.OrderID == orderID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) CountByBranch(_ context.Context, _ uuid.UUID, _ inventory.TransactionFilter) (int64, error) {
	return 0, nil
}

func (r *fakeTransactionRepo) SumByBranchAndIngredient(_ context.Context, branchID, ingredientID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, tx := range r.txs {
		if tx.BranchID == branchID && tx.IngredientID == ingredientID {
			sum = sum.Add(tx.QuantityChange)
		}
	}
	return sum, nil
}

type orderFixture struct {
	orderRepo *fakeOrderRepo
	recipes   *fakeRecipeRepo
	invRepo   *fakeBranchInventoryRepo
	txRepo    *fakeTransactionRepo
	sales     *SaleConsumptionService
	refunds   *RefundService
}

func newOrderFixture() *orderFixture {
	return newOrderFixtureWithLogger(zap.NewNop())
}

func newOrderFixtureWithLogger(logger *zap.Logger) *orderFixture {
	orderRepo := newFakeOrderRepo()
	recipes := &fakeRecipeRepo{byMenuItem: make(map[uuid.UUID][]catalog.Recipe)}
	invRepo := newFakeBranchInventoryRepo()
	txRepo := &fakeTransactionRepo{}

	resolver := catalog.NewRecipeResolver(recipes)
	ledger := appinventory.NewStockLedgerService(
		appinventory.NewNoOpLedgerScope(invRepo, txRepo),
		invRepo, txRepo, nil, zap.NewNop(),
	)
	return &orderFixture{
		orderRepo: orderRepo,
		recipes:   recipes,
		invRepo:   invRepo,
		txRepo:    txRepo,
		sales:     NewSaleConsumptionService(orderRepo, resolver, ledger, logger),
		refunds:   NewRefundService(orderRepo, resolver, ledger, logger),
	}
}

func (f *orderFixture) addRecipe(menuItemID, ingredientID uuid.UUID, qty decimal.Decimal) {
	recipe, _ := catalog.NewRecipe(menuItemID, ingredientID, nil, qty, "ml")
	f.recipes.byMenuItem[menuItemID] = append(f.recipes.byMenuItem[menuItemID], *recipe)
}

func (f *orderFixture) addOrder(branchID uuid.UUID, lines ...order.OrderLine) *order.Order {
	ord := &order.Order{
		BaseEntity: shared.NewBaseEntity(),
		BranchID:   branchID,
		Lines:      lines,
	}
	for i := range ord.Lines {
		ord.Lines[i].OrderID = ord.ID
	}
	f.orderRepo.orders[ord.ID] = ord
	return ord
}

func line(menuItemID uuid.UUID, qty int64) order.OrderLine {
	return order.OrderLine{
		BaseEntity: shared.NewBaseEntity(),
		MenuItemID: menuItemID,
		Quantity:   decimal.NewFromInt(qty),
	}
}

func TestSaleConsumptionService_DeductForOrder(t *testing.T) {
	branchID := uuid.New()
	actorID := uuid.New()
	latteID := uuid.New()
	milkID := uuid.New()
	coffeeID := uuid.New()

	t.Run("sums recipe quantities across lines and deducts once per ingredient", func(t *testing.T) {
		f := newOrderFixture()
		f.addRecipe(latteID, milkID, decimal.NewFromInt(200))
		f.addRecipe(latteID, coffeeID, decimal.NewFromInt(18))
		f.invRepo.seed(branchID, milkID, decimal.NewFromInt(1000))
		f.invRepo.seed(branchID, coffeeID, decimal.NewFromInt(500))
		ord := f.addOrder(branchID, line(latteID, 2))

		result, err := f.sales.DeductForOrder(context.Background(), SaleConsumptionRequest{
			OrderID: ord.ID,
			ActorID: actorID,
		})
		require.NoError(t, err)
		require.Len(t, result.Applied, 2)

		assert.True(t, f.invRepo.stock(branchID, milkID).Equal(decimal.NewFromInt(600)))
		assert.True(t, f.invRepo.stock(branchID, coffeeID).Equal(decimal.NewFromInt(464)))

		txs, err := f.txRepo.FindByOrder(context.Background(), ord.ID)
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("order without recipes deducts nothing and warns", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		f := newOrderFixtureWithLogger(zap.New(core))
		ord := f.addOrder(branchID, line(uuid.New(), 3))

		result, err := f.sales.DeductForOrder(context.Background(), SaleConsumptionRequest{
			OrderID: ord.ID,
			ActorID: actorID,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Applied)

		assert.Equal(t, 1, logs.FilterMessage("Order line has no recipe, nothing to deduct").Len())
		assert.Equal(t, 1, logs.FilterMessage("Order consumed no tracked ingredients").Len())
	})

	t.Run("warns per line without a recipe inside a resolving order", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		f := newOrderFixtureWithLogger(zap.New(core))
		f.addRecipe(latteID, milkID, decimal.NewFromInt(200))
		f.invRepo.seed(branchID, milkID, decimal.NewFromInt(1000))
		gapItemID := uuid.New()
		ord := f.addOrder(branchID, line(latteID, 1), line(gapItemID, 2))

		result, err := f.sales.DeductForOrder(context.Background(), SaleConsumptionRequest{
			OrderID: ord.ID,
			ActorID: actorID,
		})
		require.NoError(t, err)
		require.Len(t, result.Applied, 1)

		gaps := logs.FilterMessage("Order line has no recipe, nothing to deduct").All()
		require.Len(t, gaps, 1)
		assert.Equal(t, gapItemID.String(), gaps[0].ContextMap()["menu_item_id"])
	})

	t.Run("unknown order fails", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.sales.DeductForOrder(context.Background(), SaleConsumptionRequest{
			OrderID: uuid.New(),
			ActorID: actorID,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

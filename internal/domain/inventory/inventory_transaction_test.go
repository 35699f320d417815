package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T, txType TransactionType, change, before float64) *InventoryTransaction {
	t.Helper()
	changeD := decimal.NewFromFloat(change)
	beforeD := decimal.NewFromFloat(before)
	tx, err := NewInventoryTransaction(
		uuid.New(), uuid.New(), txType,
		changeD, beforeD, beforeD.Add(changeD),
		uuid.New(),
	)
	require.NoError(t, err)
	return tx
}

func TestTransactionType(t *testing.T) {
	t.Run("valid types", func(t *testing.T) {
		for _, typ := range []TransactionType{
			TransactionTypeSale,
			TransactionTypeRestock,
			TransactionTypeWaste,
			TransactionTypeRefund,
			TransactionTypeAdjustment,
		} {
			assert.True(t, typ.IsValid(), "expected %s to be valid", typ)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		assert.False(t, TransactionType("TRANSFER").IsValid())
		assert.False(t, TransactionType("").IsValid())
	})
}

func TestNewInventoryTransaction(t *testing.T) {
	branch := uuid.New()
	ingredient := uuid.New()
	actor := uuid.New()

	t.Run("creates transaction when balances agree", func(t *testing.T) {
		tx, err := NewInventoryTransaction(
			branch, ingredient, TransactionTypeRestock,
			decimal.NewFromInt(50), decimal.NewFromInt(100), decimal.NewFromInt(150),
			actor,
		)
		require.NoError(t, err)
		assert.True(t, tx.IsIncrease())
		assert.Equal(t, TransactionTypeRestock, tx.TransactionType)
	})

	t.Run("enforces stockAfter == stockBefore + quantityChange", func(t *testing.T) {
		_, err := NewInventoryTransaction(
			branch, ingredient, TransactionTypeSale,
			decimal.NewFromInt(-10), decimal.NewFromInt(100), decimal.NewFromInt(100),
			actor,
		)
		assert.Error(t, err)
	})

	t.Run("allows negative resulting stock", func(t *testing.T) {
		tx, err := NewInventoryTransaction(
			branch, ingredient, TransactionTypeWaste,
			decimal.NewFromInt(-30), decimal.NewFromInt(20), decimal.NewFromInt(-10),
			actor,
		)
		require.NoError(t, err)
		assert.True(t, tx.StockAfter.IsNegative())
	})

	t.Run("rejects zero quantity change", func(t *testing.T) {
		_, err := NewInventoryTransaction(
			branch, ingredient, TransactionTypeAdjustment,
			decimal.Zero, decimal.NewFromInt(10), decimal.NewFromInt(10),
			actor,
		)
		assert.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewInventoryTransaction(
			branch, ingredient, TransactionType("LOAN"),
			decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1),
			actor,
		)
		assert.Error(t, err)
	})

	t.Run("rejects nil actor", func(t *testing.T) {
		_, err := NewInventoryTransaction(
			branch, ingredient, TransactionTypeRestock,
			decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1),
			uuid.Nil,
		)
		assert.Error(t, err)
	})

	t.Run("optional fields via builder setters", func(t *testing.T) {
		orderID := uuid.New()
		tx := newTestTransaction(t, TransactionTypeRefund, 25, 0).
			WithOrderID(orderID).
			WithReason("customer refund")
		require.NotNil(t, tx.OrderID)
		assert.Equal(t, orderID, *tx.OrderID)
		assert.Equal(t, "customer refund", tx.Reason)
	})
}

// buildChain creates a chained transaction history for one pair starting at
// zero, spacing CreatedAt so replay order is deterministic.
func buildChain(t *testing.T, changes []float64, types []TransactionType) []InventoryTransaction {
	t.Helper()
	branch := uuid.New()
	ingredient := uuid.New()
	actor := uuid.New()

	base := time.Now().Add(-time.Hour)
	balance := decimal.Zero
	txs := make([]InventoryTransaction, 0, len(changes))
	for i, c := range changes {
		change := decimal.NewFromFloat(c)
		tx, err := NewInventoryTransaction(
			branch, ingredient, types[i],
			change, balance, balance.Add(change),
			actor,
		)
		require.NoError(t, err)
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		balance = balance.Add(change)
		txs = append(txs, *tx)
	}
	return txs
}

func TestReplayBalance(t *testing.T) {
	t.Run("replaying the ledger reproduces the final stock", func(t *testing.T) {
		txs := buildChain(t,
			[]float64{100, -12.5, -30, 12.5, -80},
			[]TransactionType{
				TransactionTypeRestock,
				TransactionTypeSale,
				TransactionTypeWaste,
				TransactionTypeRefund,
				TransactionTypeSale,
			},
		)

		final := ReplayBalance(txs)
		assert.True(t, final.Equal(decimal.NewFromInt(-10)), "replayed balance: %s", final)
		assert.True(t, final.Equal(txs[len(txs)-1].StockAfter))
	})

	t.Run("replay is order-insensitive in input, ordered by CreatedAt", func(t *testing.T) {
		txs := buildChain(t,
			[]float64{10, -4, 6},
			[]TransactionType{TransactionTypeRestock, TransactionTypeSale, TransactionTypeRestock},
		)
		shuffled := []InventoryTransaction{txs[2], txs[0], txs[1]}
		assert.True(t, ReplayBalance(shuffled).Equal(decimal.NewFromInt(12)))
	})

	t.Run("empty history replays to zero", func(t *testing.T) {
		assert.True(t, ReplayBalance(nil).IsZero())
	})
}

func TestVerifyChain(t *testing.T) {
	t.Run("accepts a consistent chain", func(t *testing.T) {
		txs := buildChain(t,
			[]float64{50, -20},
			[]TransactionType{TransactionTypeRestock, TransactionTypeSale},
		)
		assert.NoError(t, VerifyChain(txs))
	})

	t.Run("detects a broken chain", func(t *testing.T) {
		txs := buildChain(t,
			[]float64{50, -20},
			[]TransactionType{TransactionTypeRestock, TransactionTypeSale},
		)
		// Simulate a lost update: second row no longer starts where the
		// first ended.
		txs[1].StockBefore = decimal.NewFromInt(40)
		txs[1].StockAfter = decimal.NewFromInt(20)
		assert.Error(t, VerifyChain(txs))
	})
}

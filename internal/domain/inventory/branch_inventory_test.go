package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBranchInventory(t *testing.T) {
	t.Run("creates zero-stock row", func(t *testing.T) {
		inv, err := NewBranchInventory(uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.True(t, inv.CurrentStock.IsZero())
		assert.Nil(t, inv.LastRestockAt)
	})

	t.Run("rejects nil branch", func(t *testing.T) {
		_, err := NewBranchInventory(uuid.Nil, uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects nil ingredient", func(t *testing.T) {
		_, err := NewBranchInventory(uuid.New(), uuid.Nil)
		assert.Error(t, err)
	})
}

func TestBranchInventory_ApplyChange(t *testing.T) {
	inv, err := NewBranchInventory(uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("returns balances either side of the change", func(t *testing.T) {
		before, after := inv.ApplyChange(decimal.NewFromInt(100))
		assert.True(t, before.IsZero())
		assert.True(t, after.Equal(decimal.NewFromInt(100)))
		assert.True(t, inv.CurrentStock.Equal(decimal.NewFromInt(100)))
	})

	t.Run("allows stock to go negative", func(t *testing.T) {
		before, after := inv.ApplyChange(decimal.NewFromInt(-130))
		assert.True(t, before.Equal(decimal.NewFromInt(100)))
		assert.True(t, after.Equal(decimal.NewFromInt(-30)))
		assert.True(t, inv.CurrentStock.IsNegative())
	})

	t.Run("handles fractional quantities", func(t *testing.T) {
		_, after := inv.ApplyChange(decimal.NewFromFloat(0.25))
		assert.True(t, after.Equal(decimal.NewFromFloat(-29.75)))
	})
}

func TestBranchInventory_MarkRestocked(t *testing.T) {
	inv, err := NewBranchInventory(uuid.New(), uuid.New())
	require.NoError(t, err)

	now := time.Now()
	inv.MarkRestocked(now)
	require.NotNil(t, inv.LastRestockAt)
	assert.Equal(t, now, *inv.LastRestockAt)
}

package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	threshold := decimal.NewFromInt(20)

	tests := []struct {
		name  string
		stock decimal.Decimal
		want  StockUrgency
	}{
		{"zero stock is critical", decimal.Zero, StockUrgencyCritical},
		{"negative stock is critical", decimal.NewFromInt(-5), StockUrgencyCritical},
		{"just below threshold is warning", decimal.NewFromFloat(19.99), StockUrgencyWarning},
		{"barely positive is warning", decimal.NewFromFloat(0.01), StockUrgencyWarning},
		{"at threshold is ok", decimal.NewFromInt(20), StockUrgencyOK},
		{"above threshold is ok", decimal.NewFromInt(100), StockUrgencyOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.stock, threshold))
		})
	}
}

func TestStatusFor_ZeroThreshold(t *testing.T) {
	// Ingredients with no reorder threshold never warn; they only go
	// critical when exhausted.
	assert.Equal(t, StockUrgencyOK, StatusFor(decimal.NewFromInt(1), decimal.Zero))
	assert.Equal(t, StockUrgencyCritical, StatusFor(decimal.Zero, decimal.Zero))
}

func TestDeficit(t *testing.T) {
	threshold := decimal.NewFromInt(50)

	assert.True(t, Deficit(decimal.NewFromInt(30), threshold).Equal(decimal.NewFromInt(20)))
	assert.True(t, Deficit(decimal.NewFromInt(-10), threshold).Equal(decimal.NewFromInt(60)))
	assert.True(t, Deficit(decimal.NewFromInt(50), threshold).IsZero())
	assert.True(t, Deficit(decimal.NewFromInt(80), threshold).IsZero())
}

package inventory

import "github.com/shopspring/decimal"

// StockUrgency is the alert level derived from current stock vs. the
// ingredient's reorder threshold.
type StockUrgency string

const (
	// StockUrgencyOK means stock is at or above the reorder threshold
	StockUrgencyOK StockUrgency = "OK"
	// StockUrgencyWarning means stock is positive but below the threshold
	StockUrgencyWarning StockUrgency = "WARNING"
	// StockUrgencyCritical means stock is exhausted (zero or negative)
	StockUrgencyCritical StockUrgency = "CRITICAL"
)

// String returns the string representation of StockUrgency
func (u StockUrgency) String() string {
	return string(u)
}

// StatusFor derives the alert level for a stock level against a threshold.
// Pure projection, recomputed on every read; nothing is stored.
func StatusFor(currentStock, reorderThreshold decimal.Decimal) StockUrgency {
	switch {
	case currentStock.LessThanOrEqual(decimal.Zero):
		return StockUrgencyCritical
	case currentStock.LessThan(reorderThreshold):
		return StockUrgencyWarning
	default:
		return StockUrgencyOK
	}
}

// Deficit returns how far stock is below the reorder threshold, floored at
// zero for stock at or above it.
func Deficit(currentStock, reorderThreshold decimal.Decimal) decimal.Decimal {
	d := reorderThreshold.Sub(currentStock)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

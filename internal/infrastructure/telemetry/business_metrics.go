// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the POS back office.
// It tracks ledger mutation activity and inventory health per branch.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	stockMutationTotal *Counter
	saleDeductionTotal *Counter
	refundRestoreTotal *Counter

	// Gauge metrics (point-in-time values)
	lowStockCount      *Gauge
	negativeStockCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider provides inventory data for periodic metrics
// collection. The interface keeps the telemetry layer from depending on the
// inventory domain directly.
type InventoryMetricsProvider interface {
	// GetLowStockCountByBranch returns, per branch, the number of tracked
	// ingredients at or below their reorder threshold.
	GetLowStockCountByBranch(ctx context.Context) (map[uuid.UUID]int64, error)

	// GetNegativeStockCountByBranch returns, per branch, the number of
	// tracked ingredients whose recorded stock is below zero.
	GetNegativeStockCountByBranch(ctx context.Context) (map[uuid.UUID]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	InventoryProvider InventoryMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	var err error

	bm.stockMutationTotal, err = NewCounter(
		cfg.Meter,
		"pos_stock_mutations_total",
		"Total number of inventory ledger mutations",
		"{mutations}",
	)
	if err != nil {
		return nil, err
	}

	bm.saleDeductionTotal, err = NewCounter(
		cfg.Meter,
		"pos_sale_deductions_total",
		"Total number of orders processed for stock deduction",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.refundRestoreTotal, err = NewCounter(
		cfg.Meter,
		"pos_refund_restores_total",
		"Total number of refunded orders compensated",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.lowStockCount, err = NewGauge(
		cfg.Meter,
		"pos_inventory_low_stock_count",
		"Number of ingredients at or below their reorder threshold",
		"{ingredients}",
	)
	if err != nil {
		return nil, err
	}

	bm.negativeStockCount, err = NewGauge(
		cfg.Meter,
		"pos_inventory_negative_stock_count",
		"Number of ingredients with negative recorded stock",
		"{ingredients}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordStockMutation records one committed ledger mutation.
// This should be called from the application layer after the mutation commits.
func (bm *BusinessMetrics) RecordStockMutation(ctx context.Context, branchID uuid.UUID, transactionType string) {
	bm.stockMutationTotal.Inc(ctx,
		AttrBranchID.String(branchID.String()),
		AttrTransactionType.String(transactionType),
	)
}

// RecordSaleDeduction records one order processed for stock deduction along
// with the number of SALE mutations it produced.
func (bm *BusinessMetrics) RecordSaleDeduction(ctx context.Context, branchID uuid.UUID, ingredientCount int64) {
	bm.saleDeductionTotal.Inc(ctx,
		AttrBranchID.String(branchID.String()),
	)
	bm.stockMutationTotal.Add(ctx, ingredientCount,
		AttrBranchID.String(branchID.String()),
		AttrTransactionType.String("SALE"),
	)
}

// RecordRefundRestore records one refunded order compensated back to stock.
func (bm *BusinessMetrics) RecordRefundRestore(ctx context.Context, branchID uuid.UUID) {
	bm.refundRestoreTotal.Inc(ctx,
		AttrBranchID.String(branchID.String()),
	)
}

// =============================================================================
// Inventory Health Gauges
// =============================================================================

// RecordLowStockCount records the number of ingredients at or below their
// reorder threshold for a branch. Updated periodically.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, branchID uuid.UUID, count int64) {
	bm.lowStockCount.Record(ctx, count,
		AttrBranchID.String(branchID.String()),
	)
}

// RecordNegativeStockCount records the number of ingredients with negative
// recorded stock for a branch. Updated periodically.
func (bm *BusinessMetrics) RecordNegativeStockCount(ctx context.Context, branchID uuid.UUID, count int64) {
	bm.negativeStockCount.Record(ctx, count,
		AttrBranchID.String(branchID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects inventory health gauges every interval (default: 5 minutes).
// This is non-blocking; use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectInventoryMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	lowStock, err := bm.inventoryProvider.GetLowStockCountByBranch(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock counts", zap.Error(err))
	} else {
		for branchID, count := range lowStock {
			bm.RecordLowStockCount(ctx, branchID, count)
		}
	}

	negative, err := bm.inventoryProvider.GetNegativeStockCountByBranch(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect negative stock counts", zap.Error(err))
	} else {
		for branchID, count := range negative {
			bm.RecordNegativeStockCount(ctx, branchID, count)
		}
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider using GORM.
// It aggregates over the branch_inventory table directly.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

type branchCount struct {
	BranchID uuid.UUID `gorm:"column:branch_id"`
	Count    int64     `gorm:"column:count"`
}

// GetLowStockCountByBranch returns, per branch, the number of tracked
// ingredients at or below their reorder threshold. Reorder thresholds live on
// the ingredient, current stock on the branch row, so the two are joined.
func (p *GormInventoryMetricsProvider) GetLowStockCountByBranch(ctx context.Context) (map[uuid.UUID]int64, error) {
	var results []branchCount
	err := p.db.WithContext(ctx).
		Table("branch_inventory").
		Select("branch_inventory.branch_id, COUNT(*) as count").
		Joins("JOIN ingredients ON ingredients.id = branch_inventory.ingredient_id").
		Where("branch_inventory.current_stock <= ingredients.reorder_threshold").
		Group("branch_inventory.branch_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	return toBranchCountMap(results), nil
}

// GetNegativeStockCountByBranch returns, per branch, the number of tracked
// ingredients whose recorded stock has gone below zero.
func (p *GormInventoryMetricsProvider) GetNegativeStockCountByBranch(ctx context.Context) (map[uuid.UUID]int64, error) {
	var results []branchCount
	err := p.db.WithContext(ctx).
		Table("branch_inventory").
		Select("branch_id, COUNT(*) as count").
		Where("current_stock < 0").
		Group("branch_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	return toBranchCountMap(results), nil
}

func toBranchCountMap(results []branchCount) map[uuid.UUID]int64 {
	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.BranchID] = r.Count
	}
	return m
}

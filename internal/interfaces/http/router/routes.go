package router

import (
	"github.com/beanpos/backend/internal/interfaces/http/handler"
)

// InventoryRoutes builds the stock ledger route group.
func InventoryRoutes(h *handler.InventoryHandler) *DomainGroup {
	dg := NewDomainGroup("inventory", "/inventory")

	dg.POST("/restock", h.Restock)
	dg.POST("/waste", h.RecordWaste)
	dg.POST("/adjust", h.Adjust)
	dg.POST("/sale", h.DeductSale)

	branches := dg.Group("branches", "/branches/:branchID")
	branches.GET("/low-stock", h.LowStock)
	branches.GET("/transactions", h.ListTransactions)
	branches.GET("/ingredients/:ingredientID", h.GetStock)
	branches.GET("/ingredients/:ingredientID/audit", h.AuditStock)

	return dg
}

// OrderRoutes builds the order stock consumption route group.
func OrderRoutes(h *handler.OrderHandler) *DomainGroup {
	dg := NewDomainGroup("orders", "/orders")

	dg.POST("/:orderID/stock-deductions", h.DeductForOrder)
	dg.POST("/:orderID/refund", h.Refund)

	return dg
}

// SystemRoutes builds the system route group.
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	dg := NewDomainGroup("system", "/system")

	dg.GET("/info", h.GetSystemInfo)
	dg.GET("/ping", h.Ping)
	dg.GET("/ready", h.Ready)

	return dg
}

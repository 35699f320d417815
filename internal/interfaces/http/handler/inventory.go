package handler

import (
	"strconv"

	inventoryapp "github.com/beanpos/backend/internal/application/inventory"
	"github.com/beanpos/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles the stock ledger API endpoints
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.StockLedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.StockLedgerService) *InventoryHandler {
	return &InventoryHandler{
		ledgerService: ledgerService,
	}
}

// ===================== Request/Response Types for Swagger =====================

// RestockStockRequest represents a request to record a stock delivery
// @Description Request body for recording a delivery for one ingredient at one branch
type RestockStockRequest struct {
	BranchID     string  `json:"branch_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	IngredientID string  `json:"ingredient_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0" example:"5000"`
	Reason       string  `json:"reason" binding:"max=255" example:"Weekly dairy delivery"`
}

// WasteStockRequest represents a request to write off spoiled stock
// @Description Request body for recording spoilage or breakage
type WasteStockRequest struct {
	BranchID     string  `json:"branch_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	IngredientID string  `json:"ingredient_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0" example:"250"`
	Reason       string  `json:"reason" binding:"required,min=1,max=255" example:"Milk expired"`
}

// AdjustStockRequest represents a request to adjust stock to a counted quantity
// @Description Request body for stocktake adjustment
type AdjustStockRequest struct {
	BranchID       string  `json:"branch_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	IngredientID   string  `json:"ingredient_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	ActualQuantity float64 `json:"actual_quantity" example:"950"`
	Reason         string  `json:"reason" binding:"required,min=1,max=255" example:"Monthly stocktake variance"`
}

// SaleDeductionItem is one resolved ingredient requirement of a sale
// @Description One ingredient requirement, already resolved through recipes
type SaleDeductionItem struct {
	IngredientID string  `json:"ingredient_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0" example:"400"`
}

// SaleDeductionRequest represents a request to deduct resolved sale consumption
// @Description Request body carrying an order's resolved per-ingredient requirements
type SaleDeductionRequest struct {
	BranchID string              `json:"branch_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrderID  string              `json:"order_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Items    []SaleDeductionItem `json:"items" binding:"required,min=1,dive"`
}

// ===================== Mutation Handlers =====================

// Restock godoc
// @ID           restockIngredient
// @Summary      Record a stock delivery
// @Description  Increase an ingredient's stock at a branch, creating the ledger row on first delivery
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body RestockStockRequest true "Restock request"
// @Success      200 {object} APIResponse[inventoryapp.MutationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req RestockStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, ingredientID, err := parseBranchAndIngredient(req.BranchID, req.IngredientID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Restock(c.Request.Context(), inventoryapp.RestockRequest{
		BranchID:     branchID,
		IngredientID: ingredientID,
		Quantity:     decimal.NewFromFloat(req.Quantity),
		Reason:       req.Reason,
		ActorID:      actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RecordWaste godoc
// @ID           recordWaste
// @Summary      Write off spoiled stock
// @Description  Decrease an ingredient's stock at a branch for spoilage or breakage. The ingredient must already be tracked at the branch.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body WasteStockRequest true "Waste request"
// @Success      200 {object} APIResponse[inventoryapp.MutationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/waste [post]
func (h *InventoryHandler) RecordWaste(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req WasteStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, ingredientID, err := parseBranchAndIngredient(req.BranchID, req.IngredientID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.RecordWaste(c.Request.Context(), inventoryapp.WasteRequest{
		BranchID:     branchID,
		IngredientID: ingredientID,
		Quantity:     decimal.NewFromFloat(req.Quantity),
		Reason:       req.Reason,
		ActorID:      actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Adjust godoc
// @ID           adjustStock
// @Summary      Adjust stock to a counted quantity
// @Description  Set an ingredient's stock to the physically counted quantity, recording the signed variance
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body AdjustStockRequest true "Adjustment request"
// @Success      200 {object} APIResponse[inventoryapp.MutationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, ingredientID, err := parseBranchAndIngredient(req.BranchID, req.IngredientID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Adjust(c.Request.Context(), inventoryapp.AdjustRequest{
		BranchID:       branchID,
		IngredientID:   ingredientID,
		ActualQuantity: decimal.NewFromFloat(req.ActualQuantity),
		Reason:         req.Reason,
		ActorID:        actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeductSale godoc
// @ID           deductSaleConsumption
// @Summary      Deduct an order's resolved ingredient consumption
// @Description  Applies one SALE ledger mutation per ingredient. Used by the order processor after recipe resolution; each ingredient commits independently.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body SaleDeductionRequest true "Resolved sale requirements"
// @Success      200 {object} APIResponse[inventoryapp.SaleDeductionResult]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/sale [post]
func (h *InventoryHandler) DeductSale(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req SaleDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	requirements := make(map[uuid.UUID]decimal.Decimal, len(req.Items))
	for _, item := range req.Items {
		ingredientID, err := uuid.Parse(item.IngredientID)
		if err != nil {
			h.BadRequest(c, "Invalid ingredient ID format")
			return
		}
		requirements[ingredientID] = requirements[ingredientID].Add(decimal.NewFromFloat(item.Quantity))
	}

	result, err := h.ledgerService.ApplySaleDeductions(c.Request.Context(), branchID, requirements, orderID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ===================== Query Handlers =====================

// GetStock godoc
// @ID           getBranchStock
// @Summary      Get current stock for an ingredient at a branch
// @Tags         inventory
// @Produce      json
// @Param        branchID path string true "Branch ID" format(uuid)
// @Param        ingredientID path string true "Ingredient ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.StockResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/branches/{branchID}/ingredients/{ingredientID} [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	branchID, ingredientID, err := parseBranchAndIngredient(c.Param("branchID"), c.Param("ingredientID"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stock, err := h.ledgerService.GetStock(c.Request.Context(), branchID, ingredientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stock)
}

// AuditStock godoc
// @ID           auditBranchStock
// @Summary      Reconcile an ingredient's stock against its ledger history
// @Description  Compares the inventory row with the sum of its recorded quantity changes and reports any drift
// @Tags         inventory
// @Produce      json
// @Param        branchID path string true "Branch ID" format(uuid)
// @Param        ingredientID path string true "Ingredient ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.StockAuditResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/branches/{branchID}/ingredients/{ingredientID}/audit [get]
func (h *InventoryHandler) AuditStock(c *gin.Context) {
	branchID, ingredientID, err := parseBranchAndIngredient(c.Param("branchID"), c.Param("ingredientID"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	audit, err := h.ledgerService.AuditStock(c.Request.Context(), branchID, ingredientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, audit)
}

// LowStock godoc
// @ID           getLowStockReport
// @Summary      List ingredients at or below their reorder threshold
// @Description  Returns low stock alerts for a branch ordered by deficit, largest first
// @Tags         inventory
// @Produce      json
// @Param        branchID path string true "Branch ID" format(uuid)
// @Success      200 {object} APIResponse[[]inventoryapp.LowStockAlert]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/branches/{branchID}/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}

	alerts, err := h.ledgerService.LowStock(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}

// ListTransactions godoc
// @ID           listBranchTransactions
// @Summary      List a branch's inventory ledger entries
// @Description  Returns ledger entries newest first with optional type filtering
// @Tags         inventory
// @Produce      json
// @Param        branchID path string true "Branch ID" format(uuid)
// @Param        type query string false "Filter by transaction type" Enums(SALE, RESTOCK, WASTE, ADJUSTMENT, REFUND)
// @Param        limit query int false "Page size" default(50) maximum(200)
// @Param        offset query int false "Offset" default(0)
// @Success      200 {object} APIResponse[inventoryapp.TransactionListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/branches/{branchID}/transactions [get]
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}

	filter := inventory.TransactionFilter{
		TransactionType: inventory.TransactionType(c.Query("type")),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			h.BadRequest(c, "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			h.BadRequest(c, "Invalid offset")
			return
		}
		filter.Offset = offset
	}

	list, err := h.ledgerService.ListTransactions(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, list)
}

// parseBranchAndIngredient parses the branch and ingredient ID pair shared by
// most ledger endpoints.
func parseBranchAndIngredient(branchIDStr, ingredientIDStr string) (uuid.UUID, uuid.UUID, error) {
	branchID, err := uuid.Parse(branchIDStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, &invalidIDError{field: "branch ID"}
	}
	ingredientID, err := uuid.Parse(ingredientIDStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, &invalidIDError{field: "ingredient ID"}
	}
	return branchID, ingredientID, nil
}

type invalidIDError struct {
	field string
}

func (e *invalidIDError) Error() string {
	return "Invalid " + e.field + " format"
}

package handler

import (
	orderapp "github.com/beanpos/backend/internal/application/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles stock consumption and refund compensation for orders
type OrderHandler struct {
	BaseHandler
	saleService   *orderapp.SaleConsumptionService
	refundService *orderapp.RefundService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(
	saleService *orderapp.SaleConsumptionService,
	refundService *orderapp.RefundService,
) *OrderHandler {
	return &OrderHandler{
		saleService:   saleService,
		refundService: refundService,
	}
}

// DeductForOrder godoc
// @ID           deductStockForOrder
// @Summary      Apply an order's recipe-based stock deductions
// @Description  Resolves each line's recipe and deducts the total ingredient consumption from the order's branch. Each ingredient commits independently.
// @Tags         orders
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        orderID path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.SaleDeductionResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /orders/{orderID}/stock-deductions [post]
func (h *OrderHandler) DeductForOrder(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.saleService.DeductForOrder(c.Request.Context(), orderapp.SaleConsumptionRequest{
		OrderID: orderID,
		ActorID: actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refund godoc
// @ID           refundOrder
// @Summary      Compensate an order's stock after a refund
// @Description  Restores the ingredients the order consumed, skipping untracked rows, and marks the order refunded. A second refund is rejected.
// @Tags         orders
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        orderID path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.RefundResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /orders/{orderID}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.refundService.Compensate(c.Request.Context(), orderapp.RefundRequest{
		OrderID: orderID,
		ActorID: actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

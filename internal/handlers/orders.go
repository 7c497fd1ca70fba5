package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

type OrdersHandler struct {
	orders *services.OrderService
}

func NewOrdersHandler(orders *services.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// CreateOrder godoc
// @Summary     Order a 3D print
// @Description Places a pending order for a completed 3D model. The unit price is
// @Description copied from the print size at this moment; later price changes do not affect the order.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateOrderRequest true "Order details"
// @Success     201 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		badRequest(c, "model_id must be a UUID")
		return
	}
	sizeID, err := uuid.Parse(req.PrintSizeID)
	if err != nil {
		badRequest(c, "print_size_id must be a UUID")
		return
	}

	order, err := h.orders.Create(c.Request.Context(), userID, services.CreateOrderInput{
		ModelID:     modelID,
		PrintSizeID: sizeID,
		Quantity:    req.Quantity,
		Shipping:    req.ShippingInfo(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewOrderResponse(order))
}

// ListOrders godoc
// @Summary     List orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	orders, err := h.orders.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderList(orders))
}

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}

// GetOrderByNumber godoc
// @Summary     Find an order by its number
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_number path string true "Order number, e.g. PET3D-1736942400123-K3J9QZ"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/number/{order_number} [get]
func (h *OrdersHandler) GetOrderByNumber(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetByNumber(c.Request.Context(), userID, c.Param("order_number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}

// CancelOrder godoc
// @Summary     Cancel an order
// @Description Only pending orders can be cancelled. Pending payments are voided.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{id}/cancel [post]
func (h *OrdersHandler) CancelOrder(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}

func orderList(orders []models.Order) models.OrderListResponse {
	resp := models.OrderListResponse{Orders: make([]models.OrderResponse, 0, len(orders))}
	for i := range orders {
		resp.Orders = append(resp.Orders, models.NewOrderResponse(&orders[i]))
	}
	return resp
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

const defaultAdminListLimit = 100

type AdminHandler struct {
	orders *services.OrderService
}

func NewAdminHandler(orders *services.OrderService) *AdminHandler {
	return &AdminHandler{orders: orders}
}

// ListOrders godoc
// @Summary     List all orders (admin)
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Filter by order status"
// @Param       limit query int false "Maximum number of orders (default 100)"
// @Success     200 {object} models.OrderListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit := defaultAdminListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			badRequest(c, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	orders, err := h.orders.ListAll(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderList(orders))
}

// UpdateOrderStatus godoc
// @Summary     Advance order fulfillment (admin)
// @Description Moves a paid order through processing, shipped and delivered, one step at a time.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Param       request body models.UpdateOrderStatusRequest true "Next status"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.orders.AdvanceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}

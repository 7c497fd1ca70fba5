package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

type PaymentsHandler struct {
	payments *services.PaymentService
}

func NewPaymentsHandler(payments *services.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// InitiatePayment godoc
// @Summary     Start PayPal checkout
// @Description Creates a PayPal order for the full order total and returns the approval URL
// @Description the buyer must visit. Starting a new checkout voids the previous pending one.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Param       request body models.InitiatePaymentRequest true "Return and cancel URLs"
// @Success     201 {object} models.InitiatePaymentResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /orders/{id}/payments [post]
func (h *PaymentsHandler) InitiatePayment(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ip, err := h.payments.Initiate(c.Request.Context(), userID, orderID, req.ReturnURL, req.CancelURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.InitiatePaymentResponse{
		PaymentID:     ip.Payment.ID.String(),
		PayPalOrderID: ip.Payment.ProviderOrderID,
		ApprovalURL:   ip.ApprovalURL,
	})
}

// GetPayment godoc
// @Summary     Latest payment of an order
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.PaymentResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{id}/payment [get]
func (h *PaymentsHandler) GetPayment(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.payments.GetForOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPaymentResponse(p))
}

// CapturePayment godoc
// @Summary     Capture an approved PayPal order
// @Description Captures funds after the buyer approved the checkout. On success the payment
// @Description becomes "completed" and the order "paid". Repeating a successful capture
// @Description returns the same result. A capture PayPal did not complete returns success=false.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CapturePaymentRequest true "PayPal order ID"
// @Success     200 {object} models.CapturePaymentResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /payments/capture [post]
func (h *PaymentsHandler) CapturePayment(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req models.CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := h.payments.Capture(c.Request.Context(), userID, req.PayPalOrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	payment := models.NewPaymentResponse(out.Payment)
	order := models.NewOrderResponse(out.Order)
	c.JSON(http.StatusOK, models.CapturePaymentResponse{
		Success: out.Success,
		Status:  out.Status,
		Payment: &payment,
		Order:   &order,
	})
}

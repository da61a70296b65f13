package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/foodles/order-api/internal/handler"
	"github.com/foodles/order-api/internal/model"
	"github.com/foodles/order-api/internal/payment"
	"github.com/foodles/order-api/internal/service/notification"
	"github.com/foodles/order-api/pkg/httputil"
)

type Handler struct {
	verifier *payment.Verifier
	gateway  payment.Gateway
	notifier *notification.Service
	logger   *zerolog.Logger
}

func NewHandler(verifier *payment.Verifier, gateway payment.Gateway, notifier *notification.Service, logger *zerolog.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payment")
	{
		payments.POST("/verify-payment", h.VerifyPayment)
		payments.GET("/status/:paymentId", h.PaymentStatus)
	}
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
	OrderID           string `json:"orderId" binding:"required"`
	CustomerName      string `json:"name"`
	CustomerEmail     string `json:"email" binding:"required"`
	OrderDetails      string `json:"orderDetails"`
	VendorEmail       string `json:"vendorEmail"`
	VendorPhone       string `json:"vendorPhone"`
	RestaurantID      string `json:"restaurantId"`
}

type verifyPaymentResponse struct {
	Verified       bool   `json:"verified"`
	OrderID        string `json:"orderId,omitempty"`
	VendorNotified bool   `json:"vendorNotified,omitempty"`
}

// VerifyPayment checks the gateway signature and, when it matches, kicks off
// the notification fan-out in the background. The response never waits for
// notification delivery.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if !h.verifier.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.Signature) {
		h.logger.Warn().
			Str("order_id", req.OrderID).
			Str("razorpay_order_id", req.RazorpayOrderID).
			Msg("payment signature mismatch")
		c.JSON(http.StatusOK, verifyPaymentResponse{Verified: false})
		return
	}

	var details model.OrderDetails
	if req.OrderDetails != "" {
		if err := json.Unmarshal([]byte(req.OrderDetails), &details); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid order details payload"))
			return
		}
	}

	job := &model.OrderNotification{
		OrderID:       req.OrderID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		VendorEmail:   req.VendorEmail,
		VendorPhone:   req.VendorPhone,
		RestaurantID:  req.RestaurantID,
		Details:       details,
	}

	// Fire and forget: completion is observable only through the snapshot
	// store. The request context dies with this response, so the fan-out
	// runs on a fresh one.
	go h.notifier.Notify(context.Background(), job)

	c.JSON(http.StatusOK, verifyPaymentResponse{
		Verified:       true,
		OrderID:        req.OrderID,
		VendorNotified: req.VendorEmail != "",
	})
}

// PaymentStatus probes the gateway for a payment's capture state.
func (h *Handler) PaymentStatus(c *gin.Context) {
	paymentID := c.Param("paymentId")

	details, err := h.gateway.FetchPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.logger.Error().Err(err).Str("payment_id", paymentID).Msg("payment status probe failed")
		httputil.RespondWithError(c, err)
		return
	}

	if !details.Captured() {
		c.JSON(http.StatusOK, gin.H{"status": "failed", "message": "Payment not captured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "captured", "paymentDetails": details})
}

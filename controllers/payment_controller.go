package controllers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "payment-service/errors"
	"payment-service/middleware"
	"payment-service/models"
	"payment-service/services"
)

type PaymentController struct {
	Payments *services.PaymentService
	Logger   *zap.Logger
}

// CreateOrder creates a gateway order for the calling service and returns the
// gateway order id plus the public key id for the checkout.
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pc.respondError(c, http.StatusBadRequest, "invalid create-order request", err)
		return
	}

	resp, err := pc.Payments.CreateOrder(c.Request.Context(), tenant, req)
	if err != nil {
		pc.Logger.Warn("create order failed", zap.Error(err))
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyPayment reconciles a client-reported payment confirmation against the
// gateway signature. Bad signatures come back as a failed verification, not a
// server error.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pc.respondError(c, http.StatusBadRequest, "invalid verify-payment request", err)
		return
	}

	if err := pc.Payments.VerifyAndRecordPayment(c.Request.Context(), tenant, req); err != nil {
		if stderrors.Is(err, apperr.ErrSignatureInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "failed", "message": "Payment verification failed."})
			return
		}
		pc.Logger.Warn("payment verification failed",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.Error(err),
		)
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Payment verified successfully."})
}

// ListTransactions lists gateway-side payments inside an optional RFC3339
// from/to window.
func (pc *PaymentController) ListTransactions(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		pc.respondError(c, http.StatusBadRequest, "invalid 'from' timestamp", err)
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		pc.respondError(c, http.StatusBadRequest, "invalid 'to' timestamp", err)
		return
	}

	items, err := pc.Payments.ListPayments(c.Request.Context(), tenant, from, to)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// GetPaymentDetails fetches the latest state of one payment from the gateway.
func (pc *PaymentController) GetPaymentDetails(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	payment, err := pc.Payments.FetchPayment(c.Request.Context(), tenant, c.Param("paymentId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// CapturePayment captures a previously authorized payment.
func (pc *PaymentController) CapturePayment(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	var req models.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pc.respondError(c, http.StatusBadRequest, "invalid capture request", err)
		return
	}

	payment, err := pc.Payments.CapturePayment(c.Request.Context(), tenant, c.Param("paymentId"), req.Amount)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GetOrderStatus reports the status and amount of an internal payment order.
func (pc *PaymentController) GetOrderStatus(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	status, err := pc.Payments.GetOrderStatus(c.Request.Context(), tenant, c.Param("orderId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelOrder cancels an unpaid payment order. This is a status change in our
// records; it does not call the gateway.
func (pc *PaymentController) CancelOrder(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	if err := pc.Payments.CancelOrder(c.Request.Context(), tenant, c.Param("orderId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Payment order cancelled successfully."})
}

// respondError logs a warning and writes a JSON error response.
func (pc *PaymentController) respondError(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		pc.Logger.Warn(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseTimeQuery(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

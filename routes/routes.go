package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payment-service/controllers"
	"payment-service/middleware"
)

func RegisterRoutes(r *gin.Engine, pc *controllers.PaymentController, rc *controllers.RefundController, wc *controllers.WebhookController, jwtSecret string) {
	payments := r.Group("/api/internal/payments")
	payments.Use(middleware.AuthMiddleware(jwtSecret))
	payments.POST("/create-order", pc.CreateOrder)
	payments.POST("/verify-payment", pc.VerifyPayment)
	payments.GET("/transactions", pc.ListTransactions)
	payments.GET("/transactions/:paymentId", pc.GetPaymentDetails)
	payments.POST("/transactions/:paymentId/capture", pc.CapturePayment)
	payments.GET("/status/:orderId", pc.GetOrderStatus)
	payments.POST("/cancel/:orderId", pc.CancelOrder)

	refunds := r.Group("/api/internal/refunds")
	refunds.Use(middleware.AuthMiddleware(jwtSecret))
	refunds.POST("", rc.InitiateRefund)
	refunds.GET("/:refundId", rc.GetRefundStatus)

	// Gateway webhook (no auth; the payload signature is the trust boundary)
	r.POST("/api/webhooks/razorpay", wc.HandleGatewayWebhook)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

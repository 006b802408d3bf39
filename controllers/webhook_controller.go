package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"payment-service/services"
)

type WebhookController struct {
	Webhooks *services.WebhookService
	Logger   *zap.Logger
}

// HandleGatewayWebhook receives gateway event deliveries. Receipt is always
// acknowledged with 200: the gateway redelivers on non-2xx status, and a bad
// payload will not get better on retry.
func (wc *WebhookController) HandleGatewayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		wc.Logger.Warn("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	eventID := c.GetHeader("X-Razorpay-Event-Id")
	sig := c.GetHeader("X-Razorpay-Signature")
	wc.Logger.Info("webhook delivery received", zap.String("event_id", eventID))

	wc.Webhooks.Ingest(c.Request.Context(), payload, sig)

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

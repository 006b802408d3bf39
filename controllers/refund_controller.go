package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "payment-service/errors"
	"payment-service/middleware"
	"payment-service/models"
	"payment-service/services"
)

type RefundController struct {
	Refunds *services.RefundService
	Logger  *zap.Logger
}

// InitiateRefund starts a refund of a captured payment.
func (rc *RefundController) InitiateRefund(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	var req models.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rc.Logger.Warn("invalid refund request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refund request"})
		return
	}

	refund, err := rc.Refunds.CreateRefund(c.Request.Context(), tenant, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

// GetRefundStatus reads the latest state of a refund from the gateway.
func (rc *RefundController) GetRefundStatus(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apperr.Respond(c, apperr.ErrMissingTenant)
		return
	}

	refund, err := rc.Refunds.FetchRefund(c.Request.Context(), tenant, c.Param("refundId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, refund)
}

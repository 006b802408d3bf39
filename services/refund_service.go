package services

import (
	"context"

	"go.uber.org/zap"

	apperr "payment-service/errors"
	"payment-service/models"
)

// RefundService initiates and inspects refunds against the gateway. Refund
// bookkeeping stays gateway-side; no local refund records are persisted.
type RefundService struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewRefundService(gateway Gateway, logger *zap.Logger) *RefundService {
	return &RefundService{gateway: gateway, logger: logger}
}

// CreateRefund initiates a (possibly partial) refund of a captured payment.
func (s *RefundService) CreateRefund(ctx context.Context, tenant models.TenantContext, req models.CreateRefundRequest) (map[string]interface{}, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	switch {
	case req.PaymentID == "":
		return nil, apperr.Wrapf(apperr.ErrInvalidInput, "payment id is required")
	case req.Amount <= 0:
		return nil, apperr.Wrapf(apperr.ErrInvalidInput, "refund amount must be greater than zero")
	case req.Reason == "":
		return nil, apperr.Wrapf(apperr.ErrInvalidInput, "refund reason is required")
	}

	notes := map[string]interface{}{
		"reason":       req.Reason,
		"initiated_by": tenant.UserID,
	}
	refund, err := s.gateway.CreateRefund(ctx, req.PaymentID, minorUnits(req.Amount), notes, req.Immediate)
	if err != nil {
		s.logger.Warn("refund initiation failed",
			zap.String("payment_id", req.PaymentID),
			zap.Float64("amount", req.Amount),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("refund initiated",
		zap.String("payment_id", req.PaymentID),
		zap.Float64("amount", req.Amount),
		zap.Bool("immediate", req.Immediate),
	)
	return refund, nil
}

// FetchRefund reads the latest state of a refund from the gateway.
func (s *RefundService) FetchRefund(ctx context.Context, tenant models.TenantContext, refundID string) (map[string]interface{}, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if refundID == "" {
		return nil, apperr.Wrapf(apperr.ErrInvalidInput, "refund id is required")
	}
	return s.gateway.FetchRefund(ctx, refundID)
}

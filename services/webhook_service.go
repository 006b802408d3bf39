package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"payment-service/metrics"
	"payment-service/signature"
)

// WebhookService verifies and routes asynchronous gateway events.
//
// The gateway retries deliveries based on HTTP status, so every failure here
// is terminal for the single delivery: it is logged and counted, never
// propagated, and the HTTP layer acknowledges receipt unconditionally.
type WebhookService struct {
	payments *PaymentService
	secret   string
	logger   *zap.Logger
}

func NewWebhookService(payments *PaymentService, webhookSecret string, logger *zap.Logger) *WebhookService {
	return &WebhookService{payments: payments, secret: webhookSecret, logger: logger}
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Ingest processes one webhook delivery: signature check, envelope parse,
// event dispatch. Unrecognized event types are counted and ignored.
func (s *WebhookService) Ingest(ctx context.Context, payload []byte, sig string) {
	ok, err := signature.VerifyWebhookSignature(payload, sig, s.secret)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		s.logger.Warn("webhook delivery could not be verified", zap.Error(err))
		return
	}
	if !ok {
		metrics.WebhookEvents.WithLabelValues("unknown", "signature_invalid").Inc()
		s.logger.Warn("webhook signature verification failed")
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		s.logger.Warn("webhook payload is not valid JSON", zap.Error(err))
		return
	}

	switch env.Event {
	case "payment.captured":
		s.handlePaymentCaptured(ctx, env)
	default:
		metrics.WebhookEvents.WithLabelValues(env.Event, "ignored").Inc()
		s.logger.Info("ignoring unhandled webhook event", zap.String("event_type", env.Event))
	}
}

func (s *WebhookService) handlePaymentCaptured(ctx context.Context, env webhookEnvelope) {
	entity := env.Payload.Payment.Entity
	if entity.OrderID == "" || entity.ID == "" {
		metrics.WebhookEvents.WithLabelValues(env.Event, "malformed").Inc()
		s.logger.Warn("captured-payment event is missing the payment entity")
		return
	}

	if err := s.payments.ConfirmCapturedPayment(ctx, entity.OrderID, entity.ID); err != nil {
		metrics.WebhookEvents.WithLabelValues(env.Event, "error").Inc()
		s.logger.Error("failed to record captured payment",
			zap.String("gateway_order_id", entity.OrderID),
			zap.String("gateway_payment_id", entity.ID),
			zap.Error(err),
		)
		return
	}

	metrics.WebhookEvents.WithLabelValues(env.Event, "processed").Inc()
	s.logger.Info("captured-payment event processed",
		zap.String("gateway_order_id", entity.OrderID),
		zap.String("gateway_payment_id", entity.ID),
	)
}

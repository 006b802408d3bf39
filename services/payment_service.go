package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperr "payment-service/errors"
	"payment-service/metrics"
	"payment-service/models"
	"payment-service/repository"
	"payment-service/signature"
)

// EventNotifier publishes payment lifecycle events to the originating service.
type EventNotifier interface {
	Publish(ctx context.Context, event models.PaymentEvent) error
}

// PaymentService owns the payment order lifecycle: remote order creation,
// signature-gated payment confirmation, cancellation and status reads.
//
// A confirmation can arrive through the client verification call and the
// gateway webhook in any order, any number of times, concurrently. The
// CREATED->PAID transition is a conditional write at the storage layer, so
// exactly one writer records the payment details and every other confirmation
// observes PAID and succeeds as a no-op.
type PaymentService struct {
	gateway  Gateway
	repo     repository.PaymentOrderRepository
	notifier EventNotifier
	logger   *zap.Logger

	keyID       string
	keySecret   string
	displayName string
}

func NewPaymentService(
	gateway Gateway,
	repo repository.PaymentOrderRepository,
	notifier EventNotifier,
	logger *zap.Logger,
	keyID, keySecret, displayName string,
) *PaymentService {
	return &PaymentService{
		gateway:     gateway,
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
		keyID:       keyID,
		keySecret:   keySecret,
		displayName: displayName,
	}
}

// CreateOrder creates a remote gateway order and records it locally in
// CREATED state. Validation runs before any remote call. If the gateway call
// fails no local record is written; if local persistence fails after the
// gateway accepted the order, the failure is surfaced and the orphaned
// gateway order id is logged for reconciliation.
func (s *PaymentService) CreateOrder(ctx context.Context, tenant models.TenantContext, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	gatewayOrderID, err := s.gateway.CreateOrder(ctx, minorUnits(req.Amount), currency, req.SourceInvoiceID)
	if err != nil {
		s.logger.Warn("gateway order creation failed",
			zap.String("source_invoice_id", req.SourceInvoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	order := &models.PaymentOrder{
		OrderID:         newOrderID(),
		OrganizationID:  tenant.OrganizationID,
		BranchID:        tenant.BranchID,
		SourceInvoiceID: req.SourceInvoiceID,
		SourceService:   req.SourceService,
		GatewayOrderID:  gatewayOrderID,
		Amount:          req.Amount,
		Currency:        currency,
		Status:          models.StatusCreated,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		// The remote order now exists without a local record. There is no
		// compensation path; make the gap loud instead of returning success.
		s.logger.Error("payment order persistence failed after gateway order creation",
			zap.String("gateway_order_id", gatewayOrderID),
			zap.String("source_invoice_id", req.SourceInvoiceID),
			zap.Error(err),
		)
		return nil, apperr.Wrap(apperr.ErrInternalServer, err)
	}

	s.logger.Info("payment order created",
		zap.String("order_id", order.OrderID),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.Float64("amount", order.Amount),
		zap.String("currency", currency),
	)

	return &models.CreateOrderResponse{
		GatewayOrderID: gatewayOrderID,
		GatewayKeyID:   s.keyID,
		Amount:         req.Amount,
		DisplayName:    s.displayName,
	}, nil
}

// VerifyAndRecordPayment reconciles a client-reported payment confirmation.
// The signature gate runs first; a tampered signature never touches order
// state. Confirmation is idempotent: an already-PAID order is a success.
func (s *PaymentService) VerifyAndRecordPayment(ctx context.Context, tenant models.TenantContext, req models.VerifyPaymentRequest) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	ok, err := signature.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature, s.keySecret)
	if err != nil {
		return apperr.Wrap(apperr.ErrInvalidInput, err)
	}
	if !ok {
		metrics.PaymentConfirmations.WithLabelValues("client", "signature_invalid").Inc()
		s.logger.Warn("payment signature verification failed",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.String("gateway_payment_id", req.GatewayPaymentID),
		)
		return apperr.ErrSignatureInvalid
	}

	order, err := s.repo.FindByGatewayOrderID(ctx, tenant, req.GatewayOrderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			metrics.PaymentConfirmations.WithLabelValues("client", "order_not_found").Inc()
			return apperr.Wrapf(apperr.ErrOrderNotFound, "payment order for gateway order %s not found", req.GatewayOrderID)
		}
		return apperr.Wrap(apperr.ErrInternalServer, err)
	}

	sig := req.GatewaySignature
	return s.confirm(ctx, order, req.GatewayPaymentID, &sig, "client")
}

// ConfirmCapturedPayment records a payment confirmation arriving through the
// webhook channel. The payment-level signature is absent on this path; the
// webhook's own signature (checked by the ingestor) is the trust boundary.
func (s *PaymentService) ConfirmCapturedPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID string) error {
	if gatewayOrderID == "" || gatewayPaymentID == "" {
		return apperr.Wrapf(apperr.ErrInvalidInput, "gateway order id and payment id are required")
	}

	order, err := s.repo.LookupByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			metrics.PaymentConfirmations.WithLabelValues("webhook", "order_not_found").Inc()
			return apperr.Wrapf(apperr.ErrOrderNotFound, "payment order for gateway order %s not found", gatewayOrderID)
		}
		return apperr.Wrap(apperr.ErrInternalServer, err)
	}

	return s.confirm(ctx, order, gatewayPaymentID, nil, "webhook")
}

// confirm applies the idempotent CREATED->PAID transition for one confirmation
// channel. Exactly one caller wins the conditional write and publishes the
// success event; losers re-read and treat an observed PAID as success.
func (s *PaymentService) confirm(ctx context.Context, order *models.PaymentOrder, gatewayPaymentID string, gatewaySignature *string, channel string) error {
	if order.Status == models.StatusPaid {
		metrics.PaymentConfirmations.WithLabelValues(channel, "duplicate").Inc()
		return nil
	}

	won, err := s.repo.MarkPaid(ctx, order.OrderID, gatewayPaymentID, gatewaySignature)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternalServer, err)
	}
	if !won {
		current, err := s.repo.LookupByGatewayOrderID(ctx, order.GatewayOrderID)
		if err != nil {
			return apperr.Wrap(apperr.ErrInternalServer, err)
		}
		if current.Status == models.StatusPaid {
			metrics.PaymentConfirmations.WithLabelValues(channel, "duplicate").Inc()
			return nil
		}
		metrics.PaymentConfirmations.WithLabelValues(channel, "invalid_state").Inc()
		return apperr.Wrapf(apperr.ErrInvalidStateTransition, "payment order %s is %s", order.OrderID, current.Status)
	}

	metrics.PaymentConfirmations.WithLabelValues(channel, "success").Inc()
	s.logger.Info("payment order marked paid",
		zap.String("order_id", order.OrderID),
		zap.String("gateway_order_id", order.GatewayOrderID),
		zap.String("gateway_payment_id", gatewayPaymentID),
		zap.String("channel", channel),
	)
	s.publish(ctx, order, models.EventPaymentSucceeded)
	return nil
}

// CancelOrder moves an unpaid order to CANCELLED. Cancelling a PAID order is
// rejected; repeating a cancellation is a no-op success.
func (s *PaymentService) CancelOrder(ctx context.Context, tenant models.TenantContext, orderID string) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	order, err := s.findByID(ctx, tenant, orderID)
	if err != nil {
		return err
	}

	switch order.Status {
	case models.StatusPaid:
		return apperr.Wrapf(apperr.ErrInvalidStateTransition, "cannot cancel payment order %s: already paid", orderID)
	case models.StatusCancelled:
		return nil
	}

	won, err := s.repo.MarkCancelled(ctx, tenant, orderID)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternalServer, err)
	}
	if !won {
		// Lost a race against a confirmation or another cancellation.
		current, err := s.findByID(ctx, tenant, orderID)
		if err != nil {
			return err
		}
		if current.Status == models.StatusCancelled {
			return nil
		}
		return apperr.Wrapf(apperr.ErrInvalidStateTransition, "cannot cancel payment order %s: status is %s", orderID, current.Status)
	}

	s.logger.Info("payment order cancelled",
		zap.String("order_id", orderID),
		zap.String("organization_id", tenant.OrganizationID),
	)
	s.publish(ctx, order, models.EventPaymentCancelled)
	return nil
}

// GetOrderStatus projects an order to its status and amount.
func (s *PaymentService) GetOrderStatus(ctx context.Context, tenant models.TenantContext, orderID string) (*models.PaymentOrderStatusResponse, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}

	order, err := s.findByID(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	return &models.PaymentOrderStatusResponse{
		OrderID: order.OrderID,
		Status:  order.Status,
		Amount:  order.Amount,
	}, nil
}

// ListPayments fetches gateway-side payments for the tenant's organization
// within the given window.
func (s *PaymentService) ListPayments(ctx context.Context, tenant models.TenantContext, from, to time.Time) ([]interface{}, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	return s.gateway.ListPayments(ctx, from, to)
}

// FetchPayment reads the latest state of a single payment from the gateway.
func (s *PaymentService) FetchPayment(ctx context.Context, tenant models.TenantContext, paymentID string) (map[string]interface{}, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if paymentID == "" {
		return nil, apperr.Wrapf(apperr.ErrInvalidInput, "payment id is required")
	}
	return s.gateway.FetchPayment(ctx, paymentID)
}

// CapturePayment captures a previously authorized payment for the given
// major-unit amount.
func (s *PaymentService) CapturePayment(ctx context.Context, tenant models.TenantContext, paymentID string, amount float64) (map[string]interface{}, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if paymentID == "" || amount <= 0 {
		return nil, apperr.Wrapf(apperr.ErrInvalidInput, "payment id and a positive amount are required")
	}
	return s.gateway.CapturePayment(ctx, paymentID, minorUnits(amount), "INR")
}

func (s *PaymentService) findByID(ctx context.Context, tenant models.TenantContext, orderID string) (*models.PaymentOrder, error) {
	order, err := s.repo.FindByID(ctx, tenant, orderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrapf(apperr.ErrOrderNotFound, "payment order %s not found", orderID)
		}
		return nil, apperr.Wrap(apperr.ErrInternalServer, err)
	}
	return order, nil
}

// publish notifies the originating service. Delivery failures never fail the
// payment operation.
func (s *PaymentService) publish(ctx context.Context, order *models.PaymentOrder, eventType string) {
	if s.notifier == nil {
		return
	}
	event := models.PaymentEvent{
		Type:            eventType,
		OrganizationID:  order.OrganizationID,
		BranchID:        order.BranchID,
		OrderID:         order.OrderID,
		SourceInvoiceID: order.SourceInvoiceID,
		SourceService:   order.SourceService,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}

func validateCreateOrder(req models.CreateOrderRequest) error {
	switch {
	case req.Amount <= 0:
		return apperr.Wrapf(apperr.ErrInvalidInput, "amount must be greater than zero")
	case req.SourceInvoiceID == "":
		return apperr.Wrapf(apperr.ErrInvalidInput, "source invoice id is required")
	case req.SourceService == "":
		return apperr.Wrapf(apperr.ErrInvalidInput, "source service is required")
	case len(req.Currency) != 3:
		return apperr.Wrapf(apperr.ErrInvalidInput, "currency must be a 3-letter code")
	}
	return nil
}

func newOrderID() string {
	return "ord_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

package services

import (
	"context"
	stderrors "errors"
	"time"

	rzperrors "github.com/razorpay/razorpay-go/errors"

	apperr "payment-service/errors"
)

// Gateway wraps the remote payment gateway operations the service depends on.
// Amounts are in the gateway's minor currency unit (paise for INR). The
// implementation does not retry; transient failures surface as
// GatewayUnavailable, permanent rejections as GatewayRejected.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
	CapturePayment(ctx context.Context, paymentID string, amountMinor int64, currency string) (map[string]interface{}, error)
	ListPayments(ctx context.Context, from, to time.Time) ([]interface{}, error)
	CreateRefund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]interface{}, immediate bool) (map[string]interface{}, error)
	FetchRefund(ctx context.Context, refundID string) (map[string]interface{}, error)
}

// minorUnits converts a major-unit amount to the gateway's integer minor-unit
// representation (amount x 100, truncated).
func minorUnits(amount float64) int64 {
	return int64(amount * 100)
}

// mapGatewayError translates SDK errors into the service error taxonomy.
// A bad-request rejection is permanent; everything else (server errors,
// gateway errors, transport failures) is treated as transient.
func mapGatewayError(err error) error {
	var badReq *rzperrors.BadRequestError
	if stderrors.As(err, &badReq) {
		return apperr.Wrap(apperr.ErrGatewayRejected, err)
	}
	return apperr.Wrap(apperr.ErrGatewayUnavailable, err)
}

package services

import (
	"context"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	apperr "payment-service/errors"
)

// RazorpayGateway is the production Gateway backed by the Razorpay SDK.
// The SDK has no context support, so the ctx parameters are accepted for
// interface symmetry only; timeouts are the transport's.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", mapGatewayError(err)
	}
	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", apperr.Wrapf(apperr.ErrGatewayUnavailable, "gateway order response missing order id")
	}
	return orderID, nil
}

func (g *RazorpayGateway) FetchPayment(_ context.Context, paymentID string) (map[string]interface{}, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return body, nil
}

func (g *RazorpayGateway) CapturePayment(_ context.Context, paymentID string, amountMinor int64, currency string) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"currency": currency,
	}
	body, err := g.client.Payment.Capture(paymentID, int(amountMinor), data, nil)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return body, nil
}

func (g *RazorpayGateway) ListPayments(_ context.Context, from, to time.Time) ([]interface{}, error) {
	// The gateway filters on unix-second timestamps.
	params := map[string]interface{}{
		"count": 100,
	}
	if !from.IsZero() {
		params["from"] = from.Unix()
	}
	if !to.IsZero() {
		params["to"] = to.Unix()
	}
	body, err := g.client.Payment.All(params, nil)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	items, _ := body["items"].([]interface{})
	return items, nil
}

func (g *RazorpayGateway) CreateRefund(_ context.Context, paymentID string, amountMinor int64, notes map[string]interface{}, immediate bool) (map[string]interface{}, error) {
	speed := "normal"
	if immediate {
		speed = "optimum"
	}
	data := map[string]interface{}{
		"speed": speed,
		"notes": notes,
	}
	body, err := g.client.Payment.Refund(paymentID, int(amountMinor), data, nil)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return body, nil
}

func (g *RazorpayGateway) FetchRefund(_ context.Context, refundID string) (map[string]interface{}, error) {
	body, err := g.client.Refund.Fetch(refundID, nil, nil)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return body, nil
}

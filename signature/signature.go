// Package signature implements the gateway's HMAC signing scheme for payment
// confirmations and webhook deliveries.
//
// The gateway signs a payment as hex(HMAC-SHA256(orderID + "|" + paymentID, secret))
// and a webhook as hex(HMAC-SHA256(rawBody, webhookSecret)). Verification failure is
// a normal outcome (false, nil); only missing inputs are reported as an error, so
// callers can tell "the check ran and rejected" from "the check could not run".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// PaymentSignature computes the expected signature for a payment confirmation.
func PaymentSignature(orderID, paymentID, secret string) string {
	return sign([]byte(orderID+"|"+paymentID), secret)
}

// WebhookSignature computes the expected signature for a raw webhook body.
func WebhookSignature(payload []byte, secret string) string {
	return sign(payload, secret)
}

// VerifyPaymentSignature checks a client-reported payment confirmation signature.
func VerifyPaymentSignature(orderID, paymentID, sig, secret string) (bool, error) {
	if orderID == "" || paymentID == "" || sig == "" {
		return false, fmt.Errorf("order id, payment id and signature are required")
	}
	if secret == "" {
		return false, fmt.Errorf("signing secret is not configured")
	}
	return equal(PaymentSignature(orderID, paymentID, secret), sig), nil
}

// VerifyWebhookSignature checks the signature header of a webhook delivery
// against the raw request body.
func VerifyWebhookSignature(payload []byte, sig, secret string) (bool, error) {
	if len(payload) == 0 || sig == "" {
		return false, fmt.Errorf("payload and signature are required")
	}
	if secret == "" {
		return false, fmt.Errorf("signing secret is not configured")
	}
	return equal(WebhookSignature(payload, secret), sig), nil
}

func sign(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// equal compares hex signatures without leaking timing information.
func equal(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(got))
}

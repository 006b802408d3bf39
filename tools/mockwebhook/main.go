// mockwebhook signs and posts a fake gateway webhook against a local instance
// of the payment service. Useful for exercising the ingestion path without a
// real gateway account.
package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"payment-service/signature"
)

type webhookPayload struct {
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

func main() {
	url := flag.String("url", "http://localhost:8087/api/webhooks/razorpay", "Webhook URL")
	secret := flag.String("secret", os.Getenv("RAZORPAY_WEBHOOK_SECRET"), "Webhook secret")
	eventID := flag.String("event-id", "evt_"+randomHex(8), "Event ID header value")
	eventType := flag.String("type", "payment.captured", "Event type")
	orderID := flag.String("order-id", "", "Gateway order id (order_xxx)")
	paymentID := flag.String("payment-id", "pay_"+randomHex(8), "Gateway payment id")
	dryRun := flag.Bool("dry-run", false, "Only print the signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and RAZORPAY_WEBHOOK_SECRET not set\n")
		os.Exit(1)
	}
	if *orderID == "" {
		fmt.Fprintf(os.Stderr, "Error: -order-id is required\n")
		os.Exit(1)
	}

	var payload webhookPayload
	payload.Event = *eventType
	payload.Payload.Payment.Entity.ID = *paymentID
	payload.Payload.Payment.Entity.OrderID = *orderID

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	sig := signature.WebhookSignature(body, *secret)

	fmt.Printf("X-Razorpay-Signature: %s\n", sig)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		return
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Event-Id", *eventID)
	req.Header.Set("X-Razorpay-Signature", sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending webhook: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s %s\n", resp.Status, string(respBody))
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

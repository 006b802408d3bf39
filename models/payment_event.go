package models

import "time"

// PaymentEvent event types published to the originating service.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentCancelled = "payment_cancelled"
)

type PaymentEvent struct {
	Type            string    `json:"type"`
	OrganizationID  string    `json:"organization_id"`
	BranchID        string    `json:"branch_id"`
	OrderID         string    `json:"order_id"`
	SourceInvoiceID string    `json:"source_invoice_id"`
	SourceService   string    `json:"source_service"` // e.g. "OPD", "INVENTORY"
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Timestamp       time.Time `json:"timestamp"` // UTC event time
}

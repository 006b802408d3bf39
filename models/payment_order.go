package models

import (
	"time"
)

// PaymentOrder statuses. PAID, CANCELLED and FAILED are terminal; PAID is never reversed.
const (
	StatusCreated   = "CREATED"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
	StatusFailed    = "FAILED"
)

// PaymentOrder is the internally-owned record of a gateway order, scoped to a
// tenant (organization + branch). A gateway order id resolves to at most one
// row per tenant.
type PaymentOrder struct {
	OrderID          string    `gorm:"type:varchar(64);primaryKey" json:"order_id"`
	OrganizationID   string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_payment_orders_gateway_order,priority:1" json:"organization_id"`
	BranchID         string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_payment_orders_gateway_order,priority:2" json:"branch_id"`
	SourceInvoiceID  string    `gorm:"type:varchar(128);not null" json:"source_invoice_id"`
	SourceService    string    `gorm:"type:varchar(64);not null" json:"source_service"`
	GatewayOrderID   string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_payment_orders_gateway_order,priority:3" json:"gateway_order_id"`
	GatewayPaymentID *string   `gorm:"type:varchar(128)" json:"gateway_payment_id,omitempty"`
	GatewaySignature *string   `gorm:"type:varchar(256)" json:"-"`
	Amount           float64   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string    `gorm:"type:varchar(3);not null" json:"currency"`
	Status           string    `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

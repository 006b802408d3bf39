package models

// CreateOrderRequest asks for a new gateway order on behalf of an originating
// service (the amount is in the major currency unit, e.g. 1500.00 INR).
type CreateOrderRequest struct {
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	SourceInvoiceID string  `json:"source_invoice_id" binding:"required"`
	SourceService   string  `json:"source_service" binding:"required"`
	Currency        string  `json:"currency" binding:"required,len=3"`
}

// VerifyPaymentRequest is the client-reported payment confirmation.
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	GatewaySignature string `json:"razorpay_signature" binding:"required"`
}

type CreateRefundRequest struct {
	PaymentID string  `json:"payment_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reason    string  `json:"reason" binding:"required"`
	Immediate bool    `json:"immediate"`
}

type CaptureRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreateOrderResponse hands the frontend everything it needs to open the
// gateway checkout: the gateway order id and the public key id.
type CreateOrderResponse struct {
	GatewayOrderID string  `json:"razorpay_order_id"`
	GatewayKeyID   string  `json:"razorpay_key_id"`
	Amount         float64 `json:"amount"`
	DisplayName    string  `json:"display_name"`
}

type PaymentOrderStatusResponse struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
}

package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"payment-service/middleware"
	"payment-service/models"
	"payment-service/services"
	"payment-service/signature"
)

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

var testTenant = models.TenantContext{OrganizationID: "org_1", BranchID: "branch_1", UserID: "user_1"}

// memOrderRepo is a minimal in-memory repository honouring the conditional
// write contract, enough to drive the HTTP layer end to end.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.PaymentOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*models.PaymentOrder)}
}

func (m *memOrderRepo) Create(_ context.Context, order *models.PaymentOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.OrderID] = &cp
	return nil
}

func (m *memOrderRepo) FindByID(_ context.Context, tenant models.TenantContext, orderID string) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.OrganizationID != tenant.OrganizationID || o.BranchID != tenant.BranchID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByGatewayOrderID(_ context.Context, tenant models.TenantContext, gatewayOrderID string) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.GatewayOrderID == gatewayOrderID && o.OrganizationID == tenant.OrganizationID && o.BranchID == tenant.BranchID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) LookupByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.GatewayOrderID == gatewayOrderID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) MarkPaid(_ context.Context, orderID string, gatewayPaymentID string, gatewaySignature *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.StatusCreated {
		return false, nil
	}
	o.Status = models.StatusPaid
	o.GatewayPaymentID = &gatewayPaymentID
	o.GatewaySignature = gatewaySignature
	return true, nil
}

func (m *memOrderRepo) MarkCancelled(_ context.Context, tenant models.TenantContext, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.OrganizationID != tenant.OrganizationID || o.BranchID != tenant.BranchID || o.Status != models.StatusCreated {
		return false, nil
	}
	o.Status = models.StatusCancelled
	return true, nil
}

// staticGateway answers every call with canned data.
type staticGateway struct{ orderSeq int }

func (g *staticGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (string, error) {
	g.orderSeq++
	return fmt.Sprintf("order_gw%03d", g.orderSeq), nil
}

func (g *staticGateway) FetchPayment(_ context.Context, paymentID string) (map[string]interface{}, error) {
	return map[string]interface{}{"id": paymentID, "status": "captured"}, nil
}

func (g *staticGateway) CapturePayment(_ context.Context, paymentID string, amountMinor int64, currency string) (map[string]interface{}, error) {
	return map[string]interface{}{"id": paymentID, "status": "captured"}, nil
}

func (g *staticGateway) ListPayments(_ context.Context, from, to time.Time) ([]interface{}, error) {
	return []interface{}{map[string]interface{}{"id": "pay_1"}}, nil
}

func (g *staticGateway) CreateRefund(_ context.Context, paymentID string, amountMinor int64, notes map[string]interface{}, immediate bool) (map[string]interface{}, error) {
	return map[string]interface{}{"id": "rfnd_1"}, nil
}

func (g *staticGateway) FetchRefund(_ context.Context, refundID string) (map[string]interface{}, error) {
	return map[string]interface{}{"id": refundID}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *memOrderRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemOrderRepo()
	logger := zap.NewNop()
	payments := services.NewPaymentService(&staticGateway{}, repo, nil, logger, "rzp_test_key", testKeySecret, "CosmicDoc Clinic")
	webhooks := services.NewWebhookService(payments, testWebhookSecret, logger)

	pc := &PaymentController{Payments: payments, Logger: logger}
	wc := &WebhookController{Webhooks: webhooks, Logger: logger}

	r := gin.New()
	authed := r.Group("/api/internal/payments")
	authed.Use(func(c *gin.Context) {
		c.Set(middleware.TenantKey, testTenant)
	})
	authed.POST("/create-order", pc.CreateOrder)
	authed.POST("/verify-payment", pc.VerifyPayment)
	authed.GET("/status/:orderId", pc.GetOrderStatus)
	authed.POST("/cancel/:orderId", pc.CancelOrder)
	r.POST("/api/webhooks/razorpay", wc.HandleGatewayWebhook)

	return r, repo
}

func doJSON(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestOrder(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/internal/payments/create-order", models.CreateOrderRequest{
		Amount:          1500.00,
		SourceInvoiceID: "inv_12345",
		SourceService:   "OPD",
		Currency:        "INR",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create-order returned %d: %s", w.Code, w.Body.String())
	}
	var resp models.CreateOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid create-order response: %v", err)
	}
	return resp.GatewayOrderID
}

func TestPaymentEndpoints(t *testing.T) {
	t.Run("Given a valid order request When posted Then the checkout details come back", func(t *testing.T) {
		r, repo := newTestRouter(t)

		gwOrderID := createTestOrder(t, r)
		if gwOrderID == "" {
			t.Fatal("expected a gateway order id")
		}
		order, err := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)
		if err != nil {
			t.Fatalf("order not persisted: %v", err)
		}
		if order.Status != models.StatusCreated || order.Amount != 1500.00 {
			t.Errorf("unexpected stored order: %+v", order)
		}
	})

	t.Run("Given a missing amount When posted Then binding rejects it", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doJSON(r, http.MethodPost, "/api/internal/payments/create-order", map[string]interface{}{
			"source_invoice_id": "inv_12345",
			"source_service":    "OPD",
			"currency":          "INR",
		}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("Given a valid then repeated verification When posted Then both succeed and the order is PAID", func(t *testing.T) {
		r, repo := newTestRouter(t)
		gwOrderID := createTestOrder(t, r)

		body := models.VerifyPaymentRequest{
			GatewayOrderID:   gwOrderID,
			GatewayPaymentID: "pay_abc",
			GatewaySignature: signature.PaymentSignature(gwOrderID, "pay_abc", testKeySecret),
		}
		for i := 0; i < 2; i++ {
			w := doJSON(r, http.MethodPost, "/api/internal/payments/verify-payment", body, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("verify attempt %d returned %d: %s", i, w.Code, w.Body.String())
			}
		}

		order, _ := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)
		if order.Status != models.StatusPaid {
			t.Errorf("expected PAID, got %s", order.Status)
		}
	})

	t.Run("Given a tampered signature When posted Then verification fails with 400", func(t *testing.T) {
		r, repo := newTestRouter(t)
		gwOrderID := createTestOrder(t, r)

		w := doJSON(r, http.MethodPost, "/api/internal/payments/verify-payment", models.VerifyPaymentRequest{
			GatewayOrderID:   gwOrderID,
			GatewayPaymentID: "pay_abc",
			GatewaySignature: "deadbeef",
		}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		order, _ := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)
		if order.Status != models.StatusCreated {
			t.Errorf("expected CREATED to be preserved, got %s", order.Status)
		}
	})

	t.Run("Given a paid order When cancelled Then 409 and PAID is preserved", func(t *testing.T) {
		r, repo := newTestRouter(t)
		gwOrderID := createTestOrder(t, r)

		verify := models.VerifyPaymentRequest{
			GatewayOrderID:   gwOrderID,
			GatewayPaymentID: "pay_abc",
			GatewaySignature: signature.PaymentSignature(gwOrderID, "pay_abc", testKeySecret),
		}
		doJSON(r, http.MethodPost, "/api/internal/payments/verify-payment", verify, nil)

		order, _ := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)
		w := doJSON(r, http.MethodPost, "/api/internal/payments/cancel/"+order.OrderID, nil, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("Given an order When its status is queried Then the projection is returned", func(t *testing.T) {
		r, repo := newTestRouter(t)
		gwOrderID := createTestOrder(t, r)
		order, _ := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)

		w := doJSON(r, http.MethodGet, "/api/internal/payments/status/"+order.OrderID, nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var status models.PaymentOrderStatusResponse
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatalf("invalid status response: %v", err)
		}
		if status.Status != models.StatusCreated || status.Amount != 1500.00 {
			t.Errorf("unexpected status projection: %+v", status)
		}
	})

	t.Run("Given an unknown order When queried Then 404", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doJSON(r, http.MethodGet, "/api/internal/payments/status/ord_missing", nil, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestWebhookEndpoint(t *testing.T) {
	t.Run("Given a signed captured event When delivered Then 200 and the order is PAID", func(t *testing.T) {
		r, repo := newTestRouter(t)
		gwOrderID := createTestOrder(t, r)

		payload := fmt.Sprintf(
			`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_hook","order_id":%q}}}}`,
			gwOrderID,
		)
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/razorpay", bytes.NewBufferString(payload))
		req.Header.Set("X-Razorpay-Event-Id", "evt_1")
		req.Header.Set("X-Razorpay-Signature", signature.WebhookSignature([]byte(payload), testWebhookSecret))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		order, _ := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)
		if order.Status != models.StatusPaid {
			t.Errorf("expected PAID, got %s", order.Status)
		}
	})

	t.Run("Given a bad signature When delivered Then receipt is still acknowledged", func(t *testing.T) {
		r, repo := newTestRouter(t)
		gwOrderID := createTestOrder(t, r)

		payload := fmt.Sprintf(
			`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_hook","order_id":%q}}}}`,
			gwOrderID,
		)
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/razorpay", bytes.NewBufferString(payload))
		req.Header.Set("X-Razorpay-Signature", "deadbeef")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 even for a bad signature, got %d", w.Code)
		}
		order, _ := repo.LookupByGatewayOrderID(context.Background(), gwOrderID)
		if order.Status != models.StatusCreated {
			t.Errorf("expected CREATED to be preserved, got %s", order.Status)
		}
	})
}

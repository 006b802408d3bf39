package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"payment-service/models"
)

// mockOrderRepo is an in-memory PaymentOrderRepository that honours the same
// compare-and-set contract as the gorm implementation, so concurrency tests
// exercise the real transition discipline.
type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.PaymentOrder

	createErr   error
	findErr     error
	markPaidWon int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*models.PaymentOrder)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.PaymentOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *order
	m.orders[order.OrderID] = &cp
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, tenant models.TenantContext, orderID string) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	order, ok := m.orders[orderID]
	if !ok || order.OrganizationID != tenant.OrganizationID || order.BranchID != tenant.BranchID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) FindByGatewayOrderID(_ context.Context, tenant models.TenantContext, gatewayOrderID string) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, order := range m.orders {
		if order.GatewayOrderID == gatewayOrderID &&
			order.OrganizationID == tenant.OrganizationID && order.BranchID == tenant.BranchID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) LookupByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.GatewayOrderID == gatewayOrderID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, orderID string, gatewayPaymentID string, gatewaySignature *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.Status != models.StatusCreated {
		return false, nil
	}
	order.Status = models.StatusPaid
	order.GatewayPaymentID = &gatewayPaymentID
	order.GatewaySignature = gatewaySignature
	order.UpdatedAt = time.Now()
	m.markPaidWon++
	return true, nil
}

func (m *mockOrderRepo) MarkCancelled(_ context.Context, tenant models.TenantContext, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.OrganizationID != tenant.OrganizationID || order.BranchID != tenant.BranchID {
		return false, nil
	}
	if order.Status != models.StatusCreated {
		return false, nil
	}
	order.Status = models.StatusCancelled
	order.UpdatedAt = time.Now()
	return true, nil
}

// get returns a copy of a stored order for assertions.
func (m *mockOrderRepo) get(orderID string) (models.PaymentOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return models.PaymentOrder{}, false
	}
	return *order, true
}

func (m *mockOrderRepo) put(order models.PaymentOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.OrderID] = &order
}

type mockGateway struct {
	mu sync.Mutex

	orderID   string
	createErr error

	createCalls     int
	lastAmountMinor int64
	lastCurrency    string
	lastReceipt     string

	payment    map[string]interface{}
	payments   []interface{}
	refund     map[string]interface{}
	gatewayErr error

	lastRefundPaymentID string
	lastRefundAmount    int64
	lastRefundNotes     map[string]interface{}
	lastRefundImmediate bool
}

func (g *mockGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.lastAmountMinor = amountMinor
	g.lastCurrency = currency
	g.lastReceipt = receipt
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.orderID, nil
}

func (g *mockGateway) FetchPayment(_ context.Context, paymentID string) (map[string]interface{}, error) {
	if g.gatewayErr != nil {
		return nil, g.gatewayErr
	}
	return g.payment, nil
}

func (g *mockGateway) CapturePayment(_ context.Context, paymentID string, amountMinor int64, currency string) (map[string]interface{}, error) {
	if g.gatewayErr != nil {
		return nil, g.gatewayErr
	}
	return g.payment, nil
}

func (g *mockGateway) ListPayments(_ context.Context, from, to time.Time) ([]interface{}, error) {
	if g.gatewayErr != nil {
		return nil, g.gatewayErr
	}
	return g.payments, nil
}

func (g *mockGateway) CreateRefund(_ context.Context, paymentID string, amountMinor int64, notes map[string]interface{}, immediate bool) (map[string]interface{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastRefundPaymentID = paymentID
	g.lastRefundAmount = amountMinor
	g.lastRefundNotes = notes
	g.lastRefundImmediate = immediate
	if g.gatewayErr != nil {
		return nil, g.gatewayErr
	}
	return g.refund, nil
}

func (g *mockGateway) FetchRefund(_ context.Context, refundID string) (map[string]interface{}, error) {
	if g.gatewayErr != nil {
		return nil, g.gatewayErr
	}
	return g.refund, nil
}

type mockNotifier struct {
	mu     sync.Mutex
	events []models.PaymentEvent
	err    error
}

func (n *mockNotifier) Publish(_ context.Context, event models.PaymentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func (n *mockNotifier) published() []models.PaymentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.PaymentEvent, len(n.events))
	copy(out, n.events)
	return out
}

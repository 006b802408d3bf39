package repository

import (
	"context"
	"time"

	"payment-service/models"

	"gorm.io/gorm"
)

// PaymentOrderRepository is the tenant-scoped store for PaymentOrder records.
//
// State transitions go through MarkPaid / MarkCancelled, which are conditional
// writes on the current status. Multiple service instances may race on the
// same order, so the compare-and-set lives in the database, never in process.
type PaymentOrderRepository interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	FindByID(ctx context.Context, tenant models.TenantContext, orderID string) (*models.PaymentOrder, error)
	FindByGatewayOrderID(ctx context.Context, tenant models.TenantContext, gatewayOrderID string) (*models.PaymentOrder, error)
	// LookupByGatewayOrderID resolves an order without a tenant scope. Webhook
	// deliveries carry no tenant claims; the webhook signature is the trust
	// boundary for this path.
	LookupByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error)
	// MarkPaid performs the CREATED->PAID transition. It reports whether this
	// call won the transition; false with a nil error means another writer got
	// there first and the caller must re-read to classify the outcome.
	MarkPaid(ctx context.Context, orderID string, gatewayPaymentID string, gatewaySignature *string) (bool, error)
	// MarkCancelled performs the CREATED->CANCELLED transition with the same
	// compare-and-set contract as MarkPaid.
	MarkCancelled(ctx context.Context, tenant models.TenantContext, orderID string) (bool, error)
}

type gormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepo(db *gorm.DB) PaymentOrderRepository {
	return &gormOrderRepo{db: db}
}

func (r *gormOrderRepo) Create(ctx context.Context, order *models.PaymentOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepo) FindByID(ctx context.Context, tenant models.TenantContext, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND branch_id = ? AND order_id = ?", tenant.OrganizationID, tenant.BranchID, orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) FindByGatewayOrderID(ctx context.Context, tenant models.TenantContext, gatewayOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND branch_id = ? AND gateway_order_id = ?", tenant.OrganizationID, tenant.BranchID, gatewayOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) LookupByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) MarkPaid(ctx context.Context, orderID string, gatewayPaymentID string, gatewaySignature *string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentOrder{}).
		Where("order_id = ? AND status = ?", orderID, models.StatusCreated).
		Updates(map[string]interface{}{
			"status":             models.StatusPaid,
			"gateway_payment_id": gatewayPaymentID,
			"gateway_signature":  gatewaySignature,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormOrderRepo) MarkCancelled(ctx context.Context, tenant models.TenantContext, orderID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentOrder{}).
		Where("organization_id = ? AND branch_id = ? AND order_id = ? AND status = ?",
			tenant.OrganizationID, tenant.BranchID, orderID, models.StatusCreated).
		Updates(map[string]interface{}{
			"status":     models.StatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

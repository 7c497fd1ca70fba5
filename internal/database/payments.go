package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"pet3d-backend/internal/models"
)

func (c *DatabaseClient) CreatePayment(ctx context.Context, p *models.Payment) error {
	return translateError(c.db.WithContext(ctx).Create(p).Error)
}

func (c *DatabaseClient) GetPaymentByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error) {
	var p models.Payment
	err := c.db.WithContext(ctx).
		Where("provider_order_id = ?", providerOrderID).
		First(&p).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// GetLatestPaymentForOrder returns the most recently created payment of the order.
func (c *DatabaseClient) GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := c.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

func (c *DatabaseClient) ListPaymentsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := c.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// VoidPendingPayments marks every pending payment of the order as failed.
func (c *DatabaseClient) VoidPendingPayments(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := c.db.WithContext(ctx).Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     models.PaymentStatusFailed,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, translateError(res.Error)
}

type PaymentCapture struct {
	CaptureID   string
	PayerEmail  string
	PayerID     string
	RawResponse datatypes.JSON
}

// CompletePayment moves a pending payment to completed. It reports false when
// the payment was no longer pending.
func (c *DatabaseClient) CompletePayment(ctx context.Context, id uuid.UUID, capture PaymentCapture) (bool, error) {
	updates := map[string]interface{}{
		"status":              models.PaymentStatusCompleted,
		"provider_capture_id": sql.NullString{String: capture.CaptureID, Valid: capture.CaptureID != ""},
		"updated_at":          time.Now().UTC(),
	}
	if capture.PayerEmail != "" {
		updates["payer_email"] = capture.PayerEmail
	}
	if capture.PayerID != "" {
		updates["payer_id"] = capture.PayerID
	}
	if len(capture.RawResponse) > 0 {
		updates["raw_response"] = capture.RawResponse
	}
	res := c.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

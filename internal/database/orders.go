package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pet3d-backend/internal/models"
)

// CreateOrder inserts a new order. A clash on order_number is reported as
// ErrDuplicateKey so the caller can retry with a fresh number.
func (c *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order) error {
	return translateError(c.db.WithContext(ctx).Create(order).Error)
}

func (c *DatabaseClient) GetOrder(ctx context.Context, ownerID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&order).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// GetOrderByID loads an order without an owner filter. Callers must check
// ownership themselves.
func (c *DatabaseClient) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (c *DatabaseClient) GetOrderByNumber(ctx context.Context, ownerID uuid.UUID, number string) (*models.Order, error) {
	var order models.Order
	err := c.db.WithContext(ctx).
		Where("order_number = ? AND user_id = ?", number, ownerID).
		First(&order).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (c *DatabaseClient) ListOrders(ctx context.Context, ownerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := c.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translateError(err)
	}
	return orders, nil
}

// ListAllOrders returns every order, newest first, optionally filtered by status.
func (c *DatabaseClient) ListAllOrders(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error) {
	q := c.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, translateError(err)
	}
	return orders, nil
}

// TransitionOrder moves the order from one status to another. It reports false
// when the order was not in the expected status.
func (c *DatabaseClient) TransitionOrder(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	res := c.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/lock"
	"pet3d-backend/internal/metrics"
	"pet3d-backend/internal/models"
)

const (
	orderNumberPrefix   = "PET3D"
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberSuffix   = 6
	orderNumberAttempts = 5

	// MaxOrderQuantity bounds a single order line.
	MaxOrderQuantity = 100
)

// maxOrderTotal is the largest value a numeric(10,2) price column holds.
var maxOrderTotal = decimal.RequireFromString("99999999.99")

type OrderService struct {
	db       *database.DatabaseClient
	locker   lock.Locker
	notifier Notifier
	now      func() time.Time
	numberFn func(time.Time) (string, error)
}

func NewOrderService(db *database.DatabaseClient, locker lock.Locker, notifier Notifier) *OrderService {
	return &OrderService{
		db:       db,
		locker:   locker,
		notifier: notifier,
		now:      time.Now,
		numberFn: NewOrderNumber,
	}
}

type CreateOrderInput struct {
	ModelID     uuid.UUID
	PrintSizeID uuid.UUID
	Quantity    int
	Shipping    models.ShippingInfo
}

// NewOrderNumber returns a human-readable number: PET3D-<unix ms>-<6 chars>.
func NewOrderNumber(now time.Time) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := 0; i < orderNumberSuffix; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(orderNumberAlphabet[n.Int64()])
	}
	return fmt.Sprintf("%s-%d-%s", orderNumberPrefix, now.UnixMilli(), b.String()), nil
}

// Create places a pending order for a completed model. Prices are copied from
// the print size at this moment.
func (s *OrderService) Create(ctx context.Context, ownerID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	if in.Quantity < 1 || in.Quantity > MaxOrderQuantity {
		return nil, invalidInput("quantity must be between 1 and %d", MaxOrderQuantity)
	}
	if err := validateShipping(in.Shipping); err != nil {
		return nil, err
	}

	model, err := s.db.GetModel(ctx, ownerID, in.ModelID)
	if err != nil {
		return nil, dbError("model", err)
	}
	if model.Status != models.ModelStatusCompleted {
		return nil, invalidState("model is %s, not ready for printing", model.Status)
	}

	size, err := s.db.GetActivePrintSize(ctx, in.PrintSizeID)
	if err != nil {
		return nil, dbError("print size", err)
	}

	unit := size.PriceUSD.Round(2)
	total := unit.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if total.GreaterThan(maxOrderTotal) {
		return nil, invalidInput("order total %s exceeds the maximum of %s", total.StringFixed(2), maxOrderTotal.StringFixed(2))
	}
	order := &models.Order{
		UserID:             ownerID,
		Model3DID:          model.ID,
		PrintSizeID:        size.ID,
		Quantity:           in.Quantity,
		UnitPriceUSD:       unit,
		TotalPriceUSD:      total,
		Status:             models.OrderStatusPending,
		ShippingName:       strings.TrimSpace(in.Shipping.Name),
		ShippingAddress:    strings.TrimSpace(in.Shipping.Address),
		ShippingCity:       strings.TrimSpace(in.Shipping.City),
		ShippingState:      strings.TrimSpace(in.Shipping.State),
		ShippingCountry:    strings.TrimSpace(in.Shipping.Country),
		ShippingPostalCode: strings.TrimSpace(in.Shipping.PostalCode),
		ShippingPhone:      optionalString(in.Shipping.Phone),
		Notes:              optionalString(in.Shipping.Notes),
	}

	if err := s.insertWithUniqueNumber(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	log.Ctx(ctx).Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("total", order.TotalPriceUSD.StringFixed(2)).
		Msg("order created")

	s.notifier.Dispatch(
		"New Order: "+order.OrderNumber,
		fmt.Sprintf("A new 3D print order has been placed!\n\nOrder: %s\nCustomer: %s\nSize: %s\nQuantity: %d\nTotal: $%s\nShipping to: %s, %s",
			order.OrderNumber, order.ShippingName, size.Name, order.Quantity,
			order.TotalPriceUSD.StringFixed(2), order.ShippingCity, order.ShippingCountry),
	)
	return order, nil
}

// insertWithUniqueNumber retries with a fresh number when the unique
// constraint on order_number rejects the insert.
func (s *OrderService) insertWithUniqueNumber(ctx context.Context, order *models.Order) error {
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		now := s.now().UTC()
		number, err := s.numberFn(now)
		if err != nil {
			return internalError("generate order number", err)
		}
		order.ID = uuid.Nil
		order.OrderNumber = number
		order.CreatedAt, order.UpdatedAt = now, now

		err = s.db.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicateKey) {
			return internalError("create order", err)
		}
		log.Ctx(ctx).Warn().Str("order_number", number).Int("attempt", attempt).Msg("order number collision, retrying")
	}
	return internalError("create order", fmt.Errorf("no unique order number after %d attempts", orderNumberAttempts))
}

func (s *OrderService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Order, error) {
	order, err := s.db.GetOrder(ctx, ownerID, id)
	if err != nil {
		return nil, dbError("order", err)
	}
	return order, nil
}

func (s *OrderService) GetByNumber(ctx context.Context, ownerID uuid.UUID, number string) (*models.Order, error) {
	order, err := s.db.GetOrderByNumber(ctx, ownerID, strings.TrimSpace(number))
	if err != nil {
		return nil, dbError("order", err)
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Order, error) {
	orders, err := s.db.ListOrders(ctx, ownerID)
	if err != nil {
		return nil, internalError("list orders", err)
	}
	return orders, nil
}

// Cancel moves a pending order to cancelled and voids its pending payments.
func (s *OrderService) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*models.Order, error) {
	release, err := s.locker.Lock(ctx, orderLockKey(id))
	if err != nil {
		return nil, internalError("lock order", err)
	}
	defer release()

	order, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, invalidState("order is %s and can no longer be cancelled", order.Status)
	}

	err = s.db.Transaction(ctx, func(tx *database.DatabaseClient) error {
		ok, err := tx.TransitionOrder(ctx, id, models.OrderStatusPending, models.OrderStatusCancelled)
		if err != nil {
			return internalError("cancel order", err)
		}
		if !ok {
			return invalidState("order is no longer pending")
		}
		if _, err := tx.VoidPendingPayments(ctx, id); err != nil {
			return internalError("void payments", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("order_id", id.String()).Msg("order cancelled")
	return s.Get(ctx, ownerID, id)
}

// ListAll returns orders of every user, newest first.
func (s *OrderService) ListAll(ctx context.Context, status string, limit int) ([]models.Order, error) {
	st := models.OrderStatus(status)
	if st != "" && !st.Valid() {
		return nil, invalidInput("unknown order status %q", status)
	}
	orders, err := s.db.ListAllOrders(ctx, st, limit)
	if err != nil {
		return nil, internalError("list orders", err)
	}
	return orders, nil
}

// AdvanceStatus applies a fulfillment step: paid → processing → shipped → delivered.
func (s *OrderService) AdvanceStatus(ctx context.Context, id uuid.UUID, next string) (*models.Order, error) {
	to := models.OrderStatus(next)
	switch to {
	case models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered:
	default:
		return nil, invalidInput("status must be processing, shipped or delivered")
	}

	release, err := s.locker.Lock(ctx, orderLockKey(id))
	if err != nil {
		return nil, internalError("lock order", err)
	}
	defer release()

	order, err := s.db.GetOrderByID(ctx, id)
	if err != nil {
		return nil, dbError("order", err)
	}
	if !order.Status.CanTransition(to) {
		return nil, invalidState("cannot move order from %s to %s", order.Status, to)
	}

	ok, err := s.db.TransitionOrder(ctx, id, order.Status, to)
	if err != nil {
		return nil, internalError("update order", err)
	}
	if !ok {
		return nil, invalidState("order changed concurrently")
	}

	log.Ctx(ctx).Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(to)).
		Msg("order status advanced")
	updated, err := s.db.GetOrderByID(ctx, id)
	if err != nil {
		return nil, dbError("order", err)
	}
	return updated, nil
}

func orderLockKey(id uuid.UUID) string {
	return "order:" + id.String()
}

func validateShipping(s models.ShippingInfo) error {
	required := []struct {
		field, value string
	}{
		{"name", s.Name},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"country", s.Country},
		{"postal_code", s.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalidInput("shipping %s is required", r.field)
		}
	}
	return nil
}

func optionalString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/lock"
	"pet3d-backend/internal/metrics"
	"pet3d-backend/internal/models"
	"pet3d-backend/internal/paypal"
)

type PaymentService struct {
	db       *database.DatabaseClient
	provider PaymentProvider
	locker   lock.Locker
	notifier Notifier
}

func NewPaymentService(db *database.DatabaseClient, provider PaymentProvider, locker lock.Locker, notifier Notifier) *PaymentService {
	return &PaymentService{
		db:       db,
		provider: provider,
		locker:   locker,
		notifier: notifier,
	}
}

// InitiatedPayment is a pending payment plus the URL the buyer must visit.
type InitiatedPayment struct {
	Payment     *models.Payment
	ApprovalURL string
}

// CaptureOutcome reports the result of a capture attempt. Success is false when
// the provider did not confirm the capture; Status then carries its status.
type CaptureOutcome struct {
	Success bool
	Status  string
	Payment *models.Payment
	Order   *models.Order
}

// Initiate opens a provider checkout for a pending order. Any earlier pending
// payment of the order is voided so only the newest intent can be captured.
func (s *PaymentService) Initiate(ctx context.Context, ownerID, orderID uuid.UUID, returnURL, cancelURL string) (*InitiatedPayment, error) {
	if strings.TrimSpace(returnURL) == "" || strings.TrimSpace(cancelURL) == "" {
		return nil, invalidInput("return_url and cancel_url are required")
	}

	release, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		return nil, internalError("lock order", err)
	}
	defer release()

	order, err := s.db.GetOrder(ctx, ownerID, orderID)
	if err != nil {
		return nil, dbError("order", err)
	}
	if order.Status != models.OrderStatusPending {
		return nil, invalidState("order is %s, only pending orders can be paid", order.Status)
	}

	created, err := s.provider.CreateOrder(ctx, paypal.CreateOrderInput{
		Amount:      order.TotalPriceUSD,
		ReferenceID: order.OrderNumber,
		Description: "Pet3D Studio - 3D Print Order " + order.OrderNumber,
		ReturnURL:   returnURL,
		CancelURL:   cancelURL,
	})
	if err != nil {
		return nil, providerError("paypal", "create_order", err)
	}
	if created.ApprovalURL == "" {
		return nil, providerError("paypal", "create_order", errors.New("response carried no approval link"))
	}

	payment := &models.Payment{
		OrderID:         order.ID,
		ProviderOrderID: created.ID,
		AmountUSD:       order.TotalPriceUSD,
		Currency:        s.provider.Currency(),
		Status:          models.PaymentStatusPending,
		RawResponse:     datatypes.JSON(created.Raw),
	}
	err = s.db.Transaction(ctx, func(tx *database.DatabaseClient) error {
		voided, err := tx.VoidPendingPayments(ctx, order.ID)
		if err != nil {
			return err
		}
		if voided > 0 {
			log.Ctx(ctx).Info().Str("order_id", order.ID.String()).Int64("voided", voided).Msg("superseded pending payments")
		}
		return tx.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, internalError("create payment", err)
	}

	log.Ctx(ctx).Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", payment.ID.String()).
		Str("paypal_order_id", created.ID).
		Msg("payment initiated")
	return &InitiatedPayment{Payment: payment, ApprovalURL: created.ApprovalURL}, nil
}

// Capture finalizes the provider order and, on success, marks the payment
// completed and the order paid in one transaction. Repeating a capture that
// already succeeded returns the stored result without calling the provider.
func (s *PaymentService) Capture(ctx context.Context, ownerID uuid.UUID, providerOrderID string) (*CaptureOutcome, error) {
	providerOrderID = strings.TrimSpace(providerOrderID)
	if providerOrderID == "" {
		return nil, invalidInput("paypal_order_id is required")
	}

	payment, err := s.db.GetPaymentByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return nil, dbError("payment", err)
	}
	if _, err := s.db.GetOrder(ctx, ownerID, payment.OrderID); err != nil {
		return nil, dbError("order", err)
	}

	release, err := s.locker.Lock(ctx, orderLockKey(payment.OrderID))
	if err != nil {
		return nil, internalError("lock order", err)
	}
	defer release()

	payment, order, err := s.load(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}

	switch payment.Status {
	case models.PaymentStatusCompleted:
		return &CaptureOutcome{Success: true, Status: paypal.StatusCompleted, Payment: payment, Order: order}, nil
	case models.PaymentStatusPending:
	default:
		return nil, invalidState("payment is %s", payment.Status)
	}
	if order.Status != models.OrderStatusPending {
		return nil, invalidState("order is %s, only pending orders can be paid", order.Status)
	}

	result, err := s.provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		result, err = s.reconcileCapture(ctx, providerOrderID, err)
		if err != nil {
			return nil, err
		}
	}
	if result.Status != paypal.StatusCompleted {
		log.Ctx(ctx).Warn().
			Str("paypal_order_id", providerOrderID).
			Str("status", result.Status).
			Msg("capture not completed")
		return &CaptureOutcome{Success: false, Status: result.Status, Payment: payment, Order: order}, nil
	}

	var transitioned bool
	err = s.db.Transaction(ctx, func(tx *database.DatabaseClient) error {
		ok, err := tx.CompletePayment(ctx, payment.ID, database.PaymentCapture{
			CaptureID:   result.CaptureID,
			PayerEmail:  result.PayerEmail,
			PayerID:     result.PayerID,
			RawResponse: datatypes.JSON(result.Raw),
		})
		if err != nil {
			return internalError("complete payment", err)
		}
		if !ok {
			return nil
		}
		ok, err = tx.TransitionOrder(ctx, order.ID, models.OrderStatusPending, models.OrderStatusPaid)
		if err != nil {
			return internalError("mark order paid", err)
		}
		if !ok {
			return invalidState("order is no longer pending")
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment, order, err = s.load(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return &CaptureOutcome{Success: payment.Status == models.PaymentStatusCompleted, Status: result.Status, Payment: payment, Order: order}, nil
	}

	metrics.PaymentsCaptured.Inc()
	log.Ctx(ctx).Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", payment.ID.String()).
		Str("capture_id", result.CaptureID).
		Msg("payment captured")

	s.notifier.Dispatch(
		"Payment Received: "+order.OrderNumber,
		fmt.Sprintf("Payment of $%s received for order %s.\n\nPayPal Transaction ID: %s\nPayer Email: %s",
			payment.AmountUSD.StringFixed(2), order.OrderNumber, orNA(result.CaptureID), orNA(result.PayerEmail)),
	)
	return &CaptureOutcome{Success: true, Status: result.Status, Payment: payment, Order: order}, nil
}

// reconcileCapture looks up the provider order after a failed capture call. An
// order the provider already completed (a lost response, ORDER_ALREADY_CAPTURED)
// is recorded as captured; anything else reports the original failure.
func (s *PaymentService) reconcileCapture(ctx context.Context, providerOrderID string, captureErr error) (*paypal.CaptureResult, error) {
	current, err := s.provider.GetOrder(ctx, providerOrderID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("paypal_order_id", providerOrderID).Msg("order lookup after failed capture")
		return nil, providerError("paypal", "capture", captureErr)
	}
	if current.Status != paypal.StatusCompleted {
		return nil, providerError("paypal", "capture", captureErr)
	}
	log.Ctx(ctx).Warn().
		Err(captureErr).
		Str("paypal_order_id", providerOrderID).
		Msg("capture call failed but order is completed at provider")
	return current, nil
}

// GetForOrder returns the newest payment of one of the owner's orders.
func (s *PaymentService) GetForOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*models.Payment, error) {
	if _, err := s.db.GetOrder(ctx, ownerID, orderID); err != nil {
		return nil, dbError("order", err)
	}
	p, err := s.db.GetLatestPaymentForOrder(ctx, orderID)
	if err != nil {
		return nil, dbError("payment", err)
	}
	return p, nil
}

func (s *PaymentService) load(ctx context.Context, providerOrderID string) (*models.Payment, *models.Order, error) {
	payment, err := s.db.GetPaymentByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return nil, nil, dbError("payment", err)
	}
	order, err := s.db.GetOrderByID(ctx, payment.OrderID)
	if err != nil {
		return nil, nil, dbError("order", err)
	}
	return payment, order, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

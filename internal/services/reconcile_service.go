package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"planify/internal/gateway"
	"planify/internal/status"
	"planify/models"
	"planify/monitoring"
)

func settleLockKey(orderID string) string {
	return fmt.Sprintf("settle:%s", orderID)
}

type ReconcileConfig struct {
	SettleLockTimeout time.Duration
}

// ReconcileService applies gateway payment outcomes to bookings. Both entry
// points, the client callback and the provider webhook, converge on the same
// settle path so a payment is applied exactly once no matter how many times
// or through which door it arrives.
type ReconcileService struct {
	ledger   Ledger
	gateways *gateway.Registry
	redis    *redis.Client
	notifier *NotificationService
	cfg      ReconcileConfig
}

func NewReconcileService(ledger Ledger, gateways *gateway.Registry, redisClient *redis.Client, notifier *NotificationService, cfg ReconcileConfig) *ReconcileService {
	return &ReconcileService{
		ledger:   ledger,
		gateways: gateways,
		redis:    redisClient,
		notifier: notifier,
		cfg:      cfg,
	}
}

// CallbackRequest is what the client posts after the checkout flow returns
// control to it. Client-supplied data is never trusted for the outcome; it
// only tells us which payment to verify server-side.
type CallbackRequest struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

// HandleCallback verifies a client-reported payment against the provider
// and settles the advance if the provider confirms it.
func (s *ReconcileService) HandleCallback(ctx context.Context, req *CallbackRequest) (*models.Booking, error) {
	gw, err := s.gateways.Primary()
	if err != nil {
		return nil, err
	}
	provider := string(gw.Provider())

	if req.PaymentID == "" || req.OrderID == "" {
		// A callback that cannot be verified still fails the attempt it
		// points at, when it points at one at all.
		if req.OrderID != "" {
			if err := s.markAttemptFailed(ctx, provider, req.OrderID, nil); err != nil {
				slog.Error("failed to mark attempt after malformed callback", "order_id", req.OrderID, "error", err)
			}
		}
		monitoring.RecordSettlement("callback", "error")
		return nil, fmt.Errorf("%w: missing payment or order id", status.ErrMalformedCallback)
	}

	start := time.Now()
	payment, err := gw.FetchPayment(ctx, req.PaymentID)
	monitoring.ObserveGatewayRequest(provider, "fetch_payment", start)
	if err != nil {
		// Verification failed, not the payment. Nothing is mutated; the
		// client retries or the webhook settles it later.
		monitoring.RecordSettlement("callback", "error")
		return nil, err
	}

	if payment.OrderID != req.OrderID {
		monitoring.RecordSettlement("callback", "error")
		return nil, fmt.Errorf("%w: payment %s belongs to order %s, callback claims %s",
			status.ErrOrderMismatch, payment.ID, payment.OrderID, req.OrderID)
	}

	if !payment.Settled() {
		if err := s.markAttemptFailed(ctx, provider, payment.OrderID, payment.Raw); err != nil {
			return nil, err
		}
		monitoring.RecordSettlement("callback", "failed")
		return nil, fmt.Errorf("%w: provider status %q", status.ErrFailedPayment, payment.Status)
	}

	return s.settle(ctx, "callback", provider, payment)
}

// webhookEvent is the provider's webhook envelope, reduced to the fields the
// settlement path needs.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity json.RawMessage `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type webhookPaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// HandleWebhook processes a provider webhook delivery. A bad signature is
// the only error surfaced to the caller; once the body is authenticated the
// delivery is acked regardless of processing outcome, since the provider
// retries on anything else and every settlement here is idempotent anyway.
func (s *ReconcileService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	gw, err := s.gateways.Primary()
	if err != nil {
		return err
	}
	provider := string(gw.Provider())

	if !gw.VerifyWebhookSignature(body, signature) {
		monitoring.RecordWebhookRejection()
		return fmt.Errorf("%w: webhook signature mismatch", status.ErrInvalidInput)
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Error("unparseable webhook body", "error", err)
		monitoring.RecordSettlement("webhook", "error")
		return nil
	}

	if !strings.HasPrefix(event.Event, "payment.") {
		slog.Info("ignoring webhook event", "event", event.Event)
		return nil
	}

	var entity webhookPaymentEntity
	if err := json.Unmarshal(event.Payload.Payment.Entity, &entity); err != nil || entity.OrderID == "" {
		slog.Error("webhook payment entity missing or malformed", "event", event.Event, "error", err)
		monitoring.RecordSettlement("webhook", "error")
		return nil
	}

	payment := &gateway.Payment{
		ID:       entity.ID,
		OrderID:  entity.OrderID,
		Status:   entity.Status,
		Amount:   decimal.NewFromInt(entity.Amount).Shift(-2),
		Currency: entity.Currency,
		Raw:      event.Payload.Payment.Entity,
	}

	if !payment.Settled() {
		if err := s.markAttemptFailed(ctx, provider, payment.OrderID, payment.Raw); err != nil {
			slog.Error("webhook failure-marking failed", "order_id", payment.OrderID, "error", err)
			monitoring.RecordSettlement("webhook", "error")
			return nil
		}
		monitoring.RecordSettlement("webhook", "failed")
		return nil
	}

	if _, err := s.settle(ctx, "webhook", provider, payment); err != nil {
		slog.Error("webhook settlement failed", "order_id", payment.OrderID, "payment_id", payment.ID, "error", err)
		monitoring.RecordSettlement("webhook", "error")
	}
	return nil
}

// settle applies one verified, settled provider payment to its booking.
// The per-order lock serializes concurrent deliveries; inside the
// transaction a succeeded attempt for the same order makes the whole call a
// no-op, so replays never double-apply.
func (s *ReconcileService) settle(ctx context.Context, path, provider string, payment *gateway.Payment) (*models.Booking, error) {
	unlock, err := s.acquireSettleLock(ctx, payment.OrderID)
	if err != nil {
		monitoring.RecordSettlement(path, "error")
		return nil, err
	}
	defer unlock()

	var (
		booking   *models.Booking
		replayed  bool
		confirmed bool
	)

	err = s.ledger.RunInTransaction(ctx, func(tx Ledger) error {
		attempts, err := tx.AdvancePaymentsByGatewayID(ctx, provider, payment.OrderID)
		if err != nil && !errors.Is(err, status.ErrNotFound) {
			return err
		}

		for _, attempt := range attempts {
			if attempt.Status == models.AdvanceSucceeded {
				replayed = true
				booking, err = tx.BookingByID(ctx, attempt.BookingID)
				return err
			}
		}

		var attempt *models.AdvancePayment
		for _, a := range attempts {
			if a.Status == models.AdvancePending {
				attempt = a
				break
			}
		}

		if attempt == nil {
			// No local attempt survived (crash between order creation and
			// the attempt write, or an expired row). Recover the booking
			// through the persisted order link and record the settlement
			// from scratch.
			bookingID, err := s.redis.Get(ctx, orderMapKey(payment.OrderID)).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return fmt.Errorf("%w: no payment attempt or order link for order %s", status.ErrNotFound, payment.OrderID)
				}
				return err
			}

			b, err := tx.BookingByID(ctx, bookingID)
			if err != nil {
				return err
			}

			attempt = &models.AdvancePayment{
				BookingID: b.ID,
				PayerID:   b.CustomerID,
				Amount:    payment.Amount,
				Currency:  payment.Currency,
				Status:    models.AdvancePending,
				Gateway:   provider,
				GatewayID: payment.OrderID,
			}
		}

		attempt.Status = models.AdvanceSucceeded
		attempt.GatewayResponse = payment.Raw
		if err := tx.SaveAdvancePayment(ctx, attempt); err != nil {
			return err
		}

		b, err := tx.BookingByID(ctx, attempt.BookingID)
		if err != nil {
			return err
		}

		b.AdvancePaid = b.AdvancePaid.Add(payment.Amount)
		if b.AdvanceCovered() && b.Status == models.BookingPending {
			if err := ValidateTransition(b.Status, models.BookingConfirmed); err != nil {
				return err
			}
			b.Status = models.BookingConfirmed
			confirmed = true
		}

		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		monitoring.RecordSettlement(path, "error")
		return nil, err
	}

	if replayed {
		monitoring.RecordSettlement(path, "replayed")
		return booking, nil
	}

	monitoring.RecordSettlement(path, "applied")
	s.notifier.Notify(ctx, booking.CustomerID, "advance_received",
		fmt.Sprintf("Advance payment of %s %s received", payment.Amount.StringFixed(2), payment.Currency))
	if confirmed {
		monitoring.RecordTransition(models.BookingPending, models.BookingConfirmed)
		s.notifier.Notify(ctx, booking.VendorID, "booking_confirmed",
			fmt.Sprintf("Booking %s confirmed: advance fully paid", booking.ID))
	}
	return booking, nil
}

// markAttemptFailed marks the newest non-terminal attempt for the order as
// failed, keeping the provider payload for audit. Succeeded rows are never
// downgraded and the booking itself is never touched here.
func (s *ReconcileService) markAttemptFailed(ctx context.Context, provider, orderID string, raw json.RawMessage) error {
	return s.ledger.RunInTransaction(ctx, func(tx Ledger) error {
		attempts, err := tx.AdvancePaymentsByGatewayID(ctx, provider, orderID)
		if err != nil {
			if errors.Is(err, status.ErrNotFound) {
				return nil
			}
			return err
		}

		for _, attempt := range attempts {
			if attempt.Terminal() {
				continue
			}
			attempt.Status = models.AdvanceFailed
			attempt.GatewayResponse = raw
			return tx.SaveAdvancePayment(ctx, attempt)
		}
		return nil
	})
}

// acquireSettleLock takes the per-order settlement lock, retrying until the
// configured timeout. The lock is only ever held around local transaction
// work, never across gateway calls.
func (s *ReconcileService) acquireSettleLock(ctx context.Context, orderID string) (func(), error) {
	key := settleLockKey(orderID)
	deadline := time.Now().Add(s.cfg.SettleLockTimeout)

	for {
		ok, err := s.redis.SetNX(ctx, key, "1", s.cfg.SettleLockTimeout).Result()
		if err != nil {
			return nil, fmt.Errorf("settle lock: %w", err)
		}
		if ok {
			return func() {
				if err := s.redis.Del(context.Background(), key).Err(); err != nil {
					slog.Error("failed to release settle lock", "key", key, "error", err)
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("settle lock: order %s is locked", orderID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

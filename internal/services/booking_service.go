package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"planify/internal/advance"
	"planify/internal/auth"
	"planify/internal/gateway"
	"planify/internal/status"
	"planify/models"
	"planify/utils"
)

// orderMapKey is the persisted link between a remote order and its booking,
// written at order-creation time so reconciliation never has to parse
// booking ids out of receipt strings.
func orderMapKey(orderID string) string {
	return fmt.Sprintf("gworder:%s", orderID)
}

type BookingConfig struct {
	DefaultAdvancePercentage decimal.Decimal
	CommissionRate           decimal.Decimal
	Currency                 string
	OrderMapTTL              time.Duration
}

type BookingService struct {
	ledger   Ledger
	gateways *gateway.Registry
	redis    *redis.Client
	notifier *NotificationService
	cfg      BookingConfig
}

func NewBookingService(ledger Ledger, gateways *gateway.Registry, redisClient *redis.Client, notifier *NotificationService, cfg BookingConfig) *BookingService {
	return &BookingService{
		ledger:   ledger,
		gateways: gateways,
		redis:    redisClient,
		notifier: notifier,
		cfg:      cfg,
	}
}

type CreateBookingRequest struct {
	EventID           string          `json:"event_id"`
	StoreID           string          `json:"store_id"`
	ServiceID         string          `json:"service_id"`
	AdvancePercentage decimal.Decimal `json:"advance_percentage"`
	BookingDate       *time.Time      `json:"booking_date"`
}

// CreateBooking creates a pending booking for the customer's event against
// a vendor store, deriving the required advance at creation time.
func (s *BookingService) CreateBooking(ctx context.Context, customer *auth.Identity, req *CreateBookingRequest) (*models.Booking, error) {
	event, err := s.ledger.EventByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("event lookup: %w", err)
	}
	if event.OwnerID != customer.ID {
		return nil, auth.ErrForbidden
	}

	store, err := s.ledger.StoreByID(ctx, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("store lookup: %w", err)
	}
	if !store.Active {
		return nil, fmt.Errorf("store %s is inactive", store.ID)
	}

	amount := store.PriceStart
	if req.ServiceID != "" {
		service, err := s.ledger.ServiceByID(ctx, req.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("service lookup: %w", err)
		}
		if service.StoreID != store.ID {
			return nil, fmt.Errorf("service %s does not belong to store %s", service.ID, store.ID)
		}
		amount = service.Price
	}

	percentage := req.AdvancePercentage
	required, err := advance.Compute(amount, percentage, s.cfg.DefaultAdvancePercentage)
	if err != nil {
		return nil, err
	}
	if percentage.LessThanOrEqual(decimal.Zero) {
		percentage = s.cfg.DefaultAdvancePercentage
	}

	booking := &models.Booking{
		EventID:           event.ID,
		StoreID:           store.ID,
		ServiceID:         req.ServiceID,
		CustomerID:        customer.ID,
		VendorID:          store.VendorID,
		Amount:            amount,
		AdvancePercentage: percentage,
		AdvanceRequired:   required,
		AdvancePaid:       decimal.Zero,
		Status:            models.BookingPending,
		BookingDate:       req.BookingDate,
	}

	if err := s.ledger.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.notifier.Notify(ctx, booking.VendorID, "booking_requested",
		fmt.Sprintf("New booking request for store %s", store.StoreName))

	return booking, nil
}

// AdvanceOrder is what the client needs to run the provider checkout.
type AdvanceOrder struct {
	BookingID string          `json:"booking_id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Receipt   string          `json:"receipt"`
	Gateway   string          `json:"gateway"`
}

// StartAdvancePayment opens a remote order for the booking's outstanding
// advance and records the attempt as a pending AdvancePayment. The remote
// call happens before any local write, so a gateway failure leaves nothing
// behind but the booking itself; the attempt is simply retried.
func (s *BookingService) StartAdvancePayment(ctx context.Context, payer *auth.Identity, bookingID string) (*AdvanceOrder, error) {
	booking, err := s.ledger.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != payer.ID {
		return nil, auth.ErrForbidden
	}
	if booking.Status != models.BookingPending {
		return nil, fmt.Errorf("%w: booking %s is %s", status.ErrInvalidTransition, booking.ID, booking.Status)
	}

	outstanding := booking.AdvanceRequired.Sub(booking.AdvancePaid)
	if outstanding.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("booking %s has no outstanding advance", booking.ID)
	}

	gw, err := s.gateways.Primary()
	if err != nil {
		return nil, err
	}

	ref, _ := utils.GenerateCode(4)
	receipt := fmt.Sprintf("bk-%s-%s", booking.ID, ref)

	order, err := gw.CreateOrder(ctx, &gateway.OrderRequest{
		Amount:   outstanding,
		Currency: s.cfg.Currency,
		Receipt:  receipt,
	})
	if err != nil {
		// Remote order creation failed: no AdvancePayment row is written,
		// never a succeeded one.
		return nil, err
	}

	payment := &models.AdvancePayment{
		BookingID: booking.ID,
		PayerID:   payer.ID,
		Amount:    outstanding,
		Currency:  s.cfg.Currency,
		Status:    models.AdvancePending,
		Gateway:   string(gw.Provider()),
		GatewayID: order.ID,
	}
	if err := s.ledger.SaveAdvancePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("save advance payment: %w", err)
	}

	// Explicit order -> booking link for the reconciliation fallback path.
	if err := s.redis.Set(ctx, orderMapKey(order.ID), booking.ID, s.cfg.OrderMapTTL).Err(); err != nil {
		slog.Error("failed to persist order map", "order_id", order.ID, "booking_id", booking.ID, "error", err)
	}

	return &AdvanceOrder{
		BookingID: booking.ID,
		OrderID:   order.ID,
		Amount:    outstanding,
		Currency:  s.cfg.Currency,
		Receipt:   receipt,
		Gateway:   string(gw.Provider()),
	}, nil
}

// Approve is the vendor's manual pending -> confirmed override, e.g. when
// no advance is required.
func (s *BookingService) Approve(ctx context.Context, vendor *auth.Identity, bookingID string) (*models.Booking, error) {
	return s.vendorTransition(ctx, vendor, bookingID, models.BookingConfirmed, "booking_confirmed", "Your booking has been confirmed")
}

// Reject cancels a pending or confirmed booking on the vendor's behalf.
func (s *BookingService) Reject(ctx context.Context, vendor *auth.Identity, bookingID string) (*models.Booking, error) {
	return s.vendorTransition(ctx, vendor, bookingID, models.BookingCancelled, "booking_rejected", "Your booking has been rejected")
}

// Start moves a confirmed booking to in_progress.
func (s *BookingService) Start(ctx context.Context, vendor *auth.Identity, bookingID string) (*models.Booking, error) {
	return s.vendorTransition(ctx, vendor, bookingID, models.BookingInProgress, "booking_started", "Your booking is now in progress")
}

func (s *BookingService) vendorTransition(ctx context.Context, vendor *auth.Identity, bookingID, to, notifyType, notifyMsg string) (*models.Booking, error) {
	var booking *models.Booking

	err := s.ledger.RunInTransaction(ctx, func(tx Ledger) error {
		b, err := tx.BookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.VendorID != vendor.ID {
			return auth.ErrForbidden
		}
		if err := ValidateTransition(b.Status, to); err != nil {
			return err
		}

		b.Status = to
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, booking.CustomerID, notifyType, notifyMsg)
	return booking, nil
}

// Complete finishes an in_progress booking and derives the vendor earning
// exactly once. A second complete call fails the transition check before it
// ever reaches the earning, and the existence check covers the manual-edit
// case on top of that.
func (s *BookingService) Complete(ctx context.Context, vendor *auth.Identity, bookingID string) (*models.Booking, error) {
	var booking *models.Booking

	err := s.ledger.RunInTransaction(ctx, func(tx Ledger) error {
		b, err := tx.BookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.VendorID != vendor.ID {
			return auth.ErrForbidden
		}
		if err := ValidateTransition(b.Status, models.BookingCompleted); err != nil {
			return err
		}

		b.Status = models.BookingCompleted
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}

		if _, err := tx.EarningByBookingID(ctx, b.ID); err == nil {
			// Earning already derived for this booking.
			booking = b
			return nil
		} else if !errors.Is(err, status.ErrNotFound) {
			return err
		}

		earning := models.NewVendorEarning(b, s.cfg.CommissionRate)
		if err := tx.SaveEarning(ctx, earning); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, booking.CustomerID, "booking_completed", "Your booking has been completed")
	return booking, nil
}

// CancelByCustomer lets the customer back out while the booking is still
// pending; anything later is the vendor's call.
func (s *BookingService) CancelByCustomer(ctx context.Context, customer *auth.Identity, bookingID string) (*models.Booking, error) {
	var booking *models.Booking

	err := s.ledger.RunInTransaction(ctx, func(tx Ledger) error {
		b, err := tx.BookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != customer.ID {
			return auth.ErrForbidden
		}
		if b.Status != models.BookingPending {
			return fmt.Errorf("%w: customer cancel requires pending, booking is %s", status.ErrInvalidTransition, b.Status)
		}
		if err := ValidateTransition(b.Status, models.BookingCancelled); err != nil {
			return err
		}

		b.Status = models.BookingCancelled
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, booking.VendorID, "booking_cancelled", "A booking was cancelled by the customer")
	return booking, nil
}

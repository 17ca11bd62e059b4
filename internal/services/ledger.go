package services

import (
	"context"

	"planify/models"
)

// Ledger is the persistence boundary for the booking/payment/earning
// entities. Lookups return status.ErrNotFound when no row matches.
//
// RunInTransaction hands the callback a Ledger bound to one transaction;
// every settlement mutation (payment status, advance_paid, booking status)
// happens inside a single such unit of work.
type Ledger interface {
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	SaveBooking(ctx context.Context, b *models.Booking) error
	BookingsForCustomer(ctx context.Context, customerID string) ([]*models.Booking, error)
	BookingsForVendor(ctx context.Context, vendorID string) ([]*models.Booking, error)
	BookingsForEvent(ctx context.Context, eventID string) ([]*models.Booking, error)

	// AdvancePaymentsByGatewayID returns every attempt recorded for the
	// (provider, remote order id) pair, newest first. More than one row can
	// legitimately exist across historical attempts.
	AdvancePaymentsByGatewayID(ctx context.Context, gatewayName, gatewayID string) ([]*models.AdvancePayment, error)
	SaveAdvancePayment(ctx context.Context, p *models.AdvancePayment) error

	EarningByBookingID(ctx context.Context, bookingID string) (*models.VendorEarning, error)
	SaveEarning(ctx context.Context, e *models.VendorEarning) error
	EarningsForVendor(ctx context.Context, vendorID string) ([]*models.VendorEarning, error)

	// Collaborator reads. The core only ever reads these entities.
	StoreByID(ctx context.Context, id string) (*models.Store, error)
	ServiceByID(ctx context.Context, id string) (*models.Service, error)
	EventByID(ctx context.Context, id string) (*models.Event, error)
	GuestAccessForEvent(ctx context.Context, eventID string) ([]*models.GuestAccess, error)

	// Notification creation is fire-and-forget for callers.
	SaveNotification(ctx context.Context, n *models.Notification) error

	RunInTransaction(ctx context.Context, fn func(tx Ledger) error) error
}

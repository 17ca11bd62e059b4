package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planify/internal/auth"
	"planify/internal/status"
	"planify/models"
)

var (
	customer = &auth.Identity{ID: "cust1", Role: models.RoleCustomer}
	vendor   = &auth.Identity{ID: "vend1", Role: models.RoleVendor}
)

func newTestBookingService(l *fakeLedger, gw *fakeGateway) (*BookingService, func() error) {
	db, mock := newMockedRedis()
	svc := NewBookingService(l, testRegistry(gw), db, newTestNotifier(l), testBookingConfig())
	return svc, mock.ExpectationsWereMet
}

func TestCreateBooking_DerivesAdvanceFromDefault(t *testing.T) {
	l := newFakeLedger()
	l.events["ev1"] = &models.Event{ID: "ev1", OwnerID: "cust1", Name: "Wedding"}
	l.stores["st1"] = &models.Store{ID: "st1", VendorID: "vend1", StoreName: "Catering Co", Active: true, PriceStart: decimal.RequireFromString("1000")}

	svc, _ := newTestBookingService(l, newFakeGateway())

	b, err := svc.CreateBooking(context.Background(), customer, &CreateBookingRequest{
		EventID: "ev1",
		StoreID: "st1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, "vend1", b.VendorID)
	assert.True(t, b.AdvanceRequired.Equal(decimal.RequireFromString("200")), "20%% of 1000, got %s", b.AdvanceRequired)
	assert.True(t, b.AdvancePaid.IsZero())
	assert.True(t, b.AdvancePercentage.Equal(decimal.NewFromInt(20)))

	require.Len(t, l.notices, 1)
	assert.Equal(t, "vend1", l.notices[0].UserID)
	assert.Equal(t, "booking_requested", l.notices[0].Type)
}

func TestCreateBooking_ServicePriceOverridesStore(t *testing.T) {
	l := newFakeLedger()
	l.events["ev1"] = &models.Event{ID: "ev1", OwnerID: "cust1"}
	l.stores["st1"] = &models.Store{ID: "st1", VendorID: "vend1", Active: true, PriceStart: decimal.RequireFromString("1000")}
	l.services["sv1"] = &models.Service{ID: "sv1", StoreID: "st1", Name: "Premium package", Price: decimal.RequireFromString("2500")}

	svc, _ := newTestBookingService(l, newFakeGateway())

	b, err := svc.CreateBooking(context.Background(), customer, &CreateBookingRequest{
		EventID:           "ev1",
		StoreID:           "st1",
		ServiceID:         "sv1",
		AdvancePercentage: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	assert.True(t, b.Amount.Equal(decimal.RequireFromString("2500")))
	assert.True(t, b.AdvanceRequired.Equal(decimal.RequireFromString("375")), "15%% of 2500, got %s", b.AdvanceRequired)
}

func TestCreateBooking_ForeignEventRejected(t *testing.T) {
	l := newFakeLedger()
	l.events["ev1"] = &models.Event{ID: "ev1", OwnerID: "someone-else"}
	l.stores["st1"] = &models.Store{ID: "st1", VendorID: "vend1", Active: true, PriceStart: decimal.RequireFromString("1000")}

	svc, _ := newTestBookingService(l, newFakeGateway())

	_, err := svc.CreateBooking(context.Background(), customer, &CreateBookingRequest{EventID: "ev1", StoreID: "st1"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.Empty(t, l.bookings)
}

func TestStartAdvancePayment_RecordsPendingAttempt(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")
	gw := newFakeGateway()

	db, mock := newMockedRedis()
	svc := NewBookingService(l, testRegistry(gw), db, newTestNotifier(l), testBookingConfig())

	mock.ExpectSet("gworder:order_1", b.ID, 24*time.Hour).SetVal("OK")

	order, err := svc.StartAdvancePayment(context.Background(), customer, b.ID)
	require.NoError(t, err)

	assert.Equal(t, "order_1", order.OrderID)
	assert.True(t, order.Amount.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "razorpay", order.Gateway)

	require.Len(t, l.payments, 1)
	p := l.payments[0]
	assert.Equal(t, models.AdvancePending, p.Status)
	assert.Equal(t, b.ID, p.BookingID)
	assert.Equal(t, "order_1", p.GatewayID)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("200")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartAdvancePayment_GatewayFailureLeavesNothing(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")
	gw := newFakeGateway()
	gw.createErr = status.ErrGatewayUnavailable

	svc, _ := newTestBookingService(l, gw)

	_, err := svc.StartAdvancePayment(context.Background(), customer, b.ID)
	assert.ErrorIs(t, err, status.ErrGatewayUnavailable)
	assert.Empty(t, l.payments, "no attempt row may exist after a failed order creation")
}

func TestStartAdvancePayment_WrongCustomer(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")

	svc, _ := newTestBookingService(l, newFakeGateway())

	_, err := svc.StartAdvancePayment(context.Background(), &auth.Identity{ID: "intruder"}, b.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestComplete_DerivesEarningExactlyOnce(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")
	b.Status = models.BookingInProgress
	require.NoError(t, l.SaveBooking(context.Background(), b))

	svc, _ := newTestBookingService(l, newFakeGateway())

	done, err := svc.Complete(context.Background(), vendor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, done.Status)

	earning := l.earnings[b.ID]
	require.NotNil(t, earning)
	assert.True(t, earning.NetAmount.Equal(decimal.RequireFromString("900")), "1000 minus 10%% commission, got %s", earning.NetAmount)
	assert.Equal(t, models.EarningUnpaid, earning.PaymentStatus)

	// A repeated complete fails the lifecycle check and the earning stays put.
	_, err = svc.Complete(context.Background(), vendor, b.ID)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
	assert.Len(t, l.earnings, 1)
	assert.True(t, l.earnings[b.ID].NetAmount.Equal(decimal.RequireFromString("900")))
}

func TestComplete_RejectsPendingBooking(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")

	svc, _ := newTestBookingService(l, newFakeGateway())

	_, err := svc.Complete(context.Background(), vendor, b.ID)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
	assert.Empty(t, l.earnings)
	assert.Equal(t, models.BookingPending, l.bookings[b.ID].Status)
}

func TestVendorTransitions_Sequence(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")

	svc, _ := newTestBookingService(l, newFakeGateway())
	ctx := context.Background()

	got, err := svc.Approve(ctx, vendor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	got, err = svc.Start(ctx, vendor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingInProgress, got.Status)

	// Cancellation is no longer reachable once work started.
	_, err = svc.Reject(ctx, vendor, b.ID)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestVendorTransition_WrongVendor(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")

	svc, _ := newTestBookingService(l, newFakeGateway())

	_, err := svc.Approve(context.Background(), &auth.Identity{ID: "othervendor"}, b.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.Equal(t, models.BookingPending, l.bookings[b.ID].Status)
}

func TestCancelByCustomer_OnlyWhilePending(t *testing.T) {
	l := newFakeLedger()
	b := seedBooking(l, "1000", "200")

	svc, _ := newTestBookingService(l, newFakeGateway())
	ctx := context.Background()

	got, err := svc.CancelByCustomer(ctx, customer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	b2 := seedBooking(l, "500", "100")
	b2.Status = models.BookingConfirmed
	require.NoError(t, l.SaveBooking(ctx, b2))

	_, err = svc.CancelByCustomer(ctx, customer, b2.ID)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
	assert.Equal(t, models.BookingConfirmed, l.bookings[b2.ID].Status)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"planify/internal/gateway"
	"planify/internal/status"
	"planify/models"
)

// fakeLedger is an in-memory Ledger. RunInTransaction runs the callback
// against the same store, which is enough for single-goroutine tests.
type fakeLedger struct {
	seq       int
	bookings  map[string]*models.Booking
	payments  []*models.AdvancePayment
	earnings  map[string]*models.VendorEarning // keyed by booking id
	stores    map[string]*models.Store
	services  map[string]*models.Service
	events    map[string]*models.Event
	notices   []*models.Notification
	saveErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		bookings: make(map[string]*models.Booking),
		earnings: make(map[string]*models.VendorEarning),
		stores:   make(map[string]*models.Store),
		services: make(map[string]*models.Service),
		events:   make(map[string]*models.Event),
	}
}

func (l *fakeLedger) nextID() string {
	l.seq++
	return fmt.Sprintf("id%04d", l.seq)
}

func (l *fakeLedger) BookingByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := l.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", status.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (l *fakeLedger) SaveBooking(_ context.Context, b *models.Booking) error {
	if l.saveErr != nil {
		return l.saveErr
	}
	if b.ID == "" {
		b.ID = l.nextID()
		b.CreatedAt = time.Now()
	}
	cp := *b
	l.bookings[b.ID] = &cp
	return nil
}

func (l *fakeLedger) BookingsForCustomer(_ context.Context, customerID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range l.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *fakeLedger) BookingsForVendor(_ context.Context, vendorID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range l.bookings {
		if b.VendorID == vendorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *fakeLedger) BookingsForEvent(_ context.Context, eventID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range l.bookings {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *fakeLedger) AdvancePaymentsByGatewayID(_ context.Context, gatewayName, gatewayID string) ([]*models.AdvancePayment, error) {
	var out []*models.AdvancePayment
	for i := len(l.payments) - 1; i >= 0; i-- {
		p := l.payments[i]
		if p.Gateway == gatewayName && p.GatewayID == gatewayID {
			cp := *p
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no attempts for %s/%s", status.ErrNotFound, gatewayName, gatewayID)
	}
	return out, nil
}

func (l *fakeLedger) SaveAdvancePayment(_ context.Context, p *models.AdvancePayment) error {
	if p.ID == "" {
		p.ID = l.nextID()
		p.CreatedAt = time.Now()
		cp := *p
		l.payments = append(l.payments, &cp)
		return nil
	}
	for i, existing := range l.payments {
		if existing.ID == p.ID {
			cp := *p
			l.payments[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: payment %s", status.ErrNotFound, p.ID)
}

func (l *fakeLedger) EarningByBookingID(_ context.Context, bookingID string) (*models.VendorEarning, error) {
	e, ok := l.earnings[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: earning for booking %s", status.ErrNotFound, bookingID)
	}
	cp := *e
	return &cp, nil
}

func (l *fakeLedger) SaveEarning(_ context.Context, e *models.VendorEarning) error {
	if e.ID == "" {
		e.ID = l.nextID()
	}
	cp := *e
	l.earnings[e.BookingID] = &cp
	return nil
}

func (l *fakeLedger) EarningsForVendor(_ context.Context, vendorID string) ([]*models.VendorEarning, error) {
	var out []*models.VendorEarning
	for _, e := range l.earnings {
		if e.VendorID == vendorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeLedger) StoreByID(_ context.Context, id string) (*models.Store, error) {
	s, ok := l.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: store %s", status.ErrNotFound, id)
	}
	return s, nil
}

func (l *fakeLedger) ServiceByID(_ context.Context, id string) (*models.Service, error) {
	s, ok := l.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: service %s", status.ErrNotFound, id)
	}
	return s, nil
}

func (l *fakeLedger) EventByID(_ context.Context, id string) (*models.Event, error) {
	e, ok := l.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, id)
	}
	return e, nil
}

func (l *fakeLedger) GuestAccessForEvent(_ context.Context, eventID string) ([]*models.GuestAccess, error) {
	return nil, nil
}

func (l *fakeLedger) SaveNotification(_ context.Context, n *models.Notification) error {
	cp := *n
	l.notices = append(l.notices, &cp)
	return nil
}

func (l *fakeLedger) RunInTransaction(_ context.Context, fn func(tx Ledger) error) error {
	return fn(l)
}

// paymentByID returns the stored attempt row for assertions.
func (l *fakeLedger) paymentByID(id string) *models.AdvancePayment {
	for _, p := range l.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// snapshot captures the mutable settlement state for no-mutation assertions.
func (l *fakeLedger) snapshot() string {
	s := ""
	for id, b := range l.bookings {
		s += fmt.Sprintf("b:%s:%s:%s;", id, b.Status, b.AdvancePaid.StringFixed(2))
	}
	for _, p := range l.payments {
		s += fmt.Sprintf("p:%s:%s;", p.ID, p.Status)
	}
	for id := range l.earnings {
		s += fmt.Sprintf("e:%s;", id)
	}
	return s
}

// fakeGateway is a scripted PaymentGateway.
type fakeGateway struct {
	orders    []*gateway.OrderRequest
	createErr error
	nextOrder *gateway.Order

	payments map[string]*gateway.Payment
	fetchErr error

	validSignature string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payments: make(map[string]*gateway.Payment)}
}

func (g *fakeGateway) Provider() gateway.Provider { return gateway.ProviderRazorpay }

func (g *fakeGateway) CreateOrder(_ context.Context, req *gateway.OrderRequest) (*gateway.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.orders = append(g.orders, req)
	if g.nextOrder != nil {
		return g.nextOrder, nil
	}
	return &gateway.Order{
		ID:       fmt.Sprintf("order_%d", len(g.orders)),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) FetchPayment(_ context.Context, paymentID string) (*gateway.Payment, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("%w: payment %s", status.ErrGatewayFetch, paymentID)
	}
	return p, nil
}

func (g *fakeGateway) VerifyWebhookSignature(_ []byte, signature string) bool {
	return signature == g.validSignature && signature != ""
}

func testRegistry(gw gateway.PaymentGateway) *gateway.Registry {
	r := gateway.NewRegistry()
	r.Register(gw)
	return r
}

func testBookingConfig() BookingConfig {
	return BookingConfig{
		DefaultAdvancePercentage: decimal.NewFromInt(20),
		CommissionRate:           decimal.NewFromInt(10),
		Currency:                 "INR",
		OrderMapTTL:              24 * time.Hour,
	}
}

func newTestNotifier(l *fakeLedger) *NotificationService {
	return NewNotificationService(l, nil)
}

// seedBooking wires an event, store and pending booking into the ledger.
func seedBooking(l *fakeLedger, amount, required string) *models.Booking {
	l.events["ev1"] = &models.Event{ID: "ev1", OwnerID: "cust1", Name: "Wedding"}
	l.stores["st1"] = &models.Store{ID: "st1", VendorID: "vend1", StoreName: "Catering Co", Active: true, PriceStart: decimal.RequireFromString(amount)}

	b := &models.Booking{
		EventID:           "ev1",
		StoreID:           "st1",
		CustomerID:        "cust1",
		VendorID:          "vend1",
		Amount:            decimal.RequireFromString(amount),
		AdvancePercentage: decimal.NewFromInt(20),
		AdvanceRequired:   decimal.RequireFromString(required),
		AdvancePaid:       decimal.Zero,
		Status:            models.BookingPending,
	}
	_ = l.SaveBooking(context.Background(), b)
	return b
}

func newMockedRedis() (*redis.Client, redismock.ClientMock) {
	return redismock.NewClientMock()
}

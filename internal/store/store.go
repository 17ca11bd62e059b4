// Package store implements the services.Ledger persistence boundary on top
// of the PocketBase data layer.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"planify/internal/services"
	"planify/internal/status"
	"planify/models"
)

type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

// notFound normalizes a PocketBase lookup miss to the shared sentinel.
func notFound(entity, id string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", status.ErrNotFound, entity, id, err)
}

// Monetary columns are stored as text and parsed through decimal so amounts
// survive round trips without float drift.
func recDecimal(r *core.Record, field string) decimal.Decimal {
	d, err := decimal.NewFromString(r.GetString(field))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func bookingFromRecord(r *core.Record) *models.Booking {
	b := &models.Booking{
		ID:                r.Id,
		EventID:           r.GetString("event_id"),
		StoreID:           r.GetString("store_id"),
		ServiceID:         r.GetString("service_id"),
		CustomerID:        r.GetString("customer_id"),
		VendorID:          r.GetString("vendor_id"),
		Amount:            recDecimal(r, "amount"),
		AdvancePercentage: recDecimal(r, "advance_percentage"),
		AdvanceRequired:   recDecimal(r, "advance_required"),
		AdvancePaid:       recDecimal(r, "advance_paid"),
		Status:            r.GetString("status"),
		CreatedAt:         r.GetDateTime("created").Time(),
		UpdatedAt:         r.GetDateTime("updated").Time(),
	}

	if date := r.GetDateTime("booking_date"); !date.IsZero() {
		t := date.Time()
		b.BookingDate = &t
	}
	return b
}

func applyBooking(r *core.Record, b *models.Booking) {
	r.Set("event_id", b.EventID)
	r.Set("store_id", b.StoreID)
	r.Set("service_id", b.ServiceID)
	r.Set("customer_id", b.CustomerID)
	r.Set("vendor_id", b.VendorID)
	r.Set("amount", b.Amount.String())
	r.Set("advance_percentage", b.AdvancePercentage.String())
	r.Set("advance_required", b.AdvanceRequired.String())
	r.Set("advance_paid", b.AdvancePaid.String())
	r.Set("status", b.Status)
	if b.BookingDate != nil {
		r.Set("booking_date", b.BookingDate.UTC())
	}
}

func (s *Store) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	r, err := s.app.FindRecordById("bookings", id)
	if err != nil {
		return nil, notFound("booking", id, err)
	}
	return bookingFromRecord(r), nil
}

func (s *Store) SaveBooking(ctx context.Context, b *models.Booking) error {
	var r *core.Record

	if b.ID == "" {
		collection, err := s.app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return fmt.Errorf("bookings collection: %w", err)
		}
		r = core.NewRecord(collection)
	} else {
		var err error
		r, err = s.app.FindRecordById("bookings", b.ID)
		if err != nil {
			return notFound("booking", b.ID, err)
		}
	}

	applyBooking(r, b)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save booking: %w", err)
	}

	b.ID = r.Id
	b.CreatedAt = r.GetDateTime("created").Time()
	b.UpdatedAt = r.GetDateTime("updated").Time()
	return nil
}

func (s *Store) bookingsByFilter(filter string, params map[string]any) ([]*models.Booking, error) {
	records, err := s.app.FindRecordsByFilter("bookings", filter, "-created", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(records))
	for _, r := range records {
		bookings = append(bookings, bookingFromRecord(r))
	}
	return bookings, nil
}

func (s *Store) BookingsForCustomer(ctx context.Context, customerID string) ([]*models.Booking, error) {
	return s.bookingsByFilter("customer_id = {:id}", map[string]any{"id": customerID})
}

func (s *Store) BookingsForVendor(ctx context.Context, vendorID string) ([]*models.Booking, error) {
	return s.bookingsByFilter("vendor_id = {:id}", map[string]any{"id": vendorID})
}

func (s *Store) BookingsForEvent(ctx context.Context, eventID string) ([]*models.Booking, error) {
	return s.bookingsByFilter("event_id = {:id}", map[string]any{"id": eventID})
}

func paymentFromRecord(r *core.Record) *models.AdvancePayment {
	p := &models.AdvancePayment{
		ID:        r.Id,
		BookingID: r.GetString("booking_id"),
		PayerID:   r.GetString("payer_id"),
		Amount:    recDecimal(r, "amount"),
		Currency:  r.GetString("currency"),
		Status:    r.GetString("status"),
		Gateway:   r.GetString("gateway"),
		GatewayID: r.GetString("gateway_id"),
		CreatedAt: r.GetDateTime("created").Time(),
	}

	if raw := r.GetString("gateway_response"); raw != "" {
		p.GatewayResponse = json.RawMessage(raw)
	}
	return p
}

func (s *Store) AdvancePaymentsByGatewayID(ctx context.Context, gatewayName, gatewayID string) ([]*models.AdvancePayment, error) {
	records, err := s.app.FindRecordsByFilter(
		"advance_payments",
		"gateway = {:gateway} && gateway_id = {:gatewayId}",
		"-created",
		0,
		0,
		map[string]any{"gateway": gatewayName, "gatewayId": gatewayID},
	)
	if err != nil {
		return nil, fmt.Errorf("list advance payments: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no attempts for order %s", status.ErrNotFound, gatewayID)
	}

	payments := make([]*models.AdvancePayment, 0, len(records))
	for _, r := range records {
		payments = append(payments, paymentFromRecord(r))
	}
	return payments, nil
}

func (s *Store) SaveAdvancePayment(ctx context.Context, p *models.AdvancePayment) error {
	var r *core.Record

	if p.ID == "" {
		collection, err := s.app.FindCollectionByNameOrId("advance_payments")
		if err != nil {
			return fmt.Errorf("advance_payments collection: %w", err)
		}
		r = core.NewRecord(collection)
	} else {
		var err error
		r, err = s.app.FindRecordById("advance_payments", p.ID)
		if err != nil {
			return notFound("advance payment", p.ID, err)
		}
	}

	r.Set("booking_id", p.BookingID)
	r.Set("payer_id", p.PayerID)
	r.Set("amount", p.Amount.String())
	r.Set("currency", p.Currency)
	r.Set("status", p.Status)
	r.Set("gateway", p.Gateway)
	r.Set("gateway_id", p.GatewayID)
	if len(p.GatewayResponse) > 0 {
		r.Set("gateway_response", string(p.GatewayResponse))
	}

	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save advance payment: %w", err)
	}

	p.ID = r.Id
	p.CreatedAt = r.GetDateTime("created").Time()
	return nil
}

func earningFromRecord(r *core.Record) *models.VendorEarning {
	return &models.VendorEarning{
		ID:             r.Id,
		BookingID:      r.GetString("booking_id"),
		VendorID:       r.GetString("vendor_id"),
		Amount:         recDecimal(r, "amount"),
		CommissionRate: recDecimal(r, "commission_rate"),
		NetAmount:      recDecimal(r, "net_amount"),
		PaymentStatus:  r.GetString("payment_status"),
		CreatedAt:      r.GetDateTime("created").Time(),
	}
}

func (s *Store) EarningByBookingID(ctx context.Context, bookingID string) (*models.VendorEarning, error) {
	records, err := s.app.FindRecordsByFilter(
		"vendor_earnings",
		"booking_id = {:id}",
		"",
		1,
		0,
		map[string]any{"id": bookingID},
	)
	if err != nil || len(records) == 0 {
		return nil, notFound("earning for booking", bookingID, err)
	}
	return earningFromRecord(records[0]), nil
}

func (s *Store) SaveEarning(ctx context.Context, e *models.VendorEarning) error {
	var r *core.Record

	if e.ID == "" {
		collection, err := s.app.FindCollectionByNameOrId("vendor_earnings")
		if err != nil {
			return fmt.Errorf("vendor_earnings collection: %w", err)
		}
		r = core.NewRecord(collection)
	} else {
		var err error
		r, err = s.app.FindRecordById("vendor_earnings", e.ID)
		if err != nil {
			return notFound("earning", e.ID, err)
		}
	}

	r.Set("booking_id", e.BookingID)
	r.Set("vendor_id", e.VendorID)
	r.Set("amount", e.Amount.String())
	r.Set("commission_rate", e.CommissionRate.String())
	r.Set("net_amount", e.NetAmount.String())
	r.Set("payment_status", e.PaymentStatus)

	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save earning: %w", err)
	}

	e.ID = r.Id
	e.CreatedAt = r.GetDateTime("created").Time()
	return nil
}

func (s *Store) EarningsForVendor(ctx context.Context, vendorID string) ([]*models.VendorEarning, error) {
	records, err := s.app.FindRecordsByFilter(
		"vendor_earnings",
		"vendor_id = {:id}",
		"-created",
		0,
		0,
		map[string]any{"id": vendorID},
	)
	if err != nil {
		return nil, fmt.Errorf("list earnings: %w", err)
	}

	earnings := make([]*models.VendorEarning, 0, len(records))
	for _, r := range records {
		earnings = append(earnings, earningFromRecord(r))
	}
	return earnings, nil
}

func (s *Store) StoreByID(ctx context.Context, id string) (*models.Store, error) {
	r, err := s.app.FindRecordById("stores", id)
	if err != nil {
		return nil, notFound("store", id, err)
	}
	return &models.Store{
		ID:          r.Id,
		VendorID:    r.GetString("vendor_id"),
		StoreName:   r.GetString("store_name"),
		Description: r.GetString("description"),
		Category:    r.GetString("category"),
		Address:     r.GetString("address"),
		City:        r.GetString("city"),
		PriceStart:  recDecimal(r, "price_start"),
		Active:      r.GetBool("active"),
		CreatedAt:   r.GetDateTime("created").Time(),
		UpdatedAt:   r.GetDateTime("updated").Time(),
	}, nil
}

func (s *Store) ServiceByID(ctx context.Context, id string) (*models.Service, error) {
	r, err := s.app.FindRecordById("services", id)
	if err != nil {
		return nil, notFound("service", id, err)
	}
	return &models.Service{
		ID:          r.Id,
		StoreID:     r.GetString("store_id"),
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		Price:       recDecimal(r, "price"),
		Active:      r.GetBool("active"),
	}, nil
}

func (s *Store) EventByID(ctx context.Context, id string) (*models.Event, error) {
	r, err := s.app.FindRecordById("events", id)
	if err != nil {
		return nil, notFound("event", id, err)
	}
	return &models.Event{
		ID:        r.Id,
		OwnerID:   r.GetString("owner_id"),
		Name:      r.GetString("name"),
		Venue:     r.GetString("venue"),
		Date:      r.GetDateTime("date").Time(),
		Status:    r.GetString("status"),
		CreatedAt: r.GetDateTime("created").Time(),
	}, nil
}

func (s *Store) GuestAccessForEvent(ctx context.Context, eventID string) ([]*models.GuestAccess, error) {
	records, err := s.app.FindRecordsByFilter(
		"guest_access",
		"event_id = {:id}",
		"-created",
		0,
		0,
		map[string]any{"id": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("list guest access: %w", err)
	}

	grants := make([]*models.GuestAccess, 0, len(records))
	for _, r := range records {
		grants = append(grants, &models.GuestAccess{
			ID:        r.Id,
			EventID:   r.GetString("event_id"),
			Label:     r.GetString("label"),
			CodeHash:  r.GetString("code_hash"),
			Active:    r.GetBool("active"),
			CreatedAt: r.GetDateTime("created").Time(),
		})
	}
	return grants, nil
}

// SaveGuestAccess persists a guest access grant; used by the guest access
// endpoints on top of the core Ledger surface.
func (s *Store) SaveGuestAccess(ctx context.Context, g *models.GuestAccess) error {
	var r *core.Record

	if g.ID == "" {
		collection, err := s.app.FindCollectionByNameOrId("guest_access")
		if err != nil {
			return fmt.Errorf("guest_access collection: %w", err)
		}
		r = core.NewRecord(collection)
	} else {
		var err error
		r, err = s.app.FindRecordById("guest_access", g.ID)
		if err != nil {
			return notFound("guest access", g.ID, err)
		}
	}

	r.Set("event_id", g.EventID)
	r.Set("label", g.Label)
	r.Set("code_hash", g.CodeHash)
	r.Set("active", g.Active)

	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save guest access: %w", err)
	}

	g.ID = r.Id
	g.CreatedAt = r.GetDateTime("created").Time()
	return nil
}

func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) error {
	collection, err := s.app.FindCollectionByNameOrId("notifications")
	if err != nil {
		return fmt.Errorf("notifications collection: %w", err)
	}

	r := core.NewRecord(collection)
	r.Set("user_id", n.UserID)
	r.Set("type", n.Type)
	r.Set("message", n.Message)
	r.Set("read", n.Read)

	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	n.ID = r.Id
	n.CreatedAt = r.GetDateTime("created").Time()
	return nil
}

// RunInTransaction executes fn against a Store bound to one database
// transaction. Row writes inside the callback either all commit or all roll
// back with it.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx services.Ledger) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&Store{app: txApp})
	})
}

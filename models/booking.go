package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

type Booking struct {
	ID         string `json:"id"`
	EventID    string `json:"event_id"`
	StoreID    string `json:"store_id"`
	ServiceID  string `json:"service_id,omitempty"`
	CustomerID string `json:"customer_id"`
	VendorID   string `json:"vendor_id"`

	// Amount is the full service price. AdvanceRequired is derived once at
	// creation; AdvancePaid only ever grows through successful settlements.
	Amount            decimal.Decimal `json:"amount"`
	AdvancePercentage decimal.Decimal `json:"advance_percentage"`
	AdvanceRequired   decimal.Decimal `json:"advance_required"`
	AdvancePaid       decimal.Decimal `json:"advance_paid"`

	Status      string     `json:"status"` // pending, confirmed, in_progress, completed, cancelled
	BookingDate *time.Time `json:"booking_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AdvanceCovered reports whether the accumulated advance satisfies the
// required deposit.
func (b *Booking) AdvanceCovered() bool {
	return b.AdvancePaid.GreaterThanOrEqual(b.AdvanceRequired)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorEarning payment statuses.
const (
	EarningUnpaid = "unpaid"
	EarningPaid   = "paid"
)

// VendorEarning is derived exactly once per completed booking (one-to-one
// on BookingID). NetAmount = Amount - Amount*CommissionRate/100.
type VendorEarning struct {
	ID             string          `json:"id"`
	BookingID      string          `json:"booking_id"`
	VendorID       string          `json:"vendor_id"`
	Amount         decimal.Decimal `json:"amount"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	PaymentStatus  string          `json:"payment_status"` // unpaid, paid
	CreatedAt      time.Time       `json:"created_at"`
}

// NewVendorEarning derives the net payout for a completed booking.
func NewVendorEarning(b *Booking, commissionRate decimal.Decimal) *VendorEarning {
	commission := b.Amount.Mul(commissionRate).Div(decimal.NewFromInt(100))
	return &VendorEarning{
		BookingID:      b.ID,
		VendorID:       b.VendorID,
		Amount:         b.Amount,
		CommissionRate: commissionRate,
		NetAmount:      b.Amount.Sub(commission).Round(2),
		PaymentStatus:  EarningUnpaid,
	}
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_JSONSerialization(t *testing.T) {
	booking := Booking{
		ID:                "booking-123",
		EventID:           "event-1",
		StoreID:           "store-1",
		CustomerID:        "cust-1",
		VendorID:          "vend-1",
		Amount:            decimal.RequireFromString("1000"),
		AdvancePercentage: decimal.RequireFromString("20"),
		AdvanceRequired:   decimal.RequireFromString("200"),
		AdvancePaid:       decimal.RequireFromString("100"),
		Status:            BookingPending,
	}

	jsonData, err := json.Marshal(booking)
	require.NoError(t, err)

	var unmarshaled Booking
	require.NoError(t, json.Unmarshal(jsonData, &unmarshaled))

	assert.Equal(t, booking.ID, unmarshaled.ID)
	assert.Equal(t, booking.Status, unmarshaled.Status)
	assert.True(t, booking.Amount.Equal(unmarshaled.Amount))
	assert.True(t, booking.AdvanceRequired.Equal(unmarshaled.AdvanceRequired))
	assert.True(t, booking.AdvancePaid.Equal(unmarshaled.AdvancePaid))
}

func TestBooking_AdvanceCovered(t *testing.T) {
	b := Booking{
		AdvanceRequired: decimal.RequireFromString("200"),
		AdvancePaid:     decimal.RequireFromString("100"),
	}
	assert.False(t, b.AdvanceCovered())

	b.AdvancePaid = decimal.RequireFromString("200")
	assert.True(t, b.AdvanceCovered())

	// Overpayment still counts as covered.
	b.AdvancePaid = decimal.RequireFromString("250")
	assert.True(t, b.AdvanceCovered())
}

func TestAdvancePayment_Terminal(t *testing.T) {
	p := AdvancePayment{Status: AdvancePending}
	assert.False(t, p.Terminal())

	p.Status = AdvanceSucceeded
	assert.True(t, p.Terminal())

	p.Status = AdvanceFailed
	assert.True(t, p.Terminal())
}

func TestNewVendorEarning(t *testing.T) {
	booking := &Booking{
		ID:       "booking-123",
		VendorID: "vend-1",
		Amount:   decimal.RequireFromString("1000"),
	}

	earning := NewVendorEarning(booking, decimal.RequireFromString("10"))

	assert.Equal(t, "booking-123", earning.BookingID)
	assert.Equal(t, "vend-1", earning.VendorID)
	assert.True(t, earning.NetAmount.Equal(decimal.RequireFromString("900")), "got %s", earning.NetAmount)
	assert.Equal(t, EarningUnpaid, earning.PaymentStatus)
}

func TestNewVendorEarning_RoundsNetAmount(t *testing.T) {
	booking := &Booking{
		ID:       "booking-124",
		VendorID: "vend-1",
		Amount:   decimal.RequireFromString("333.33"),
	}

	earning := NewVendorEarning(booking, decimal.RequireFromString("12.5"))

	// 333.33 - 41.66625 = 291.66375 -> 291.66
	assert.True(t, earning.NetAmount.Equal(decimal.RequireFromString("291.66")), "got %s", earning.NetAmount)
}

func TestGuestAccess_CodeHashNeverSerialized(t *testing.T) {
	grant := GuestAccess{
		ID:       "ga-1",
		EventID:  "event-1",
		CodeHash: "$2a$10$secret-hash",
		Active:   true,
	}

	jsonData, err := json.Marshal(grant)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), "secret-hash")
}

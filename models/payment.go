package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AdvancePayment statuses. A record leaves pending exactly once; succeeded
// and failed are terminal.
const (
	AdvancePending   = "pending"
	AdvanceSucceeded = "succeeded"
	AdvanceFailed    = "failed"
)

// AdvancePayment is one payment attempt against a booking's deposit. The
// (Gateway, GatewayID) pair identifies the remote order for that attempt.
type AdvancePayment struct {
	ID        string          `json:"id"`
	BookingID string          `json:"booking_id"`
	PayerID   string          `json:"payer_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"` // pending, succeeded, failed

	Gateway   string `json:"gateway"`
	GatewayID string `json:"gateway_id"`

	// GatewayResponse captures the raw provider payload for audit. It is
	// written on every terminal transition and never interpreted locally.
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Terminal reports whether the attempt already reached a final status.
func (p *AdvancePayment) Terminal() bool {
	return p.Status == AdvanceSucceeded || p.Status == AdvanceFailed
}

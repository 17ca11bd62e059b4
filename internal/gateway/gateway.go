// Package gateway abstracts the remote payment provider that collects
// booking advances.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Provider identifies a payment gateway implementation.
type Provider string

const (
	ProviderRazorpay Provider = "razorpay"
)

// Remote payment statuses that count as money received.
const (
	PaymentCaptured   = "captured"
	PaymentAuthorized = "authorized"
)

// OrderRequest asks the provider to open a payment order.
type OrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

// Order is the provider-side order opened for one payment attempt.
type Order struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"`
}

// Payment is the provider's view of a payment, fetched server-side as the
// source of truth during reconciliation.
type Payment struct {
	ID       string          `json:"id"`
	OrderID  string          `json:"order_id"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Raw      json.RawMessage `json:"-"`
}

// Settled reports whether the remote status means the money arrived.
func (p *Payment) Settled() bool {
	return p.Status == PaymentCaptured || p.Status == PaymentAuthorized
}

// PaymentGateway is the outbound boundary to the provider. Implementations
// hold no settlement state; every call is a fallible remote round trip and
// idempotency is the caller's concern.
type PaymentGateway interface {
	// Provider returns the gateway provider name, recorded on every
	// AdvancePayment attempt.
	Provider() Provider

	// CreateOrder opens a remote payment order for the given amount.
	CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error)

	// FetchPayment retrieves the provider's record of a payment.
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)

	// VerifyWebhookSignature authenticates an inbound webhook body.
	VerifyWebhookSignature(body []byte, signature string) bool
}

// Package razorpay implements the payment gateway boundary against the
// Razorpay REST API.
package razorpay

import (
	"context"
	"fmt"

	"planify/internal/gateway"
	"planify/internal/status"
	"planify/utils"
)

type Config struct {
	BaseURL       string `json:"baseUrl" mapstructure:"base_url"`
	KeyID         string `json:"keyId" mapstructure:"key_id"`
	KeySecret     string `json:"keySecret" mapstructure:"key_secret"`
	WebhookSecret string `json:"webhookSecret" mapstructure:"webhook_secret"`
}

// Gateway holds no settlement state; every method is a remote round trip.
type Gateway struct {
	webhookSecret string

	client  *Client
	breaker *utils.CircuitBreaker
}

// New returns a new Razorpay gateway instance.
func New(ctx context.Context, cfg *Config) (*Gateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay: missing api credentials")
	}

	return &Gateway{
		webhookSecret: cfg.WebhookSecret,
		client:        newClient(ctx, &ClientConfig{BaseURL: cfg.BaseURL, KeyID: cfg.KeyID, KeySecret: cfg.KeySecret}),
		breaker:       utils.NewCircuitBreaker("razorpay"),
	}, nil
}

func (g *Gateway) Provider() gateway.Provider {
	return gateway.ProviderRazorpay
}

func (g *Gateway) CreateOrder(ctx context.Context, req *gateway.OrderRequest) (*gateway.Order, error) {
	result, err := g.breaker.Execute(ctx, func() (any, error) {
		return g.client.createOrder(ctx, req.Amount, req.Currency, req.Receipt)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrGatewayUnavailable, err)
	}

	order := result.(*orderPayload)
	return &gateway.Order{
		ID:       order.ID,
		Amount:   fromSubunits(order.Amount),
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
	}, nil
}

func (g *Gateway) FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	type fetched struct {
		payload *paymentPayload
		raw     []byte
	}

	result, err := g.breaker.Execute(ctx, func() (any, error) {
		payload, raw, err := g.client.fetchPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		return &fetched{payload: payload, raw: raw}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrGatewayFetch, err)
	}

	f := result.(*fetched)
	return &gateway.Payment{
		ID:       f.payload.ID,
		OrderID:  f.payload.OrderID,
		Status:   f.payload.Status,
		Amount:   fromSubunits(f.payload.Amount),
		Currency: f.payload.Currency,
		Raw:      f.raw,
	}, nil
}

func (g *Gateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return VerifySignature(body, signature, g.webhookSecret)
}

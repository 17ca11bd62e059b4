package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	KeyID     string `json:"keyId" mapstructure:"key_id"`
	KeySecret string `json:"keySecret" mapstructure:"key_secret"`
}

type Client struct {
	// baseURL is the base url of the Razorpay API.
	baseURL string

	// keyID and keySecret authenticate every call via basic auth.
	keyID     string
	keySecret string

	// hc is the http client.
	hc *http.Client
}

// newClient creates a new Razorpay REST client.
func newClient(_ context.Context, c *ClientConfig) *Client {
	return &Client{
		baseURL:   c.BaseURL,
		keyID:     c.KeyID,
		keySecret: c.KeySecret,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// orderPayload is the wire shape of a Razorpay order. Amounts travel in the
// currency's smallest unit (paise for INR).
type orderPayload struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// paymentPayload is the wire shape of a Razorpay payment entity.
type paymentPayload struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// createOrder opens a remote order via POST /v1/orders.
func (c *Client) createOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*orderPayload, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   toSubunits(amount),
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("createOrder: json.Marshal: %w", err)
	}

	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", _baseURL.String(), "/v1/orders"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("createOrder: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("createOrder: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("createOrder: resp.StatusCode: %d", resp.StatusCode)
	}

	var reply orderPayload
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("createOrder: json.Decode: %w", err)
	}
	if reply.ID == "" {
		return nil, fmt.Errorf("createOrder: reply missing order id")
	}

	return &reply, nil
}

// fetchPayment retrieves a payment entity via GET /v1/payments/{id} and
// returns both the decoded payload and the raw body for audit.
func (c *Client) fetchPayment(ctx context.Context, paymentID string) (*paymentPayload, []byte, error) {
	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/payments/%s", _baseURL.String(), url.PathEscape(paymentID)), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fetchPayment: http.NewReq: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetchPayment: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetchPayment: resp.StatusCode: %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	var reply paymentPayload
	dec := json.NewDecoder(io.TeeReader(resp.Body, &buf))
	if err := dec.Decode(&reply); err != nil {
		return nil, nil, fmt.Errorf("fetchPayment: json.Decode: %w", err)
	}
	if reply.ID == "" {
		return nil, nil, fmt.Errorf("fetchPayment: reply missing payment id")
	}

	return &reply, buf.Bytes(), nil
}

// toSubunits converts a major-unit amount to the smallest currency unit.
func toSubunits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// fromSubunits converts a smallest-unit amount back to major units.
func fromSubunits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-2)
}

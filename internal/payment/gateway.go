package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/foodles/order-api/pkg/errors"
)

// PaymentDetails is the subset of the gateway's payment object the API
// exposes to clients.
type PaymentDetails struct {
	ID         string  `json:"id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Method     string  `json:"method"`
	Status     string  `json:"status"`
	CapturedAt int64   `json:"captured_at"`
}

// Captured reports whether the gateway considers the payment settled.
func (p PaymentDetails) Captured() bool {
	return p.Status == "captured" || p.Status == "authorized"
}

// Gateway fetches payment state from the payment provider.
type Gateway interface {
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
}

// RazorpayGateway talks to the Razorpay REST API with basic auth.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	url := fmt.Sprintf("%s/payments/%s", g.baseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFound("payment", fmt.Errorf("gateway has no payment %s", paymentID))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for payment %s", resp.StatusCode, paymentID)
	}

	var raw struct {
		ID         string `json:"id"`
		Amount     int64  `json:"amount"`
		Currency   string `json:"currency"`
		Method     string `json:"method"`
		Status     string `json:"status"`
		CapturedAt int64  `json:"captured_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return &PaymentDetails{
		ID:         raw.ID,
		Amount:     float64(raw.Amount) / 100, // gateway reports paise
		Currency:   raw.Currency,
		Method:     raw.Method,
		Status:     raw.Status,
		CapturedAt: raw.CapturedAt,
	}, nil
}

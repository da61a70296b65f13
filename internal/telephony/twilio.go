package telephony

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodles/order-api/internal/config"
	"github.com/foodles/order-api/pkg/circuitbreaker"
	"github.com/foodles/order-api/pkg/errors"
)

// Caller places a short outbound "missed call" ping to a vendor. The call
// rings and disconnects; it is a notification, not a conversation.
type Caller interface {
	PlaceCall(ctx context.Context, restaurantID, phone string) error
}

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioCaller drives the Twilio Calls REST endpoint with per-restaurant
// credentials.
type TwilioCaller struct {
	creds       map[string]config.TwilioCredentials
	ringTimeout time.Duration
	rejectURL   string
	baseURL     string
	client      *http.Client
	cb          *circuitbreaker.CircuitBreaker
	logger      *zerolog.Logger
}

func NewTwilioCaller(cfg config.TelephonyConfig, logger *zerolog.Logger) *TwilioCaller {
	return &TwilioCaller{
		creds:       cfg.Credentials,
		ringTimeout: cfg.RingTimeout,
		rejectURL:   cfg.RejectURL,
		baseURL:     twilioAPIBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "twilio",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		logger: logger,
	}
}

// WithBaseURL overrides the Twilio endpoint, used by tests.
func (t *TwilioCaller) WithBaseURL(base string) *TwilioCaller {
	t.baseURL = base
	return t
}

func (t *TwilioCaller) PlaceCall(ctx context.Context, restaurantID, phone string) error {
	to := Canonical(phone)
	if to == "" {
		return errors.BadRequest("invalid vendor phone number", nil)
	}

	creds, ok := t.creds[restaurantID]
	if !ok {
		return errors.NewNotConfigured("telephony for restaurant " + restaurantID)
	}

	form := url.Values{}
	form.Set("Url", t.rejectURL)
	form.Set("From", creds.PhoneNumber)
	form.Set("To", to)
	form.Set("Timeout", strconv.Itoa(int(t.ringTimeout.Seconds())))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", t.baseURL, creds.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.AccountSID, creds.AuthToken)

	err = t.cb.Execute(func() error {
		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("call request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("provider rejected call (status %d): %s", resp.StatusCode, body)
		}
		return nil
	})
	if err != nil {
		return err
	}

	t.logger.Info().
		Str("restaurant_id", restaurantID).
		Str("to", to).
		Msg("missed call placed")
	return nil
}

package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodles/order-api/internal/config"
	"github.com/foodles/order-api/pkg/errors"
)

func newTestCaller(t *testing.T, handler http.HandlerFunc) *TwilioCaller {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	return NewTwilioCaller(config.TelephonyConfig{
		RingTimeout: 15 * time.Second,
		RejectURL:   "http://twimlets.com/reject",
		Credentials: map[string]config.TwilioCredentials{
			"1": {AccountSID: "AC123", AuthToken: "token", PhoneNumber: "+12025550100"},
		},
	}, &logger).WithBaseURL(srv.URL)
}

func TestPlaceCall(t *testing.T) {
	var gotForm map[string]string
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":      r.PostForm.Get("To"),
			"From":    r.PostForm.Get("From"),
			"Timeout": r.PostForm.Get("Timeout"),
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA1","status":"queued"}`))
	})

	err := caller.PlaceCall(context.Background(), "1", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", gotForm["To"])
	assert.Equal(t, "+12025550100", gotForm["From"])
	assert.Equal(t, "15", gotForm["Timeout"])
}

func TestPlaceCallProviderRejection(t *testing.T) {
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"invalid To number"}`))
	})

	err := caller.PlaceCall(context.Background(), "1", "9876543210")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "provider rejected call")
}

func TestPlaceCallUnconfiguredRestaurant(t *testing.T) {
	called := false
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	err := caller.PlaceCall(context.Background(), "99", "9876543210")
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrNotConfigured, appErr.Code)
	assert.False(t, called, "no call must be attempted without credentials")
}

func TestPlaceCallInvalidNumber(t *testing.T) {
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be contacted for an empty number")
	})

	err := caller.PlaceCall(context.Background(), "1", "---")
	assert.Error(t, err)
}

package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodles/order-api/internal/payment"
	"github.com/foodles/order-api/internal/service/notification"
	"github.com/foodles/order-api/pkg/errors"
)

const testSecret = "test-key-secret"

type stubSender struct{}

func (stubSender) Send(ctx context.Context, to, subject, body string) error { return nil }

type stubCaller struct{}

func (stubCaller) PlaceCall(ctx context.Context, restaurantID, phone string) error { return nil }

type stubGateway struct {
	details *payment.PaymentDetails
	err     error
}

func (g stubGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.PaymentDetails, error) {
	return g.details, g.err
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestRouter(t *testing.T, gw payment.Gateway) (*gin.Engine, *notification.SnapshotStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	store := notification.NewSnapshotStore(time.Minute)
	svc := notification.NewService(store, stubSender{}, stubCaller{}, nil, nil, &logger)
	h := NewHandler(payment.NewVerifier(testSecret), gw, svc, &logger)

	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	return r, store
}

func verifyBody(overrides map[string]any) []byte {
	body := map[string]any{
		"razorpayOrderId":   "rzp_order_1",
		"razorpayPaymentId": "rzp_pay_1",
		"signature":         sign("rzp_order_1", "rzp_pay_1"),
		"orderId":           "ORD-1",
		"name":              "Asha",
		"email":             "asha@example.com",
	}
	for k, v := range overrides {
		body[k] = v
	}
	b, _ := json.Marshal(body)
	return b
}

func postVerify(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payment/verify-payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyPayment_ValidSignature(t *testing.T) {
	r, store := newTestRouter(t, stubGateway{})

	w := postVerify(r, verifyBody(nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp verifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.Equal(t, "ORD-1", resp.OrderID)
	assert.False(t, resp.VendorNotified)

	// The fan-out runs in the background and lands in the snapshot store.
	assert.Eventually(t, func() bool {
		return store.Read("ORD-1").EmailsSent == 1
	}, time.Second, 10*time.Millisecond)
}

func TestVerifyPayment_VendorNotifiedFlag(t *testing.T) {
	r, _ := newTestRouter(t, stubGateway{})

	w := postVerify(r, verifyBody(map[string]any{
		"vendorEmail":  "vendor@example.com",
		"vendorPhone":  "9876543210",
		"restaurantId": "1",
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp verifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.True(t, resp.VendorNotified)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	r, store := newTestRouter(t, stubGateway{})

	w := postVerify(r, verifyBody(map[string]any{"signature": "deadbeef"}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp verifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Verified)
	assert.Empty(t, resp.OrderID)

	// No fan-out on a failed verification.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, store.Read("ORD-1").EmailsSent)
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t, stubGateway{})

	w := postVerify(r, []byte(`{"orderId":"ORD-1"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyPayment_MalformedOrderDetails(t *testing.T) {
	r, _ := newTestRouter(t, stubGateway{})

	w := postVerify(r, verifyBody(map[string]any{"orderDetails": "{not json"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentStatus_Captured(t *testing.T) {
	r, _ := newTestRouter(t, stubGateway{
		details: &payment.PaymentDetails{ID: "rzp_pay_1", Status: "captured", Amount: 450},
	})

	req := httptest.NewRequest(http.MethodGet, "/payment/status/rzp_pay_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"captured"`)
}

func TestPaymentStatus_NotCaptured(t *testing.T) {
	r, _ := newTestRouter(t, stubGateway{
		details: &payment.PaymentDetails{ID: "rzp_pay_1", Status: "created"},
	})

	req := httptest.NewRequest(http.MethodGet, "/payment/status/rzp_pay_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
}

func TestPaymentStatus_GatewayNotFound(t *testing.T) {
	r, _ := newTestRouter(t, stubGateway{
		err: errors.NewNotFound("payment", nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/payment/status/rzp_missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPayment_DuplicateOrderSingleFanout(t *testing.T) {
	r, store := newTestRouter(t, stubGateway{})

	body := verifyBody(nil)
	for i := 0; i < 3; i++ {
		w := postVerify(r, body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Eventually(t, func() bool {
		return store.Read("ORD-1").EmailsSent == 1
	}, time.Second, 10*time.Millisecond)

	// Later reads keep observing the single completed fan-out.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, store.Read("ORD-1").EmailsSent)
}

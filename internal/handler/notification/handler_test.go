package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodles/order-api/internal/model"
	"github.com/foodles/order-api/internal/service/notification"
)

func newTestRouter(store *notification.SnapshotStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store).RegisterRoutes(r.Group(""))
	return r
}

func getStatus(r *gin.Engine, orderID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/email-status/"+orderID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEmailStatus_UnknownOrderReadsZero(t *testing.T) {
	r := newTestRouter(notification.NewSnapshotStore(time.Minute))

	w := getStatus(r, "nope")

	require.Equal(t, http.StatusOK, w.Code)

	var outcome model.NotificationOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, 0, outcome.EmailsSent)
	assert.Empty(t, outcome.EmailErrors)
	assert.Empty(t, outcome.MissedCallStatus)
}

func TestEmailStatus_CompletedOrder(t *testing.T) {
	store := notification.NewSnapshotStore(time.Minute)
	started, _ := store.Begin("ORD-9")
	require.True(t, started)
	store.Complete("ORD-9", model.NotificationOutcome{
		EmailsSent:       2,
		EmailErrors:      []model.ChannelError{},
		MissedCallStatus: model.CallStatusSuccess,
	})

	w := getStatus(newTestRouter(store), "ORD-9")

	require.Equal(t, http.StatusOK, w.Code)

	var outcome model.NotificationOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, 2, outcome.EmailsSent)
	assert.Equal(t, model.CallStatusSuccess, outcome.MissedCallStatus)
}

func TestEmailStatus_ErrorPayloadShape(t *testing.T) {
	store := notification.NewSnapshotStore(time.Minute)
	store.Begin("ORD-8")
	store.Complete("ORD-8", model.NotificationOutcome{
		EmailsSent: 1,
		EmailErrors: []model.ChannelError{
			{Channel: model.ChannelVendorEmail, Message: "mailbox unavailable"},
		},
	})

	w := getStatus(newTestRouter(store), "ORD-8")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"vendor"`)
	assert.Contains(t, w.Body.String(), `"error":"mailbox unavailable"`)
	assert.NotContains(t, w.Body.String(), "missedCallStatus")
}

package restaurant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodles/order-api/internal/model"
)

func TestGetStatusMessages(t *testing.T) {
	svc := NewService(FlagFunc(func(id string) bool { return id == "1" }), time.Second, nil)

	open := svc.GetStatus("1")
	assert.True(t, open.IsOpen)
	assert.Equal(t, model.StatusMessageOpen, open.Message)
	assert.False(t, open.LastChecked.IsZero())

	closed := svc.GetStatus("2")
	assert.False(t, closed.IsOpen)
	assert.Equal(t, model.StatusMessageClosed, closed.Message)
}

func TestGetAllStatusesServesFromCache(t *testing.T) {
	samples := 0
	svc := NewService(FlagFunc(func(string) bool {
		samples++
		return true
	}), time.Minute, nil)

	ids := []string{"1", "2", "3"}

	first := svc.GetAllStatuses(ids)
	assert.False(t, first.FromCache)
	assert.Equal(t, 3, samples)

	second := svc.GetAllStatuses(ids)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Statuses, second.Statuses, "cached reads return the identical batch")
	assert.Equal(t, 3, samples, "a fresh cache must not re-sample")
	assert.Equal(t, first.NextRefresh, second.NextRefresh)
}

func TestGetAllStatusesRefreshesAfterWindow(t *testing.T) {
	open := true
	svc := NewService(FlagFunc(func(string) bool { return open }), 20*time.Millisecond, nil)

	ids := []string{"1"}
	first := svc.GetAllStatuses(ids)
	require.True(t, first.Statuses["1"].IsOpen)

	open = false
	time.Sleep(40 * time.Millisecond)

	refreshed := svc.GetAllStatuses(ids)
	assert.False(t, refreshed.FromCache)
	assert.False(t, refreshed.Statuses["1"].IsOpen, "stale batch must be re-sampled")
}

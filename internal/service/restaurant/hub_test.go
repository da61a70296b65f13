package restaurant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodles/order-api/internal/model"
)

func receive(t *testing.T, sub *Subscriber) Message {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHubSubscriberGetsSnapshotFirst(t *testing.T) {
	hub := NewHub(nil)

	snapshot := Message{
		Type: MessageSnapshot,
		Statuses: map[string]model.RestaurantStatus{
			"1": {ID: "1", IsOpen: true, Message: model.StatusMessageOpen},
		},
	}
	sub := hub.Subscribe(snapshot)
	defer hub.Unsubscribe(sub)

	msg := receive(t, sub)
	assert.Equal(t, MessageSnapshot, msg.Type)
	require.Contains(t, msg.Statuses, "1")
	assert.True(t, msg.Statuses["1"].IsOpen)
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(nil)

	a := hub.Subscribe(Message{Type: MessageSnapshot})
	b := hub.Subscribe(Message{Type: MessageSnapshot})
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	receive(t, a)
	receive(t, b)

	hub.Broadcast(Message{Type: MessageChanges, Changes: []model.StatusChange{{ID: "1", IsOpen: true}}})

	for _, sub := range []*Subscriber{a, b} {
		msg := receive(t, sub)
		assert.Equal(t, MessageChanges, msg.Type)
		require.Len(t, msg.Changes, 1)
	}
}

func TestHubSkipsClosedSubscribers(t *testing.T) {
	hub := NewHub(nil)

	alive := hub.Subscribe(Message{Type: MessageSnapshot})
	dead := hub.Subscribe(Message{Type: MessageSnapshot})
	defer hub.Unsubscribe(alive)
	defer hub.Unsubscribe(dead)

	receive(t, alive)
	receive(t, dead)

	dead.Close()
	hub.Broadcast(Message{Type: MessageChanges})

	receive(t, alive)
	select {
	case msg := <-dead.C():
		t.Fatalf("closed subscriber received %v", msg)
	default:
	}

	// Closed but not unsubscribed: still a member of the set.
	assert.Equal(t, 2, hub.Len())
}

func TestHubUnsubscribeRemoves(t *testing.T) {
	hub := NewHub(nil)

	sub := hub.Subscribe(Message{Type: MessageSnapshot})
	assert.Equal(t, 1, hub.Len())

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Len())

	// Idempotent.
	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Len())
}

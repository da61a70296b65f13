package notification

import (
	"sync"
	"time"

	"github.com/foodles/order-api/internal/model"
)

type orderState int

const (
	stateInProgress orderState = iota + 1
	stateCompleted
)

type entry struct {
	state   orderState
	outcome model.NotificationOutcome
	evict   *time.Timer
}

// SnapshotStore is the process-wide map from order ID to notification
// outcome. It also carries the orchestrator's de-duplication state: an order
// is claimed before its channels run and completed entries self-evict after
// the retention window.
type SnapshotStore struct {
	mu        sync.Mutex
	entries   map[string]*entry
	retention time.Duration
}

func NewSnapshotStore(retention time.Duration) *SnapshotStore {
	return &SnapshotStore{
		entries:   make(map[string]*entry),
		retention: retention,
	}
}

// Begin claims an order for orchestration. It returns true when the caller
// owns the fan-out for this order; false means a previous invocation is in
// flight or completed, and the returned outcome is that invocation's current
// snapshot.
func (s *SnapshotStore) Begin(orderID string) (bool, model.NotificationOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[orderID]; ok {
		return false, normalized(e.outcome)
	}

	s.entries[orderID] = &entry{state: stateInProgress}
	return true, model.NotificationOutcome{}
}

// Complete records the final outcome and schedules eviction.
func (s *SnapshotStore) Complete(orderID string, outcome model.NotificationOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[orderID]
	if !ok {
		e = &entry{}
		s.entries[orderID] = e
	}
	e.state = stateCompleted
	e.outcome = outcome

	if e.evict == nil {
		e.evict = time.AfterFunc(s.retention, func() {
			s.mu.Lock()
			delete(s.entries, orderID)
			s.mu.Unlock()
		})
	}
}

// Read returns the recorded outcome for an order, or the zero default when
// the order is unknown or already evicted. Callers poll optimistically, so a
// missing entry is not an error.
func (s *SnapshotStore) Read(orderID string) model.NotificationOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[orderID]; ok {
		return normalized(e.outcome)
	}
	return normalized(model.NotificationOutcome{})
}

func normalized(o model.NotificationOutcome) model.NotificationOutcome {
	if o.EmailErrors == nil {
		o.EmailErrors = []model.ChannelError{}
	}
	return o
}

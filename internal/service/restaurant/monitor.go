package restaurant

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodles/order-api/internal/model"
	"github.com/foodles/order-api/pkg/messaging"
	"github.com/foodles/order-api/pkg/metrics"
)

// Monitor re-samples the tracked restaurant set on a fixed period and
// broadcasts a batch of changes whenever at least one flag flipped.
type Monitor struct {
	flags    FlagSource
	ids      []string
	interval time.Duration
	hub      *Hub
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   *zerolog.Logger

	mu       sync.Mutex
	observed map[string]model.RestaurantStatus
}

func NewMonitor(flags FlagSource, ids []string, interval time.Duration, hub *Hub, broker messaging.Broker, m *metrics.Metrics, logger *zerolog.Logger) *Monitor {
	return &Monitor{
		flags:    flags,
		ids:      ids,
		interval: interval,
		hub:      hub,
		broker:   broker,
		metrics:  m,
		logger:   logger,
		observed: make(map[string]model.RestaurantStatus, len(ids)),
	}
}

// Start runs the sampling loop until the context is cancelled. The first
// tick establishes the baseline without emitting change events.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info().Strs("restaurants", m.ids).Dur("interval", m.interval).Msg("starting status monitor")

	m.tick(time.Now())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("shutting down status monitor")
			return
		case now := <-ticker.C:
			changes := m.tick(now)
			if len(changes) > 0 {
				m.emit(ctx, changes)
			}
		}
	}
}

// Snapshot returns the last-observed status of every tracked restaurant,
// used as the one-time message for new subscribers.
func (m *Monitor) Snapshot() map[string]model.RestaurantStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]model.RestaurantStatus, len(m.observed))
	for id, status := range m.observed {
		out[id] = status
	}
	return out
}

func (m *Monitor) tick(now time.Time) []model.StatusChange {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changes []model.StatusChange
	for _, id := range m.ids {
		open := m.flags.IsOpen(id)

		prev, seen := m.observed[id]
		if seen && prev.IsOpen != open {
			changes = append(changes, model.StatusChange{
				ID:        id,
				WasOpen:   prev.IsOpen,
				IsOpen:    open,
				Timestamp: now,
			})
		}

		message := model.StatusMessageClosed
		if open {
			message = model.StatusMessageOpen
		}
		m.observed[id] = model.RestaurantStatus{
			ID:          id,
			IsOpen:      open,
			Message:     message,
			LastChecked: now,
		}
	}
	return changes
}

func (m *Monitor) emit(ctx context.Context, changes []model.StatusChange) {
	for _, change := range changes {
		m.logger.Info().
			Str("restaurant_id", change.ID).
			Bool("is_open", change.IsOpen).
			Msg("restaurant status changed")
	}
	if m.metrics != nil {
		m.metrics.StatusChangesEmitted.Add(float64(len(changes)))
	}

	m.hub.Broadcast(Message{Type: MessageChanges, Changes: changes})

	if m.broker != nil {
		if err := m.broker.Publish(ctx, messaging.ChannelRestaurantStatus, changes); err != nil {
			m.logger.Warn().Err(err).Msg("failed to publish status changes")
		}
	}
}

package restaurant

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/foodles/order-api/internal/model"
	"github.com/foodles/order-api/pkg/metrics"
)

const batchCacheKey = "status_batch"

// Service answers open/closed queries for restaurants. Batch reads are
// served from a shared cache for the freshness window; the whole batch is
// re-sampled together once the window elapses.
type Service struct {
	flags     FlagSource
	freshness time.Duration
	cache     *gocache.Cache
	metrics   *metrics.Metrics

	mu          sync.Mutex
	lastRefresh time.Time
}

func NewService(flags FlagSource, freshness time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		flags:     flags,
		freshness: freshness,
		cache:     gocache.New(freshness, 2*freshness),
		metrics:   m,
	}
}

// GetStatus samples one restaurant directly, bypassing the batch cache.
func (s *Service) GetStatus(id string) model.RestaurantStatus {
	return s.sample(id, time.Now())
}

// GetAllStatuses returns the cached batch when it is still fresh, otherwise
// re-samples every requested restaurant and overwrites the batch.
func (s *Service) GetAllStatuses(ids []string) model.StatusBatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, found := s.cache.Get(batchCacheKey); found {
		if s.metrics != nil {
			s.metrics.StatusCacheHits.Inc()
		}
		return model.StatusBatch{
			Statuses:    cached.(map[string]model.RestaurantStatus),
			FromCache:   true,
			NextRefresh: s.lastRefresh.Add(s.freshness),
		}
	}

	now := time.Now()
	statuses := make(map[string]model.RestaurantStatus, len(ids))
	for _, id := range ids {
		statuses[id] = s.sample(id, now)
	}

	s.cache.Set(batchCacheKey, statuses, s.freshness)
	s.lastRefresh = now
	if s.metrics != nil {
		s.metrics.StatusCacheMisses.Inc()
	}

	return model.StatusBatch{
		Statuses:    statuses,
		FromCache:   false,
		NextRefresh: now.Add(s.freshness),
	}
}

func (s *Service) sample(id string, at time.Time) model.RestaurantStatus {
	open := s.flags.IsOpen(id)
	message := model.StatusMessageClosed
	if open {
		message = model.StatusMessageOpen
	}
	return model.RestaurantStatus{
		ID:          id,
		IsOpen:      open,
		Message:     message,
		LastChecked: at,
	}
}

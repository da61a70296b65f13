package model

import "time"

// Restaurant status messages shown to clients.
const (
	StatusMessageOpen   = "Open"
	StatusMessageClosed = "Temporarily Closed"
)

// RestaurantStatus is one sampled open/closed entry.
type RestaurantStatus struct {
	ID          string    `json:"id"`
	IsOpen      bool      `json:"isOpen"`
	Message     string    `json:"message"`
	LastChecked time.Time `json:"lastChecked"`
}

// StatusBatch is the cache-backed answer to a multi-restaurant read.
type StatusBatch struct {
	Statuses    map[string]RestaurantStatus `json:"statuses"`
	FromCache   bool                        `json:"isFromCache"`
	NextRefresh time.Time                   `json:"nextRefresh"`
}

// StatusChange is a single open/closed transition. It exists only on the
// wire to subscribers.
type StatusChange struct {
	ID        string    `json:"id"`
	WasOpen   bool      `json:"wasOpen"`
	IsOpen    bool      `json:"isOpen"`
	Timestamp time.Time `json:"timestamp"`
}

package storage

import (
	"sort"
	"sync"
	"time"
)

// Sink health states
const (
	StatusHealthy = "healthy"
	StatusFailing = "failing"
)

// SinkHealth is the outcome of a sink's most recent write
type SinkHealth struct {
	Sink      string    `json:"sink"`
	Status    string    `json:"status"`
	LastWrite time.Time `json:"last_write"`
	Run       string    `json:"run,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// HealthManager tracks sink health in memory
type HealthManager struct {
	mu     sync.RWMutex
	health map[string]SinkHealth
}

// NewHealthManager creates a new health manager
func NewHealthManager() *HealthManager {
	return &HealthManager{
		health: make(map[string]SinkHealth),
	}
}

// Record stores the outcome of writing run to the named sink
func (hm *HealthManager) Record(sink string, run Run, err error) {
	h := SinkHealth{
		Sink:      sink,
		Status:    StatusHealthy,
		LastWrite: time.Now().UTC(),
		Run:       run.Name(),
	}
	if err != nil {
		h.Status = StatusFailing
		h.Error = err.Error()
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.health[sink] = h
}

// GetHealth retrieves the health of one sink
func (hm *HealthManager) GetHealth(sink string) (SinkHealth, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	h, ok := hm.health[sink]
	return h, ok
}

// GetAllHealth returns every recorded sink, sorted by name
func (hm *HealthManager) GetAllHealth() []SinkHealth {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	all := make([]SinkHealth, 0, len(hm.health))
	for _, h := range hm.health {
		all = append(all, h)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Sink < all[j].Sink })
	return all
}

// IsHealthy reports whether every recorded sink's last write succeeded
func (hm *HealthManager) IsHealthy() bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	for _, h := range hm.health {
		if h.Status != StatusHealthy {
			return false
		}
	}
	return true
}

package utils

import (
	"sync"
	"time"
)

// Throttle enforces a minimum interval between successive calls to Wait.
type Throttle struct {
	interval    time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// NewThrottle creates a Throttle spacing calls at least rateLimitMs apart.
func NewThrottle(rateLimitMs int) *Throttle {
	return &Throttle{interval: time.Duration(rateLimitMs) * time.Millisecond}
}

// Wait blocks until the interval since the previous call has elapsed.
func (t *Throttle) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lastRequest.IsZero() {
		if elapsed := time.Since(t.lastRequest); elapsed < t.interval {
			time.Sleep(t.interval - elapsed)
		}
	}
	t.lastRequest = time.Now()
}

// IDSet tracks identifiers already seen during a run.
type IDSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if the id was newly added, false if already present.
func (s *IDSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Size returns the number of unique ids tracked.
func (s *IDSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

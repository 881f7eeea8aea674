package engine

import (
	"sync"
	"time"
)

// Throttle lets at most one broadcast through per interval. The clock is
// injectable so gesture timing tests run deterministically.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewThrottle(interval time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		interval: interval,
		now:      now,
	}
}

// Allow reports whether a broadcast may be sent now. The first call always
// passes.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.now()
	if !t.last.IsZero() && current.Sub(t.last) < t.interval {
		return false
	}
	t.last = current
	return true
}

package orchestrator

import (
	"sync"
	"time"
)

// Breaker is a consecutive-failure circuit breaker guarding run attempts.
// After threshold consecutive failures it opens and rejects attempts until
// the recovery timeout elapses; the next success closes it fully.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	recovery  time.Duration

	failures int
	open     bool
	openedAt time.Time
}

// NewBreaker builds a breaker. A threshold of zero disables it.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	return &Breaker{threshold: threshold, recovery: recovery}
}

// Allow reports whether a run attempt may proceed. Once the recovery timeout
// has elapsed the breaker admits a probe attempt; the probe's outcome decides
// whether it closes.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.threshold <= 0 || !b.open {
		return true
	}
	return time.Since(b.openedAt) >= b.recovery
}

// RecordSuccess closes the breaker and clears the failure streak.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}

// RecordFailure extends the failure streak and opens the breaker at the
// threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.threshold > 0 && b.failures >= b.threshold {
		b.open = true
		b.openedAt = time.Now()
	}
}

// Open reports the current breaker state.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && time.Since(b.openedAt) < b.recovery
}

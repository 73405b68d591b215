package sources

import (
	"sync"
	"time"
)

// throttle enforces a minimum delay between outbound requests. A 429
// from the upstream grows the delay for every subsequent call in the
// process, so a rate-limited adapter backs off persistently rather
// than hammering the service again after its retry budget.
type throttle struct {
	mu          sync.Mutex
	delay       time.Duration
	lastRequest time.Time
}

func newThrottle(delay time.Duration) *throttle {
	return &throttle{delay: delay}
}

// Wait blocks until the inter-request delay has elapsed since the
// previous call, then stamps the current request.
func (t *throttle) Wait() {
	t.mu.Lock()
	delay := t.delay
	last := t.lastRequest
	t.mu.Unlock()

	if !last.IsZero() {
		if elapsed := time.Since(last); elapsed < delay {
			time.Sleep(delay - elapsed)
		}
	}

	t.mu.Lock()
	t.lastRequest = time.Now()
	t.mu.Unlock()
}

// Penalize multiplies the inter-request delay, capped at one minute.
func (t *throttle) Penalize(factor float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = time.Duration(float64(t.delay) * factor)
	if t.delay > time.Minute {
		t.delay = time.Minute
	}
}

// Delay returns the current inter-request delay.
func (t *throttle) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

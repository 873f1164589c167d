package quota

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedIPs bounds the limiter map; when exceeded the map is reset,
// which briefly re-admits throttled callers rather than growing unbounded.
const maxTrackedIPs = 10000

// DemoLimiter throttles unauthenticated demo searches per client IP: one
// search per window.
type DemoLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	limiters map[string]*rate.Limiter
}

// NewDemoLimiter creates a per-IP limiter with the given window
func NewDemoLimiter(window time.Duration) *DemoLimiter {
	return &DemoLimiter{
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the given IP may run a demo search now
func (d *DemoLimiter) Allow(ip string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.limiters) >= maxTrackedIPs {
		d.limiters = make(map[string]*rate.Limiter)
	}

	l, ok := d.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Every(d.window), 1)
		d.limiters[ip] = l
	}
	return l.Allow()
}

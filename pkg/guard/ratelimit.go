package guard

import (
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter is an in-process, per-host token-bucket rate limiter for
// outbound hosts. It is separate from Evaluator: NetGuard does not consult
// it.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.rps, h.burst)
		h.limiters[host] = l
	}
	return l
}

// Allow reports whether a call to host is permitted right now, consuming a
// token if so.
func (h *HostLimiter) Allow(host string) bool {
	return h.limiterFor(host).Allow()
}

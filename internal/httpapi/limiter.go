package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterEntryTTL      = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// keyedLimiter applies an independent token bucket per client key. Idle
// entries are swept lazily on access.
type keyedLimiter struct {
	rps   float64
	burst int

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	if burst <= 0 {
		burst = max(1, int(rps))
	}
	return &keyedLimiter{
		rps:     rps,
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) > limiterSweepInterval {
		for key, e := range k.entries {
			if now.Sub(e.lastAccess) > limiterEntryTTL {
				delete(k.entries, key)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(k.rps), k.burst)}
		k.entries[key] = e
	}
	e.lastAccess = now
	return e.limiter.AllowN(now, 1)
}

package server

import (
	"math"
	"sync"
	"time"
)

// rateLimiter throttles a session's inbound chat messages. It is a token
// bucket expressed as a fill level: burst messages are admitted back to back,
// then the level refills continuously at burst per refill interval.
type rateLimiter struct {
	mu       sync.Mutex
	capacity float64
	perSec   float64
	level    float64
	updated  time.Time
}

func newRateLimiter(burst int, interval time.Duration) *rateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	full := float64(burst)
	return &rateLimiter{
		capacity: full,
		perSec:   full / interval.Seconds(),
		level:    full,
		updated:  time.Now(),
	}
}

// allow reports whether one more message fits under the limit, consuming a
// token when it does.
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.level = math.Min(rl.capacity, rl.level+now.Sub(rl.updated).Seconds()*rl.perSec)
	rl.updated = now

	if rl.level < 1 {
		return false
	}
	rl.level--
	return true
}

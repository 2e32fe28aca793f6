package utils

import (
	"sync"
	"time"
)

// Cooldowns is a fixed-window rate limit of one use per period per key.
type Cooldowns struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{until: map[string]time.Time{}, now: time.Now}
}

// Take marks key as used for period. If key is still cooling down it returns
// the time left and false.
func (c *Cooldowns) Take(key string, period time.Duration) (time.Duration, bool) {
	if period <= 0 {
		return 0, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if until, ok := c.until[key]; ok && now.Before(until) {
		return until.Sub(now), false
	}

	c.until[key] = now.Add(period)
	c.sweep(now)

	return 0, true
}

func (c *Cooldowns) sweep(now time.Time) {
	if len(c.until) < 1024 {
		return
	}

	for k, until := range c.until {
		if !now.Before(until) {
			delete(c.until, k)
		}
	}
}

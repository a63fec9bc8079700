package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string           // reference for cleanup
	parent     *UserRateLimiter // reference to parent for cleanup
}

// UserRateLimiter manages rate limiting for multiple identities (IPs, tokens)
type UserRateLimiter struct {
	limiters       map[string]*RateLimiter
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a new UserRateLimiter instance
func New(rate float64, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*RateLimiter),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

// Rps10 allows bursts of 10 and refills 10 tokens per second
func Rps10() *UserRateLimiter {
	return New(10, 10, time.Hour)
}

// Rps100 allows bursts of 100 and refills 100 tokens per second
func Rps100() *UserRateLimiter {
	return New(100, 100, time.Hour)
}

// OnceInSecond allows a single request per second per identity
func OnceInSecond() *UserRateLimiter {
	return New(1, 1, time.Hour)
}

// cleanup removes a specific limiter
func (url *UserRateLimiter) cleanup(identity string) {
	url.mu.Lock()
	delete(url.limiters, identity)
	url.mu.Unlock()
}

// resetTimer resets the expiration timer for a limiter
func (rl *RateLimiter) resetTimer() {
	if rl.timer != nil {
		rl.timer.Stop()
	}

	rl.timer = time.AfterFunc(rl.parent.expirationTime, func() {
		rl.parent.cleanup(rl.identity)
	})
}

// getLimiter gets or creates a rate limiter for an identity
func (url *UserRateLimiter) getLimiter(identity string) *RateLimiter {
	url.mu.RLock()
	limiter, exists := url.limiters[identity]
	url.mu.RUnlock()

	if exists {
		limiter.resetTimer()
		return limiter
	}

	url.mu.Lock()
	defer url.mu.Unlock()
	// re-check: another goroutine may have created it between the locks
	if limiter, exists = url.limiters[identity]; exists {
		limiter.resetTimer()
		return limiter
	}

	limiter = &RateLimiter{
		tokens:     url.capacity,
		capacity:   url.capacity,
		rate:       url.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     url,
	}
	limiter.resetTimer()
	url.limiters[identity] = limiter
	return limiter
}

// Allow reports whether a request for the identity fits the budget and
// consumes a token when it does.
func (url *UserRateLimiter) Allow(identity string) bool {
	return url.getLimiter(identity).allow()
}

func (rl *RateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

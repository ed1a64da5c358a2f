package middleware

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "postureguard/internal/errors"
)

// RateLimiter is a per-user sliding-window rate limiter. State lives in
// process memory and is not shared across instances, so it is only correct
// for single-instance deployments.
type RateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string][]time.Time
}

// NewRateLimiter creates a limiter allowing max requests per window per key.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:    max,
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

// Allow records a request for key at the given instant. It returns false
// with a retry-after hint when the key has exhausted its window.
func (rl *RateLimiter) Allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)
	recent := rl.hits[key][:0]
	for _, ts := range rl.hits[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	rl.hits[key] = recent

	if len(recent) >= rl.max {
		retryAfter := recent[0].Add(rl.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return false, retryAfter
	}

	rl.hits[key] = append(recent, now)

	// Opportunistic sweep on ~1% of requests so keys whose entire history
	// has aged out do not accumulate forever.
	if rand.Intn(100) == 0 {
		rl.sweepLocked(cutoff)
	}

	return true, 0
}

// sweepLocked drops keys with no timestamps newer than cutoff. Caller must
// hold rl.mu.
func (rl *RateLimiter) sweepLocked(cutoff time.Time) {
	for key, timestamps := range rl.hits {
		stale := true
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(rl.hits, key)
		}
	}
}

// Len returns the number of tracked keys. Intended for tests.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

// RateLimit returns a Gin middleware enforcing the limiter for the
// authenticated user. It must run after RequireAuth; requests without an
// identity pass through untouched.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserIDKey)
		if !exists {
			c.Next()
			return
		}

		ok, retryAfter := rl.Allow(userID.(string), time.Now())
		if !ok {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(apperrors.ErrRateLimited.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrRateLimited.Code,
					"message": apperrors.ErrRateLimited.Message,
				},
				"retryAfter": seconds,
			})
			return
		}

		c.Next()
	}
}

package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a token bucket keyed by caller. Swap building fans out to
// RPC providers, so callers are identified by wallet address when the
// client sends one and by IP otherwise.
type RateLimiter struct {
	mu      sync.Mutex
	rate    int
	burst   int
	buckets map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

func (rl *RateLimiter) callerKey(c *gin.Context) string {
	if wallet := c.GetHeader("X-Wallet-Address"); wallet != "" {
		return wallet
	}
	return c.ClientIP()
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[key] = b
	}

	refill := int(now.Sub(b.last).Seconds()) * rl.rate
	if refill > 0 {
		b.tokens += refill
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.last = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(rl.callerKey(c), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

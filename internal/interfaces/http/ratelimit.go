package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter hands out one token bucket per client key
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func newClientLimiter(r rate.Limit, b int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limiters[key] = limiter
	}
	return limiter
}

// rateLimitByIP rejects clients that exceed rps requests per second.
// burst <= 0 falls back to rps rounded up.
func rateLimitByIP(rps float64, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = int(rps)
		if float64(burst) < rps {
			burst++
		}
	}
	limiter := newClientLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{
				Success: false,
				Error:   "too many requests",
				Code:    CodeRateLimited,
			})
			return
		}
		c.Next()
	}
}

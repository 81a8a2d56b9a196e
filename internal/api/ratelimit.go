package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/response"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore maps a caller key (user or IP) to its token bucket.
// Entries idle longer than staleAfter are dropped during later lookups.
type limiterStore struct {
	mu          sync.Mutex
	entries     map[string]*limiterEntry
	limit       rate.Limit
	burst       int
	staleAfter  time.Duration
	lastCleanup time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		entries:     make(map[string]*limiterEntry),
		limit:       rate.Limit(rps),
		burst:       burst,
		staleAfter:  10 * time.Minute,
		lastCleanup: time.Now(),
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastCleanup) > time.Minute {
		cutoff := now.Add(-s.staleAfter)
		for k, e := range s.entries {
			if e.lastSeen.Before(cutoff) {
				delete(s.entries, k)
			}
		}
		s.lastCleanup = now
	}

	if e, ok := s.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	lim := rate.NewLimiter(s.limit, s.burst)
	s.entries[key] = &limiterEntry{limiter: lim, lastSeen: now}
	return lim
}

// RateLimitMiddleware applies a token bucket per authenticated user, or per client IP
// before authentication. A non-positive rps disables limiting.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if id, ok := auth.CurrentIdentity(c); ok {
			key = "uid:" + id.UserID
		}
		if !store.get(key).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.NewAppError(http.StatusTooManyRequests, "too many requests"))
			return
		}
		c.Next()
	}
}

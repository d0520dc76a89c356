package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/sakif/health-diary/internal/metrics"
)

// RateLimiterConfig sets the per-user token bucket.
type RateLimiterConfig struct {
	PerMinute       int           // sustained requests per minute
	Burst           int           // requests allowed back to back
	CleanupInterval time.Duration // how often idle users are forgotten
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per user id.
//
// Generating a recommendation costs a model call, so that route is limited
// per user. The key is the {user_id} URL parameter: the API has no other
// notion of who is calling.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	ttl    time.Duration
	rec    metrics.Recorder
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop.
// Call Stop when done.
func NewRateLimiter(cfg RateLimiterConfig, rec metrics.Recorder, logger *slog.Logger) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 6
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if rec == nil {
		rec = metrics.Nop{}
	}

	rl := &RateLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    cfg.Burst,
		ttl:      cfg.CleanupInterval * 2,
		rec:      rec,
		logger:   logger,
		now:      time.Now,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop(cfg.CleanupInterval)

	return rl
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the limit with 429 and a {"detail"} body.
// It must be mounted on a route that has a {user_id} parameter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")

		if !rl.allow(userID) {
			route := routePattern(r)
			rl.rec.RecordRateLimited(route)
			rl.logger.Warn("rate limit exceeded",
				slog.String("user_id", userID),
				slog.String("route", route),
			)
			rl.writeRateLimited(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Len is the number of users currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) allow(userID string) bool {
	now := rl.now()

	rl.mu.Lock()
	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = now
	rl.mu.Unlock()

	return ul.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup forgets users idle for longer than twice the cleanup interval.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > rl.ttl {
			delete(rl.limiters, id)
		}
	}
}

// writeRateLimited sends 429 with Retry-After set to the time one token
// takes to refill.
func (rl *RateLimiter) writeRateLimited(w http.ResponseWriter) {
	retryAfter := int(math.Ceil(1.0 / float64(rl.limit)))
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	err := json.NewEncoder(w).Encode(map[string]string{
		"detail": "Too many recommendation requests. Please try again later.",
	})
	if err != nil {
		rl.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

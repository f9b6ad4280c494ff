package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lexcram/recall-api/internal/api/shared"
)

// RateLimiterConfig holds the per-learner rate limits. The review
// endpoints get a generous general limit; card ingestion, which writes
// batches, gets a much tighter one.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit // general API rate, req/sec
	GeneralBurst    int
	IngestRate      rate.Limit // card ingestion rate, req/sec
	IngestBurst     int
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns the default limits: 120 req/min per
// learner for the API in general, 10 req/min for ingestion.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		IngestRate:      rate.Limit(10.0 / 60.0),
		IngestBurst:     10,
		CleanupInterval: 5 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterPool manages one rate.Limiter per learner for a single limit
// class, evicting idle entries.
type limiterPool struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*userLimiter
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*userLimiter),
	}
}

func (p *limiterPool) get(userID string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ul, ok := p.limiters[userID]; ok {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(p.limit, p.burst)
	p.limiters[userID] = &userLimiter{limiter: limiter, lastAccess: time.Now()}
	return limiter
}

func (p *limiterPool) evictIdle(ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for userID, ul := range p.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(p.limiters, userID)
		}
	}
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}

// RateLimiter enforces per-learner rate limits. It must sit after
// Authenticate in the middleware chain, since it keys on the learner ID
// from the request context.
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterPool
	ingest  *limiterPool
	stopCh  chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its background cleanup
// of idle per-learner entries.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterPool(config.GeneralRate, config.GeneralBurst),
		ingest:  newLimiterPool(config.IngestRate, config.IngestBurst),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// General returns the general API rate limit middleware.
func (rl *RateLimiter) General() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general, rl.config.GeneralRate)
}

// Ingest returns the card ingestion rate limit middleware. It operates
// independently of the general limit.
func (rl *RateLimiter) Ingest() func(next http.Handler) http.Handler {
	return rl.middleware(rl.ingest, rl.config.IngestRate)
}

// GeneralLimiterCount reports the tracked general limiter entries, for
// tests.
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.size()
}

func (rl *RateLimiter) middleware(pool *limiterPool, limit rate.Limit) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r)
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !pool.get(userID.String()).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limit)))
				shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
					"Too many requests. Please try again later.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ttl := rl.config.CleanupInterval * 2
			rl.general.evictIdle(ttl)
			rl.ingest.evictIdle(ttl)
		case <-rl.stopCh:
			return
		}
	}
}

// retryAfterSeconds estimates the seconds until one token is refilled.
func retryAfterSeconds(limit rate.Limit) int {
	sec := int(math.Ceil(1.0 / float64(limit)))
	if sec < 1 {
		sec = 1
	}
	return sec
}

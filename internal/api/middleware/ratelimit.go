package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long a client's bucket survives without requests.
const DefaultLimiterIdleTTL = 10 * time.Minute

// RateLimiter applies a token bucket per client IP. Place it after chi's
// RealIP middleware so proxied clients are told apart.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *ttlcache.Cache[string, *rate.Limiter]
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. Buckets idle for longer than idleTTL are evicted once Start runs.
func NewRateLimiter(rps float64, burst int, idleTTL time.Duration) *RateLimiter {
	if idleTTL <= 0 {
		idleTTL = DefaultLimiterIdleTTL
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: ttlcache.New[string, *rate.Limiter](ttlcache.WithTTL[string, *rate.Limiter](idleTTL)),
	}
}

// Start runs the eviction loop until Stop is called. It blocks.
func (l *RateLimiter) Start() { l.limiters.Start() }

// Stop ends the eviction loop.
func (l *RateLimiter) Stop() { l.limiters.Stop() }

// Limit is the chi-compatible middleware.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.limiterFor(clientIP(r))
		if !limiter.Allow() {
			retryAfter := time.Second
			if l.limit > 0 {
				retryAfter = time.Duration(float64(time.Second) / float64(l.limit))
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retryAfter.Round(time.Second).Seconds()))))
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterFor returns ip's bucket, creating it on first sight. Get also
// refreshes the bucket's idle TTL.
func (l *RateLimiter) limiterFor(ip string) *rate.Limiter {
	if item := l.limiters.Get(ip); item != nil {
		return item.Value()
	}
	// Concurrent first requests from one IP race here; GetOrSet keeps the
	// bucket stored first.
	item, _ := l.limiters.GetOrSet(ip, rate.NewLimiter(l.limit, l.burst))
	return item.Value()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

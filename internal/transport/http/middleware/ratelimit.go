package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"payrun/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

// minClientIdle bounds how long an idle client bucket is kept.
const minClientIdle = time.Minute

// rateLimiter keeps one token bucket per client key. Buckets idle for
// longer than idle have refilled and are dropped on the next sweep.
type rateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	keyFn     RateLimitKeyFunc
	clients   map[string]*rateClient
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// RateLimit allows perSecond requests per client with bursts of up to
// burst. A non-positive perSecond disables limiting.
func RateLimit(perSecond float64, burst int, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(perSecond, burst, actorOrIPKey)
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MutationRateLimit applies RateLimit to POST, PUT, PATCH and DELETE only.
func MutationRateLimit(perSecond float64, burst int, opts ...RateLimitOption) func(http.Handler) http.Handler {
	limited := RateLimit(perSecond, burst, opts...)
	return func(next http.Handler) http.Handler {
		guarded := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				guarded.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func newRateLimiter(perSecond float64, burst int, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	if burst < 1 {
		burst = 1
	}
	idle := minClientIdle
	if perSecond > 0 {
		refill := time.Duration(float64(burst) / perSecond * float64(time.Second))
		idle = max(idle, refill)
	}
	return &rateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		keyFn:   keyFn,
		clients: map[string]*rateClient{},
		idle:    idle,
		now:     time.Now,
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweep(now)
	}
	client, ok := rl.clients[key]
	if !ok {
		client = &rateClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter
}

// sweep drops buckets not used within the idle window. Caller holds mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > rl.idle {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	limiter := rl.limiter(key)
	reservation := limiter.Reserve()
	delay := reservation.Delay()

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(limiter.Tokens()), 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(delay).Unix(), 10))

	if delay > 0 {
		reservation.Cancel()
		retryAfter := int(math.Ceil(delay.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
		slog.Warn("rate limit exceeded",
			"key", key,
			"path", r.URL.Path,
			"method", r.Method,
			"perSecond", float64(rl.limit),
			"burst", rl.burst,
		)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if value := strings.TrimSpace(parts[0]); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

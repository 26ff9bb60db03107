package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterMaxSlots = 10000
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client IP.
type IPRateLimiter struct {
	mu  sync.Mutex
	ips map[string]*ipLimiter
	r   rate.Limit
	b   int
	now func() time.Time
	log *zap.Logger
}

func NewIPRateLimiter(r rate.Limit, b int, log *zap.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipLimiter),
		r:   r,
		b:   b,
		now: time.Now,
		log: log,
	}
}

// Allow reports whether a request from ip fits into its bucket.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.ips[ip]
	if !ok {
		if len(l.ips) >= limiterMaxSlots {
			l.pruneLocked(now)
		}
		entry = &ipLimiter{limiter: rate.NewLimiter(l.r, l.b)}
		l.ips[ip] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// pruneLocked drops buckets idle for longer than limiterIdleTTL.
func (l *IPRateLimiter) pruneLocked(now time.Time) {
	before := len(l.ips)
	for ip, entry := range l.ips {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.ips, ip)
		}
	}
	l.log.Debug("pruned rate limiter buckets", zap.Int("before", before), zap.Int("after", len(l.ips)))
}

// Middleware rejects requests over the limit with 429. Buckets are keyed by
// the connection address; forwarding headers are client controlled.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(remoteHost(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

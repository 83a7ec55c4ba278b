package admin

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// An idle client's limiter is forgotten after this long.
	limiterIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

// budget names a class of admin traffic and its per-client allowance.
type budget struct {
	name  string
	match func(method, path string) bool
	rps   rate.Limit
	burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware enforces per-client budgets on the admin API. The
// retry budget is deliberately tiny: each retry can move real money.
type RateLimitMiddleware struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter // "budget|ip"
	budgets []budget
	logger  *slog.Logger
	nowFunc func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimitMiddleware(logger *slog.Logger) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		clients: make(map[string]*clientLimiter),
		logger:  logger,
		nowFunc: time.Now,
		stopCh:  make(chan struct{}),
		budgets: []budget{
			{
				name: "settlement_mutate",
				match: func(method, path string) bool {
					return method == http.MethodPost && strings.HasPrefix(path, "/admin/v1/settlements")
				},
				rps:   rate.Limit(1.0 / 60), // one retry per minute
				burst: 1,
			},
			{
				name: "read",
				match: func(method, path string) bool {
					return method == http.MethodGet && strings.HasPrefix(path, "/admin/v1/")
				},
				rps:   rate.Limit(30.0 / 60),
				burst: 10,
			},
			{
				name:  "default",
				match: func(string, string) bool { return true },
				rps:   1,
				burst: 5,
			},
		},
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Wrap applies the budgets in front of next.
func (rl *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		b := rl.pickBudget(r.Method, r.URL.Path)

		if !rl.limiterFor(b, ip).Allow() {
			w.Header().Set("Retry-After", "60")
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			rl.logger.Warn("admin API rate limit exceeded",
				"budget", b.name,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", ip,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) pickBudget(method, path string) budget {
	for _, b := range rl.budgets {
		if b.match(method, path) {
			return b
		}
	}
	return rl.budgets[len(rl.budgets)-1]
}

func (rl *RateLimitMiddleware) limiterFor(b budget, ip string) *rate.Limiter {
	key := b.name + "|" + ip

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.clients[key]; ok {
		cl.lastSeen = rl.nowFunc()
		return cl.limiter
	}
	cl := &clientLimiter{
		limiter:  rate.NewLimiter(b.rps, b.burst),
		lastSeen: rl.nowFunc(),
	}
	rl.clients[key] = cl
	return cl.limiter
}

func (rl *RateLimitMiddleware) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

func (rl *RateLimitMiddleware) evictStale() {
	cutoff := rl.nowFunc().Add(-limiterIdleTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// LimiterCount reports resident per-client limiters.
func (rl *RateLimitMiddleware) LimiterCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// clientIP prefers proxy headers so limits follow the real client through
// a load balancer: X-Forwarded-For first hop, then X-Real-IP, then the
// socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

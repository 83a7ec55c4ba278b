package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(t *testing.T) *RateLimitMiddleware {
	t.Helper()
	rl := NewRateLimitMiddleware(slog.Default())
	t.Cleanup(rl.Stop)
	return rl
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, method, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRetryBudgetIsOnePerMinute(t *testing.T) {
	rl := newTestRateLimiter(t)
	h := rl.Wrap(okHandler())
	path := "/admin/v1/settlements/8e8a8a02-1f4e-4a41-9f9e-2b7c9d6a1c55/retry"

	first := doRequest(h, http.MethodPost, path, "10.0.0.1:1234")
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(h, http.MethodPost, path, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestRetryBudgetIsPerIP(t *testing.T) {
	rl := newTestRateLimiter(t)
	h := rl.Wrap(okHandler())
	path := "/admin/v1/settlements/8e8a8a02-1f4e-4a41-9f9e-2b7c9d6a1c55/retry"

	require.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, path, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, http.MethodPost, path, "10.0.0.1:5678").Code)

	// A different client keeps its own budget.
	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, path, "10.0.0.2:1234").Code)
}

func TestReadEndpointsAreIndependentOfRetryBudget(t *testing.T) {
	rl := newTestRateLimiter(t)
	h := rl.Wrap(okHandler())

	retryPath := "/admin/v1/settlements/8e8a8a02-1f4e-4a41-9f9e-2b7c9d6a1c55/retry"
	require.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, retryPath, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, http.MethodPost, retryPath, "10.0.0.1:1234").Code)

	// GET budgets survive the exhausted POST budget.
	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/admin/v1/settlements/failed", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/admin/v1/jackpot", "10.0.0.1:1234").Code)
}

func TestReadBurstAllowsTen(t *testing.T) {
	rl := newTestRateLimiter(t)
	h := rl.Wrap(okHandler())

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/admin/v1/settlements/failed", "10.0.0.1:1234").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, http.MethodGet, "/admin/v1/settlements/failed", "10.0.0.1:1234").Code)
}

func TestXForwardedForIdentifiesClient(t *testing.T) {
	rl := newTestRateLimiter(t)
	h := rl.Wrap(okHandler())
	path := "/admin/v1/settlements/8e8a8a02-1f4e-4a41-9f9e-2b7c9d6a1c55/retry"

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Same forwarded client from a different proxy hop shares the budget.
	req2 := httptest.NewRequest(http.MethodPost, path, nil)
	req2.RemoteAddr = "127.0.0.2:9999"
	req2.Header.Set("X-Forwarded-For", "203.0.113.7")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}

func TestStaleLimitersAreEvicted(t *testing.T) {
	rl := newTestRateLimiter(t)
	h := rl.Wrap(okHandler())

	doRequest(h, http.MethodGet, "/admin/v1/jackpot", "10.0.0.1:1234")
	require.Equal(t, 1, rl.LimiterCount())

	rl.nowFunc = func() time.Time { return time.Now().Add(limiterIdleTTL + time.Minute) }
	rl.evictStale()
	assert.Equal(t, 0, rl.LimiterCount())
}

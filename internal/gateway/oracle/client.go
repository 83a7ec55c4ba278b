// Package oracle implements the ValueOracle contract against a gift
// floor-price service. Estimates are best-effort; the compliance checker is
// the only consumer.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/cache"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/ratelimit"
)

const collaborator = "oracle"

const (
	estimateCacheSize = 1024
	estimateCacheTTL  = time.Minute
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	estimates  *cache.LRU[string, float64]
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    ratelimit.NewLimiter(10, 10, collaborator),
		estimates:  cache.NewLRU[string, float64](estimateCacheSize, estimateCacheTTL),
		logger:     logger.With("component", "oracle_client"),
	}
}

type estimateResponse struct {
	GiftRef     string  `json:"gift_ref"`
	FloorTON    float64 `json:"floor_ton"`
	SampleCount int     `json:"sample_count"`
}

func (c *Client) EstimateValue(ctx context.Context, giftRef string) (float64, error) {
	// Floor prices move slowly; a short TTL keeps repeat proposals for the
	// same collectible from hammering the oracle.
	if value, ok := c.estimates.Get(giftRef); ok {
		return value, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	value, err := c.fetchEstimate(ctx, giftRef)
	metrics.ExternalCallLatency.WithLabelValues(collaborator, "estimate_value").Observe(time.Since(start).Seconds())
	ratelimit.RecordCall(collaborator, "estimate_value", err)
	if err != nil {
		return 0, fmt.Errorf("estimate value for %s: %w", giftRef, err)
	}
	c.estimates.Put(giftRef, value)
	return value, nil
}

func (c *Client) fetchEstimate(ctx context.Context, giftRef string) (float64, error) {
	u := fmt.Sprintf("%s/v1/gifts/%s/floor", c.baseURL, url.PathEscape(giftRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	var out estimateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.FloorTON <= 0 {
		return 0, fmt.Errorf("oracle returned non-positive floor %f", out.FloorTON)
	}
	return out.FloorTON, nil
}

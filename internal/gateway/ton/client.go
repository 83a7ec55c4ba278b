// Package ton implements the Ledger contract against the agent's TON wallet
// gateway, a JSON-over-HTTP service that owns the signing keys and exposes
// transfer submission, incoming-transfer queries and balance reads.
package ton

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/circuitbreaker"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/ratelimit"
)

const collaborator = "ton"

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.Breaker
	logger     *slog.Logger
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		limiter:    ratelimit.NewLimiter(cfg.RPS, cfg.Burst, collaborator),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:   collaborator,
			Logger: logger,
		}),
		logger: logger.With("component", "ton_client"),
	}
}

type submitRequest struct {
	Destination string `json:"destination"`
	AmountNano  int64  `json:"amount_nano"`
	Memo        string `json:"memo"`
}

type submitResponse struct {
	TransferID string `json:"transfer_id"`
}

func (c *Client) SubmitTransfer(ctx context.Context, destination string, amountNano int64, memo string) (string, error) {
	var out submitResponse
	err := c.call(ctx, "submit_transfer", http.MethodPost, "/v1/transfers", submitRequest{
		Destination: destination,
		AmountNano:  amountNano,
		Memo:        memo,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.TransferID == "" {
		return "", fmt.Errorf("submit transfer: gateway returned empty transfer id")
	}
	return out.TransferID, nil
}

type incomingTransfer struct {
	ID         string    `json:"id"`
	AmountNano int64     `json:"amount_nano"`
	Sender     string    `json:"sender"`
	Memo       string    `json:"memo"`
	Timestamp  time.Time `json:"timestamp"`
}

type incomingResponse struct {
	Transfers []incomingTransfer `json:"transfers"`
}

func (c *Client) QueryIncoming(ctx context.Context, account string, since time.Time) ([]gateway.LedgerTransfer, error) {
	path := fmt.Sprintf("/v1/accounts/%s/incoming?since=%s",
		url.PathEscape(account), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	var out incomingResponse
	if err := c.call(ctx, "query_incoming", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	transfers := make([]gateway.LedgerTransfer, 0, len(out.Transfers))
	for _, t := range out.Transfers {
		transfers = append(transfers, gateway.LedgerTransfer{
			ID:         t.ID,
			AmountNano: t.AmountNano,
			Sender:     t.Sender,
			Memo:       t.Memo,
			Timestamp:  t.Timestamp,
		})
	}
	return transfers, nil
}

type balanceResponse struct {
	BalanceNano int64 `json:"balance_nano"`
}

func (c *Client) Balance(ctx context.Context, account string) (int64, error) {
	path := fmt.Sprintf("/v1/accounts/%s/balance", url.PathEscape(account))

	var out balanceResponse
	if err := c.call(ctx, "balance", http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.BalanceNano, nil
}

func (c *Client) call(ctx context.Context, method, httpMethod, path string, reqBody, out any) error {
	if err := c.breaker.Allow(); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", method, err)
	}

	start := time.Now()
	err := c.doRequest(ctx, httpMethod, path, reqBody, out)
	metrics.ExternalCallLatency.WithLabelValues(collaborator, method).Observe(time.Since(start).Seconds())
	ratelimit.RecordCall(collaborator, method, err)

	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("%s: %w", method, err)
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *Client) doRequest(ctx context.Context, httpMethod, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

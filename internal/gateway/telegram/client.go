// Package telegram implements the Messenger and GiftInventory contracts
// against the Telegram Bot API and the gift marketplace endpoints the agent
// uses to move collectibles.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/ratelimit"
)

const collaborator = "telegram"

type Client struct {
	httpClient *http.Client
	botURL     string // https://api.telegram.org/bot<token>
	giftAPIURL string
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

type Config struct {
	BotToken   string
	GiftAPIURL string
	Timeout    time.Duration
	RPS        float64
	Burst      int
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		botURL:     "https://api.telegram.org/bot" + cfg.BotToken,
		giftAPIURL: cfg.GiftAPIURL,
		limiter:    ratelimit.NewLimiter(cfg.RPS, cfg.Burst, collaborator),
		logger:     logger.With("component", "telegram_client"),
	}
}

type botResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func (c *Client) DeliverProposalCard(ctx context.Context, chatID int64, recordID string, text string) (bool, error) {
	body := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}
	err := c.botCall(ctx, "deliver_proposal_card", "sendMessage", body, nil)
	if err != nil {
		return false, fmt.Errorf("deliver proposal card %s: %w", recordID, err)
	}
	return true, nil
}

func (c *Client) Notify(ctx context.Context, chatID int64, text string) error {
	err := c.botCall(ctx, "notify", "sendMessage", sendMessageRequest{ChatID: chatID, Text: text}, nil)
	if err != nil {
		return fmt.Errorf("notify chat %d: %w", chatID, err)
	}
	return nil
}

type giftFeedItem struct {
	ItemID     string    `json:"item_id"`
	GiftRef    string    `json:"gift_ref"`
	SenderID   string    `json:"sender_id"`
	ReceivedAt time.Time `json:"received_at"`
}

type giftFeedResponse struct {
	Items []giftFeedItem `json:"items"`
}

func (c *Client) RecentlyReceived(ctx context.Context, account string) ([]gateway.GiftReceipt, error) {
	u := fmt.Sprintf("%s/v1/accounts/%s/received", c.giftAPIURL, url.PathEscape(account))

	var out giftFeedResponse
	if err := c.jsonCall(ctx, "recently_received", http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}

	receipts := make([]gateway.GiftReceipt, 0, len(out.Items))
	for _, it := range out.Items {
		receipts = append(receipts, gateway.GiftReceipt{
			ItemID:     it.ItemID,
			GiftRef:    it.GiftRef,
			SenderID:   it.SenderID,
			ReceivedAt: it.ReceivedAt,
		})
	}
	return receipts, nil
}

type giftTransferRequest struct {
	GiftRef       string `json:"gift_ref"`
	DestinationID string `json:"destination_id"`
}

type giftTransferResponse struct {
	TransferID string `json:"transfer_id"`
	// Set when the platform wants its transfer fee paid first.
	Invoice    string `json:"invoice,omitempty"`
	AmountNano int64  `json:"amount_nano,omitempty"`
}

func (c *Client) TransferGift(ctx context.Context, giftRef, destinationID string) (string, error) {
	u := c.giftAPIURL + "/v1/transfers"

	var out giftTransferResponse
	err := c.jsonCall(ctx, "transfer_gift", http.MethodPost, u, giftTransferRequest{
		GiftRef:       giftRef,
		DestinationID: destinationID,
	}, &out)

	var payErr *paymentRequiredError
	if errors.As(err, &payErr) {
		return "", &gateway.ErrPaymentRequired{Invoice: payErr.invoice, AmountNano: payErr.amountNano}
	}
	if err != nil {
		return "", err
	}
	if out.TransferID == "" {
		return "", fmt.Errorf("transfer gift: platform returned empty transfer id")
	}
	return out.TransferID, nil
}

type payInvoiceRequest struct {
	Invoice string `json:"invoice"`
}

func (c *Client) PayInvoice(ctx context.Context, invoice string) error {
	return c.jsonCall(ctx, "pay_invoice", http.MethodPost, c.giftAPIURL+"/v1/invoices/pay",
		payInvoiceRequest{Invoice: invoice}, nil)
}

// paymentRequiredError carries a 402 response until TransferGift translates
// it into the gateway type.
type paymentRequiredError struct {
	invoice    string
	amountNano int64
}

func (e *paymentRequiredError) Error() string {
	return fmt.Sprintf("payment required: invoice %s", e.invoice)
}

func (c *Client) botCall(ctx context.Context, metricMethod, botMethod string, reqBody, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	err := c.doBotRequest(ctx, botMethod, reqBody, out)
	metrics.ExternalCallLatency.WithLabelValues(collaborator, metricMethod).Observe(time.Since(start).Seconds())
	ratelimit.RecordCall(collaborator, metricMethod, err)
	return err
}

func (c *Client) doBotRequest(ctx context.Context, botMethod string, reqBody, out any) error {
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.botURL+"/"+botMethod, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var br botResponse
	if err := json.Unmarshal(respBody, &br); err != nil {
		return fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if !br.OK {
		return fmt.Errorf("bot api %s: %s", botMethod, br.Description)
	}
	if out != nil {
		if err := json.Unmarshal(br.Result, out); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *Client) jsonCall(ctx context.Context, metricMethod, httpMethod, fullURL string, reqBody, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", metricMethod, err)
	}

	start := time.Now()
	err := c.doJSONRequest(ctx, httpMethod, fullURL, reqBody, out)
	metrics.ExternalCallLatency.WithLabelValues(collaborator, metricMethod).Observe(time.Since(start).Seconds())
	ratelimit.RecordCall(collaborator, metricMethod, err)
	if err != nil {
		return fmt.Errorf("%s: %w", metricMethod, err)
	}
	return nil
}

func (c *Client) doJSONRequest(ctx context.Context, httpMethod, fullURL string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, fullURL, body)
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

	if resp.StatusCode == http.StatusPaymentRequired {
		var pr giftTransferResponse
		if err := json.Unmarshal(respBody, &pr); err != nil {
			return fmt.Errorf("unmarshal 402 response: %w", err)
		}
		return &paymentRequiredError{invoice: pr.Invoice, amountNano: pr.AmountNano}
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

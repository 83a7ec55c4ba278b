// Package verify matches an expected obligation against the TON ledger or
// the agent's inbound gift feed, consuming the matched transfer in the
// anti-replay ledger before reporting success.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

type Outcome string

const (
	// OutcomeVerified: the obligation matched exactly one unconsumed
	// transfer, now recorded in the anti-replay ledger.
	OutcomeVerified Outcome = "VERIFIED"
	// OutcomeNotFound: nothing matched yet. Retryable indefinitely until
	// the record expires.
	OutcomeNotFound Outcome = "NOT_FOUND"
	// OutcomeAmbiguous: more than one transfer matched; terminal for this
	// attempt, needs operator eyes.
	OutcomeAmbiguous Outcome = "AMBIGUOUS"
	// OutcomeAlreadyConsumed: the matched transfer was already used by a
	// different obligation. Terminal; a replay or double-spend attempt.
	OutcomeAlreadyConsumed Outcome = "ALREADY_CONSUMED"
)

// Result is the outcome of one verification attempt.
type Result struct {
	Outcome      Outcome
	TransferID   string
	PayerAddress string
	AmountNano   int64
	GiftItemID   string
	MatchedAt    time.Time
}

// Verified is a convenience accessor.
func (r *Result) Verified() bool {
	return r.Outcome == OutcomeVerified
}

// CurrencyExpectation describes a payment the counterparty owes.
type CurrencyExpectation struct {
	ClaimantID         string // obligation id recorded in the anti-replay ledger
	Purpose            model.TransferPurpose
	ExpectedNano       int64
	ToleranceNano      int64
	EarliestAcceptable time.Time // set before the request was issued to tolerate clock skew
	CorrelationTag     string    // matched against the transfer memo
	ExpectedSender     string    // optional; empty matches any sender
}

// GiftExpectation describes a collectible the counterparty owes.
type GiftExpectation struct {
	ClaimantID     string
	GiftRef        string
	ExpectedSender string
	After          time.Time // receipt must postdate the exchange record
}

type Config struct {
	Account       string // the agent's TON account
	GiftAccount   string // the agent's gift inventory account
	ToleranceNano int64  // default currency match tolerance
}

type Verifier struct {
	ledger    gateway.Ledger
	inventory gateway.GiftInventory
	consumed  store.ConsumedTransferRepository
	cfg       Config
	logger    *slog.Logger
	nowFunc   func() time.Time
}

func New(ledger gateway.Ledger, inventory gateway.GiftInventory, consumed store.ConsumedTransferRepository, cfg Config, logger *slog.Logger) *Verifier {
	return &Verifier{
		ledger:    ledger,
		inventory: inventory,
		consumed:  consumed,
		cfg:       cfg,
		logger:    logger.With("component", "verifier"),
		nowFunc:   time.Now,
	}
}

// VerifyCurrency looks for an incoming ledger transfer matching the
// expectation. On a single match the transfer id is consumed before success
// is reported, so no other obligation can use it.
func (v *Verifier) VerifyCurrency(ctx context.Context, exp CurrencyExpectation) (*Result, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "verify.currency")
	defer span.End()
	span.SetAttributes(attribute.String("claimant_id", exp.ClaimantID))

	start := time.Now()
	defer func() {
		metrics.VerifyLatency.WithLabelValues("currency").Observe(time.Since(start).Seconds())
	}()

	transfers, err := v.ledger.QueryIncoming(ctx, v.cfg.Account, exp.EarliestAcceptable)
	if err != nil {
		return nil, fmt.Errorf("query incoming transfers: %w", err)
	}

	tolerance := exp.ToleranceNano
	if tolerance <= 0 {
		tolerance = v.cfg.ToleranceNano
	}

	var matches []gateway.LedgerTransfer
	for _, t := range transfers {
		if t.Timestamp.Before(exp.EarliestAcceptable) {
			continue
		}
		if absDiff(t.AmountNano, exp.ExpectedNano) > tolerance {
			continue
		}
		if exp.CorrelationTag != "" && t.Memo != exp.CorrelationTag {
			continue
		}
		if exp.ExpectedSender != "" && t.Sender != exp.ExpectedSender {
			continue
		}
		matches = append(matches, t)
	}

	switch len(matches) {
	case 0:
		metrics.VerifyOutcomes.WithLabelValues("currency", "not_found").Inc()
		return &Result{Outcome: OutcomeNotFound}, nil
	case 1:
		// fall through to consumption
	default:
		v.logger.Warn("multiple transfers match one obligation",
			"claimant_id", exp.ClaimantID, "matches", len(matches))
		metrics.VerifyOutcomes.WithLabelValues("currency", "ambiguous").Inc()
		return &Result{Outcome: OutcomeAmbiguous}, nil
	}

	match := matches[0]
	outcome, err := v.consume(ctx, match.ID, exp.ClaimantID, match.AmountNano, exp.Purpose)
	if err != nil {
		return nil, err
	}
	metrics.VerifyOutcomes.WithLabelValues("currency", string(outcome)).Inc()
	if outcome == OutcomeAlreadyConsumed {
		return &Result{Outcome: OutcomeAlreadyConsumed, TransferID: match.ID}, nil
	}

	return &Result{
		Outcome:      OutcomeVerified,
		TransferID:   match.ID,
		PayerAddress: match.Sender,
		AmountNano:   match.AmountNano,
		MatchedAt:    v.nowFunc(),
	}, nil
}

// VerifyGiftReceipt polls the agent's inbound gift feed for the expected
// collectible from the expected sender. The inventory item id stands in for
// a ledger transfer id in the anti-replay ledger.
func (v *Verifier) VerifyGiftReceipt(ctx context.Context, exp GiftExpectation) (*Result, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "verify.gift_receipt")
	defer span.End()
	span.SetAttributes(attribute.String("claimant_id", exp.ClaimantID))

	start := time.Now()
	defer func() {
		metrics.VerifyLatency.WithLabelValues("gift").Observe(time.Since(start).Seconds())
	}()

	receipts, err := v.inventory.RecentlyReceived(ctx, v.cfg.GiftAccount)
	if err != nil {
		return nil, fmt.Errorf("list received gifts: %w", err)
	}

	var matches []gateway.GiftReceipt
	for _, rcpt := range receipts {
		if rcpt.GiftRef != exp.GiftRef {
			continue
		}
		if rcpt.SenderID != exp.ExpectedSender {
			continue
		}
		if !rcpt.ReceivedAt.After(exp.After) {
			continue
		}
		matches = append(matches, rcpt)
	}

	switch len(matches) {
	case 0:
		metrics.VerifyOutcomes.WithLabelValues("gift", "not_found").Inc()
		return &Result{Outcome: OutcomeNotFound}, nil
	case 1:
		// fall through
	default:
		// The counterparty sent several identical collectibles; consume the
		// earliest so a second obligation can still match the rest.
		earliest := matches[0]
		for _, m := range matches[1:] {
			if m.ReceivedAt.Before(earliest.ReceivedAt) {
				earliest = m
			}
		}
		matches = []gateway.GiftReceipt{earliest}
	}

	match := matches[0]
	transferID := "gift:" + match.ItemID
	outcome, err := v.consume(ctx, transferID, exp.ClaimantID, 0, model.TransferPurposeExchange)
	if err != nil {
		return nil, err
	}
	metrics.VerifyOutcomes.WithLabelValues("gift", string(outcome)).Inc()
	if outcome == OutcomeAlreadyConsumed {
		return &Result{Outcome: OutcomeAlreadyConsumed, TransferID: transferID}, nil
	}

	return &Result{
		Outcome:      OutcomeVerified,
		TransferID:   transferID,
		PayerAddress: match.SenderID,
		GiftItemID:   match.ItemID,
		MatchedAt:    v.nowFunc(),
	}, nil
}

func (v *Verifier) consume(ctx context.Context, transferID, claimantID string, amountNano int64, purpose model.TransferPurpose) (Outcome, error) {
	err := v.consumed.Consume(ctx, &model.ConsumedTransfer{
		TransferID: transferID,
		ClaimantID: claimantID,
		AmountNano: amountNano,
		Purpose:    purpose,
		UsedAt:     v.nowFunc(),
	})
	if errors.Is(err, store.ErrAlreadyConsumed) {
		v.logger.Warn("transfer already consumed by another obligation",
			"transfer_id", transferID, "claimant_id", claimantID)
		return OutcomeAlreadyConsumed, nil
	}
	if err != nil {
		return "", fmt.Errorf("consume transfer %s: %w", transferID, err)
	}
	return OutcomeVerified, nil
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

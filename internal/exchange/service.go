// Package exchange drives the lifecycle of a two-sided exchange between the
// agent and a Telegram counterparty: compliance gate, proposal, acceptance,
// verification of the counterparty's transfer and hand-off to the settlement
// executor. Every transition is a conditional update; losing a race is a
// Conflict, not corruption.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/verify"
)

var (
	// ErrConflict: another process already moved the record. Benign; the
	// caller re-reads if it cares about the new state.
	ErrConflict = errors.New("exchange: conflicting transition")

	// ErrExpired: the proposal window lapsed before the operation. The
	// record has been moved to expired as a side effect.
	ErrExpired = errors.New("exchange: proposal window lapsed")

	// ErrNotYetVerified: no matching transfer observed yet. Retryable until
	// the window lapses.
	ErrNotYetVerified = errors.New("exchange: counterparty transfer not yet observed")
)

// PolicyViolationError carries the compliance verdict for a rejected
// proposal. No record is created.
type PolicyViolationError struct {
	Result model.ComplianceResult
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("exchange: policy violation (%s): %s", e.Result.Rule, e.Result.Reason)
}

// VerificationError is terminal for the attempt: the match was ambiguous or
// the transfer was already consumed by another obligation.
type VerificationError struct {
	Outcome    verify.Outcome
	TransferID string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("exchange: verification failed: %s", e.Outcome)
}

// DeliveryError: the proposal card never reached the counterparty. The
// record has been cancelled.
type DeliveryError struct {
	RecordID uuid.UUID
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("exchange: proposal card delivery failed for %s: %v", e.RecordID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ComplianceChecker is the policy gate.
type ComplianceChecker interface {
	Check(offered, requested model.AssetValue) model.ComplianceResult
}

// TransferVerifier matches obligations against the ledger and gift feed.
type TransferVerifier interface {
	VerifyCurrency(ctx context.Context, exp verify.CurrencyExpectation) (*verify.Result, error)
	VerifyGiftReceipt(ctx context.Context, exp verify.GiftExpectation) (*verify.Result, error)
}

// Executor settles a verified record exactly once.
type Executor interface {
	ExecuteExchange(ctx context.Context, rec *model.ExchangeRecord) (bool, error)
}

type Config struct {
	// ProposalWindow is how long a proposal stays open. Default 120s.
	ProposalWindow time.Duration

	// VerificationSkew widens the acceptance window backwards from the
	// record's creation time, tolerating clock drift between this process
	// and the ledger. Default 3m.
	VerificationSkew time.Duration
}

func (c *Config) applyDefaults() {
	if c.ProposalWindow <= 0 {
		c.ProposalWindow = 2 * time.Minute
	}
	if c.VerificationSkew <= 0 {
		c.VerificationSkew = 3 * time.Minute
	}
}

type Service struct {
	records   store.ExchangeRepository
	checker   ComplianceChecker
	verifier  TransferVerifier
	executor  Executor
	oracle    gateway.ValueOracle
	messenger gateway.Messenger
	cfg       Config
	logger    *slog.Logger
	nowFunc   func() time.Time
}

func NewService(
	records store.ExchangeRepository,
	checker ComplianceChecker,
	verifier TransferVerifier,
	executor Executor,
	oracle gateway.ValueOracle,
	messenger gateway.Messenger,
	cfg Config,
	logger *slog.Logger,
) *Service {
	cfg.applyDefaults()
	return &Service{
		records:   records,
		checker:   checker,
		verifier:  verifier,
		executor:  executor,
		oracle:    oracle,
		messenger: messenger,
		cfg:       cfg,
		logger:    logger.With("component", "exchange"),
		nowFunc:   time.Now,
	}
}

// ProposeRequest describes the exchange the agent wants to offer.
type ProposeRequest struct {
	InitiatorChat  int64
	CounterpartyID string
	Offered        model.AssetValue
	Requested      model.AssetValue
	Notes          *string
}

// Propose runs the compliance gate, persists a proposed record and delivers
// the proposal card. A rejected proposal creates no record; a card that
// never reaches the counterparty cancels the record it just created.
func (s *Service) Propose(ctx context.Context, req ProposeRequest) (*model.ExchangeRecord, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "exchange.propose")
	defer span.End()

	if err := req.Offered.Validate(); err != nil {
		return nil, fmt.Errorf("offered asset: %w", err)
	}
	if err := req.Requested.Validate(); err != nil {
		return nil, fmt.Errorf("requested asset: %w", err)
	}

	offered, err := s.priceAsset(ctx, req.Offered)
	if err != nil {
		return nil, err
	}
	requested, err := s.priceAsset(ctx, req.Requested)
	if err != nil {
		return nil, err
	}

	verdict := s.checker.Check(offered, requested)
	if !verdict.Acceptable {
		metrics.ProposalsTotal.WithLabelValues("rejected", verdict.Rule).Inc()
		s.logger.Info("proposal rejected by policy",
			"rule", verdict.Rule, "reason", verdict.Reason, "profit_ton", verdict.ProfitTON)
		return nil, &PolicyViolationError{Result: verdict}
	}
	metrics.ProposalsTotal.WithLabelValues("accepted", verdict.Rule).Inc()

	now := s.nowFunc()
	rec := &model.ExchangeRecord{
		ID:             uuid.New(),
		Status:         model.ExchangeStatusProposed,
		InitiatorChat:  req.InitiatorChat,
		CounterpartyID: req.CounterpartyID,
		Offered:        offered,
		Requested:      requested,
		Compliance:     verdict,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.ProposalWindow),
		Notes:          req.Notes,
	}
	span.SetAttributes(attribute.String("record_id", rec.ID.String()))

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create exchange record: %w", err)
	}

	delivered, err := s.messenger.DeliverProposalCard(ctx, req.InitiatorChat, rec.ID.String(), s.proposalText(rec))
	if err != nil || !delivered {
		if err == nil {
			err = errors.New("card not delivered")
		}
		s.cancelUndelivered(ctx, rec.ID)
		return nil, &DeliveryError{RecordID: rec.ID, Err: err}
	}

	s.logger.Info("exchange proposed",
		"record_id", rec.ID,
		"counterparty", rec.CounterpartyID,
		"offered", rec.Offered.String(),
		"requested", rec.Requested.String(),
		"expires_at", rec.ExpiresAt,
	)
	return rec, nil
}

// priceAsset fills in the oracle reference value for gifts that arrive
// without one. Currency values are derived from the quantity directly.
func (s *Service) priceAsset(ctx context.Context, a model.AssetValue) (model.AssetValue, error) {
	if a.IsGift() && a.RefValueTON <= 0 {
		value, err := s.oracle.EstimateValue(ctx, a.GiftRef)
		if err != nil {
			return a, fmt.Errorf("estimate gift value %s: %w", a.GiftRef, err)
		}
		a.RefValueTON = value
	}
	if a.IsCurrency() {
		a.RefValueTON = model.NanoToTON(a.QuantityNano)
	}
	return a, nil
}

func (s *Service) proposalText(rec *model.ExchangeRecord) string {
	return fmt.Sprintf("I offer %s for your %s. Accept within %s.",
		rec.Offered, rec.Requested, time.Until(rec.ExpiresAt).Round(time.Second))
}

func (s *Service) cancelUndelivered(ctx context.Context, id uuid.UUID) {
	ok, err := s.records.Transition(ctx, id, model.ExchangeStatusProposed, model.ExchangeStatusCancelled)
	if err != nil {
		s.logger.Error("failed to cancel undelivered proposal", "record_id", id, "error", err)
		return
	}
	if ok {
		metrics.TransitionsTotal.WithLabelValues("proposed", "cancelled").Inc()
	}
}

// Accept moves proposed → accepted on behalf of the counterparty.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) error {
	return s.transitionFromProposed(ctx, id, model.ExchangeStatusAccepted)
}

// Decline moves proposed → declined on behalf of the counterparty.
func (s *Service) Decline(ctx context.Context, id uuid.UUID) error {
	return s.transitionFromProposed(ctx, id, model.ExchangeStatusDeclined)
}

// Cancel withdraws an open proposal on behalf of the agent.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.transitionFromProposed(ctx, id, model.ExchangeStatusCancelled)
}

func (s *Service) transitionFromProposed(ctx context.Context, id uuid.UUID, to model.ExchangeStatus) error {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get exchange %s: %w", id, err)
	}

	if expired, err := s.expireIfLapsed(ctx, rec); err != nil {
		return err
	} else if expired {
		return ErrExpired
	}

	ok, err := s.records.Transition(ctx, id, model.ExchangeStatusProposed, to)
	if err != nil {
		return fmt.Errorf("transition %s to %s: %w", id, to, err)
	}
	if !ok {
		metrics.TransitionConflicts.WithLabelValues("proposed", string(to)).Inc()
		return ErrConflict
	}
	metrics.TransitionsTotal.WithLabelValues("proposed", string(to)).Inc()
	return nil
}

// expireIfLapsed lazily expires a record whose window has passed. There is
// no background sweeper; expiry happens on the next touch.
func (s *Service) expireIfLapsed(ctx context.Context, rec *model.ExchangeRecord) (bool, error) {
	if !rec.ExpiredAt(s.nowFunc()) {
		return false, nil
	}
	ok, err := s.records.Transition(ctx, rec.ID, rec.Status, model.ExchangeStatusExpired)
	if err != nil {
		return false, fmt.Errorf("expire %s: %w", rec.ID, err)
	}
	if ok {
		metrics.TransitionsTotal.WithLabelValues(string(rec.Status), "expired").Inc()
		s.logger.Info("exchange expired", "record_id", rec.ID, "was", rec.Status)
	}
	// Either we expired it or a concurrent touch did. Same answer.
	return true, nil
}

// Verify checks the ledger (or gift feed) for the counterparty's side of an
// accepted exchange. A single match is consumed and the record moves to
// verified.
func (s *Service) Verify(ctx context.Context, id uuid.UUID) (*verify.Result, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "exchange.verify")
	defer span.End()
	span.SetAttributes(attribute.String("record_id", id.String()))

	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get exchange %s: %w", id, err)
	}

	if expired, err := s.expireIfLapsed(ctx, rec); err != nil {
		return nil, err
	} else if expired {
		return nil, ErrExpired
	}
	if rec.Status != model.ExchangeStatusAccepted {
		return nil, ErrConflict
	}

	result, err := s.verifyInbound(ctx, rec)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case verify.OutcomeNotFound:
		return nil, ErrNotYetVerified
	case verify.OutcomeAmbiguous, verify.OutcomeAlreadyConsumed:
		return nil, &VerificationError{Outcome: result.Outcome, TransferID: result.TransferID}
	}

	ok, err := s.records.MarkVerified(ctx, id, result.TransferID, result.PayerAddress, result.MatchedAt)
	if err != nil {
		return nil, fmt.Errorf("mark verified %s: %w", id, err)
	}
	if !ok {
		// A concurrent verify won after our status read. The transfer is
		// consumed under this record's claimant id either way.
		metrics.TransitionConflicts.WithLabelValues("accepted", "verified").Inc()
		return nil, ErrConflict
	}
	metrics.TransitionsTotal.WithLabelValues("accepted", "verified").Inc()

	s.logger.Info("exchange verified",
		"record_id", id, "transfer_id", result.TransferID, "payer", result.PayerAddress)
	return result, nil
}

func (s *Service) verifyInbound(ctx context.Context, rec *model.ExchangeRecord) (*verify.Result, error) {
	earliest := rec.CreatedAt.Add(-s.cfg.VerificationSkew)
	if rec.Requested.IsCurrency() {
		return s.verifier.VerifyCurrency(ctx, verify.CurrencyExpectation{
			ClaimantID:         rec.ID.String(),
			Purpose:            model.TransferPurposeExchange,
			ExpectedNano:       rec.Requested.QuantityNano,
			EarliestAcceptable: earliest,
			CorrelationTag:     rec.ID.String(),
		})
	}
	return s.verifier.VerifyGiftReceipt(ctx, verify.GiftExpectation{
		ClaimantID:     rec.ID.String(),
		GiftRef:        rec.Requested.GiftRef,
		ExpectedSender: rec.CounterpartyID,
		After:          earliest,
	})
}

// Execute hands a verified record to the settlement executor. Returns false
// without error when another process got there first.
func (s *Service) Execute(ctx context.Context, id uuid.UUID) (bool, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get exchange %s: %w", id, err)
	}
	if rec.Status != model.ExchangeStatusVerified {
		if rec.Status == model.ExchangeStatusCompleted {
			return false, nil
		}
		return false, ErrConflict
	}
	return s.executor.ExecuteExchange(ctx, rec)
}

// Get exposes a record for the admin surface and the agent's chat brain.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ExchangeRecord, error) {
	return s.records.Get(ctx, id)
}

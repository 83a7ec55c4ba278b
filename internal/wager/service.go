// Package wager runs the staked-game variant of the settlement core: a
// requester stakes TON against a weighted payout table. Guards (cooldown,
// rate cap, bankroll) run before any record exists; the stake is verified
// through the same anti-replay verifier as exchanges and the payout goes
// through the same claim protocol. A slice of every stake accrues to a
// durable jackpot.
package wager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/alert"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/settle"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/verify"
)

// Guard labels, used in rejections and metrics.
const (
	GuardStakeBounds = "stake_bounds"
	GuardCooldown    = "cooldown"
	GuardRateLimit   = "rate_limit"
	GuardBankroll    = "bankroll"
)

var (
	ErrConflict = errors.New("wager: conflicting transition")

	// ErrExpired: the funding window lapsed before the stake arrived.
	ErrExpired = errors.New("wager: funding window lapsed")

	// ErrNotYetFunded: no matching stake transfer observed yet. Retryable.
	ErrNotYetFunded = errors.New("wager: stake not yet observed")

	// ErrInvalidRoll: the outcome roll handed to Settle is outside [0,1).
	ErrInvalidRoll = errors.New("wager: outcome roll must be in [0,1)")
)

// GuardError reports which pre-flight guard rejected the wager. Guards run
// against durable state, so they hold across process restarts and replicas.
type GuardError struct {
	Guard  string
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("wager guard %s: %s", e.Guard, e.Reason)
}

// StakeError is terminal for the funding attempt: ambiguous match or a
// replayed transfer.
type StakeError struct {
	Outcome    verify.Outcome
	TransferID string
}

func (e *StakeError) Error() string {
	return fmt.Sprintf("wager stake verification failed: %s", e.Outcome)
}

// TransferVerifier matches the stake against the ledger.
type TransferVerifier interface {
	VerifyCurrency(ctx context.Context, exp verify.CurrencyExpectation) (*verify.Result, error)
}

// PayoutExecutor drives winning payouts through the claim protocol.
type PayoutExecutor interface {
	ExecuteWagerPayout(ctx context.Context, w *model.WagerRecord) (bool, error)
}

// Journal is the audit sink for losing wagers and jackpot awards; winning
// payouts are journaled by the executor.
type Journal interface {
	Append(ctx context.Context, e *model.JournalEntry) error
}

type Config struct {
	MinStakeNano int64
	MaxStakeNano int64

	// Cooldown is the minimum gap between one requester's wagers.
	Cooldown time.Duration

	// RateWindow / RateMax bound how many wagers one requester may open per
	// window, counted from durable rows.
	RateWindow time.Duration
	RateMax    int

	// BankrollFraction caps the stake as a share of the treasury balance.
	// The stake is also capped at treasury / MaxMultiplier so the worst draw
	// stays payable.
	BankrollFraction float64

	// FundingWindow is how long a pending wager waits for its stake.
	FundingWindow time.Duration

	// VerificationSkew widens the stake acceptance window backwards from
	// the wager's creation time, tolerating clock drift between this
	// process and the ledger. Default 3m.
	VerificationSkew time.Duration

	TreasuryAccount string

	// JackpotCutBps is the slice of every settled stake accrued to the
	// jackpot, in basis points.
	JackpotCutBps int64

	// JackpotFloorNano / JackpotCooldown gate awards.
	JackpotFloorNano int64
	JackpotCooldown  time.Duration
}

func (c *Config) applyDefaults() {
	if c.MinStakeNano <= 0 {
		c.MinStakeNano = model.NanoPerTON / 10 // 0.1 TON
	}
	if c.MaxStakeNano <= 0 {
		c.MaxStakeNano = 100 * model.NanoPerTON
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.RateWindow <= 0 {
		c.RateWindow = time.Hour
	}
	if c.RateMax <= 0 {
		c.RateMax = 20
	}
	if c.BankrollFraction <= 0 {
		c.BankrollFraction = 0.05
	}
	if c.FundingWindow <= 0 {
		c.FundingWindow = 2 * time.Minute
	}
	if c.VerificationSkew <= 0 {
		c.VerificationSkew = 3 * time.Minute
	}
	if c.JackpotCutBps <= 0 {
		c.JackpotCutBps = 100 // 1%
	}
	if c.JackpotFloorNano <= 0 {
		c.JackpotFloorNano = 50 * model.NanoPerTON
	}
	if c.JackpotCooldown <= 0 {
		c.JackpotCooldown = 24 * time.Hour
	}
}

type Service struct {
	wagers    store.WagerRepository
	jackpot   store.JackpotRepository
	verifier  TransferVerifier
	executor  PayoutExecutor
	journal   Journal
	ledger    gateway.Ledger
	messenger gateway.Messenger
	alerter   alert.Alerter
	table     *Table
	cfg       Config
	logger    *slog.Logger
	nowFunc   func() time.Time
}

func NewService(
	wagers store.WagerRepository,
	jackpot store.JackpotRepository,
	verifier TransferVerifier,
	executor PayoutExecutor,
	journal Journal,
	ledger gateway.Ledger,
	messenger gateway.Messenger,
	alerter alert.Alerter,
	table *Table,
	cfg Config,
	logger *slog.Logger,
) *Service {
	cfg.applyDefaults()
	if table == nil {
		table = DefaultTable()
	}
	return &Service{
		wagers:    wagers,
		jackpot:   jackpot,
		verifier:  verifier,
		executor:  executor,
		journal:   journal,
		ledger:    ledger,
		messenger: messenger,
		alerter:   alerter,
		table:     table,
		cfg:       cfg,
		logger:    logger.With("component", "wager"),
		nowFunc:   time.Now,
	}
}

// OpenRequest describes a wager a requester wants to place.
type OpenRequest struct {
	RequesterID string
	Chat        int64
	StakeNano   int64
}

// Open runs the guards and creates a pending wager. The requester then has
// the funding window to land the stake on the ledger with the wager id as
// the memo.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*model.WagerRecord, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "wager.open")
	defer span.End()

	if err := s.runGuards(ctx, req); err != nil {
		var guardErr *GuardError
		if errors.As(err, &guardErr) {
			metrics.WagerGuardRejections.WithLabelValues(guardErr.Guard).Inc()
			s.logger.Info("wager rejected by guard",
				"guard", guardErr.Guard, "requester", req.RequesterID, "reason", guardErr.Reason)
		}
		return nil, err
	}

	now := s.nowFunc()
	w := &model.WagerRecord{
		ID:          uuid.New(),
		RequesterID: req.RequesterID,
		Chat:        req.Chat,
		StakeNano:   req.StakeNano,
		Status:      model.WagerStatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.FundingWindow),
	}
	span.SetAttributes(attribute.String("wager_id", w.ID.String()))

	if err := s.wagers.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create wager: %w", err)
	}
	metrics.WagersTotal.WithLabelValues("opened").Inc()

	if err := s.messenger.Notify(ctx, req.Chat, fmt.Sprintf(
		"Wager open: send %.4f TON with memo %s within %s.",
		model.NanoToTON(req.StakeNano), w.ID, s.cfg.FundingWindow.Round(time.Second),
	)); err != nil {
		s.logger.Warn("wager funding instructions not delivered", "wager_id", w.ID, "error", err)
	}
	return w, nil
}

func (s *Service) runGuards(ctx context.Context, req OpenRequest) error {
	if req.StakeNano < s.cfg.MinStakeNano || req.StakeNano > s.cfg.MaxStakeNano {
		return &GuardError{Guard: GuardStakeBounds, Reason: fmt.Sprintf(
			"stake %.4f TON outside [%.4f, %.4f]",
			model.NanoToTON(req.StakeNano),
			model.NanoToTON(s.cfg.MinStakeNano),
			model.NanoToTON(s.cfg.MaxStakeNano),
		)}
	}

	now := s.nowFunc()

	latest, err := s.wagers.LatestCreatedAt(ctx, req.RequesterID)
	if err != nil {
		return fmt.Errorf("cooldown lookup: %w", err)
	}
	if latest != nil && now.Sub(*latest) < s.cfg.Cooldown {
		return &GuardError{Guard: GuardCooldown, Reason: fmt.Sprintf(
			"wait %s between wagers", s.cfg.Cooldown.Round(time.Second))}
	}

	count, err := s.wagers.CountSince(ctx, req.RequesterID, now.Add(-s.cfg.RateWindow))
	if err != nil {
		return fmt.Errorf("rate lookup: %w", err)
	}
	if count >= s.cfg.RateMax {
		return &GuardError{Guard: GuardRateLimit, Reason: fmt.Sprintf(
			"at most %d wagers per %s", s.cfg.RateMax, s.cfg.RateWindow.Round(time.Minute))}
	}

	treasury, err := s.ledger.Balance(ctx, s.cfg.TreasuryAccount)
	if err != nil {
		return fmt.Errorf("treasury balance: %w", err)
	}
	maxStake := int64(float64(treasury) * s.cfg.BankrollFraction)
	if m := s.table.MaxMultiplier(); m > 0 {
		if byPayout := int64(float64(treasury) / m); byPayout < maxStake {
			maxStake = byPayout
		}
	}
	if req.StakeNano > maxStake {
		return &GuardError{Guard: GuardBankroll, Reason: fmt.Sprintf(
			"stake %.4f TON exceeds current limit %.4f TON",
			model.NanoToTON(req.StakeNano), model.NanoToTON(maxStake))}
	}
	return nil
}

// Fund checks the ledger for the stake and moves pending → funded. The
// stake transfer is consumed in the anti-replay ledger before funding.
func (s *Service) Fund(ctx context.Context, id uuid.UUID) (*model.WagerRecord, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "wager.fund")
	defer span.End()
	span.SetAttributes(attribute.String("wager_id", id.String()))

	w, err := s.wagers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get wager %s: %w", id, err)
	}

	if w.ExpiredAt(s.nowFunc()) {
		if ok, err := s.wagers.Expire(ctx, id); err != nil {
			return nil, fmt.Errorf("expire wager %s: %w", id, err)
		} else if ok {
			metrics.WagersTotal.WithLabelValues("expired").Inc()
			s.logger.Info("wager expired unfunded", "wager_id", id)
		}
		return nil, ErrExpired
	}
	if w.Status != model.WagerStatusPending {
		return nil, ErrConflict
	}

	result, err := s.verifier.VerifyCurrency(ctx, verify.CurrencyExpectation{
		ClaimantID:         id.String(),
		Purpose:            model.TransferPurposeWagerStake,
		ExpectedNano:       w.StakeNano,
		EarliestAcceptable: w.CreatedAt.Add(-s.cfg.VerificationSkew),
		CorrelationTag:     id.String(),
	})
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case verify.OutcomeNotFound:
		return nil, ErrNotYetFunded
	case verify.OutcomeAmbiguous, verify.OutcomeAlreadyConsumed:
		return nil, &StakeError{Outcome: result.Outcome, TransferID: result.TransferID}
	}

	fundedAt := result.MatchedAt
	ok, err := s.wagers.MarkFunded(ctx, id, result.TransferID, result.PayerAddress, fundedAt)
	if err != nil {
		return nil, fmt.Errorf("mark funded %s: %w", id, err)
	}
	if !ok {
		return nil, ErrConflict
	}
	metrics.WagersTotal.WithLabelValues("funded").Inc()

	w.Status = model.WagerStatusFunded
	w.StakeTransferID = result.TransferID
	w.PayerAddress = result.PayerAddress
	w.FundedAt = &fundedAt
	return w, nil
}

// SettleResult reports the draw and any jackpot award to the caller.
type SettleResult struct {
	Multiplier       float64
	PayoutNano       int64
	JackpotAwardNano int64
}

// Settle maps the supplied outcome roll through the payout table, pays the
// winner through the claim protocol and accrues the jackpot cut. The roll is
// a uniform value in [0,1) produced by the caller's randomness primitive;
// this core never draws its own. Losing wagers settle in place without an
// external transfer.
func (s *Service) Settle(ctx context.Context, id uuid.UUID, roll float64) (*SettleResult, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "wager.settle")
	defer span.End()
	span.SetAttributes(attribute.String("wager_id", id.String()))

	if roll < 0 || roll >= 1 {
		return nil, ErrInvalidRoll
	}

	w, err := s.wagers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get wager %s: %w", id, err)
	}
	if w.Status != model.WagerStatusFunded {
		return nil, ErrConflict
	}

	outcome := s.table.Pick(roll)
	payoutNano := int64(float64(w.StakeNano) * outcome.Multiplier)

	ok, err := s.wagers.SetOutcome(ctx, id, outcome.Multiplier, payoutNano)
	if err != nil {
		return nil, fmt.Errorf("set outcome %s: %w", id, err)
	}
	if !ok {
		return nil, ErrConflict
	}
	w.Multiplier = outcome.Multiplier
	w.PayoutNano = payoutNano

	s.accrueJackpot(ctx, w.StakeNano)

	if payoutNano == 0 {
		if err := s.settleLoss(ctx, w); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.executor.ExecuteWagerPayout(ctx, w); err != nil {
			return nil, err
		}
		metrics.WagersTotal.WithLabelValues("won").Inc()
	}

	res := &SettleResult{Multiplier: outcome.Multiplier, PayoutNano: payoutNano}
	res.JackpotAwardNano = s.tryAwardJackpot(ctx, w)
	return res, nil
}

func (s *Service) settleLoss(ctx context.Context, w *model.WagerRecord) error {
	now := s.nowFunc()
	ok, err := s.wagers.Complete(ctx, w.ID, nil, now)
	if err != nil {
		return fmt.Errorf("complete losing wager %s: %w", w.ID, err)
	}
	if !ok {
		return ErrConflict
	}
	metrics.WagersTotal.WithLabelValues("lost").Inc()

	if err := s.journal.Append(ctx, &model.JournalEntry{
		Kind:         model.JournalKindWager,
		RecordID:     w.ID,
		Counterparty: w.RequesterID,
		OutflowKind:  model.AssetKindCurrency,
		InflowKind:   model.AssetKindCurrency,
		InflowNano:   w.StakeNano,
		ProfitTON:    model.NanoToTON(w.StakeNano),
		ClosedAt:     now,
	}); err != nil {
		return fmt.Errorf("journal losing wager %s: %w", w.ID, err)
	}

	if err := s.messenger.Notify(ctx, w.Chat, fmt.Sprintf(
		"No luck this time. Stake %.4f TON lost.", model.NanoToTON(w.StakeNano))); err != nil {
		s.logger.Warn("loss notification failed", "wager_id", w.ID, "error", err)
	}
	return nil
}

func (s *Service) accrueJackpot(ctx context.Context, stakeNano int64) {
	cut := stakeNano * s.cfg.JackpotCutBps / 10_000
	if cut <= 0 {
		return
	}
	if err := s.jackpot.Accrue(ctx, cut); err != nil {
		s.logger.Error("jackpot accrual failed", "amount_nano", cut, "error", err)
		return
	}
	s.refreshJackpotGauge(ctx)
}

// tryAwardJackpot attempts an award for the settling requester. The durable
// statement re-checks eligibility, so the pre-check here only avoids a round
// trip. A failed payout compensates the balance back.
func (s *Service) tryAwardJackpot(ctx context.Context, w *model.WagerRecord) int64 {
	state, err := s.jackpot.Get(ctx)
	if err != nil {
		s.logger.Error("jackpot read failed", "error", err)
		return 0
	}
	if !state.AwardEligible(s.nowFunc(), s.cfg.JackpotFloorNano, s.cfg.JackpotCooldown) {
		return 0
	}

	award, err := s.jackpot.TryAward(ctx, w.RequesterID, s.cfg.JackpotFloorNano, s.cfg.JackpotCooldown)
	if err != nil {
		s.logger.Error("jackpot award attempt failed", "error", err)
		return 0
	}
	if award == nil {
		// Lost the race or eligibility lapsed between read and update.
		return 0
	}

	transferID, err := s.ledger.SubmitTransfer(ctx, w.PayerAddress, award.AmountNano, "jackpot:"+w.ID.String())
	if err != nil {
		s.compensateJackpot(ctx, w, award, err)
		return 0
	}
	metrics.JackpotAwards.WithLabelValues("awarded").Inc()
	s.refreshJackpotGauge(ctx)

	if jerr := s.journal.Append(ctx, &model.JournalEntry{
		Kind:            model.JournalKindJackpot,
		RecordID:        w.ID,
		Counterparty:    w.RequesterID,
		OutflowKind:     model.AssetKindCurrency,
		OutflowNano:     award.AmountNano,
		InflowKind:      model.AssetKindCurrency,
		ProfitTON:       -model.NanoToTON(award.AmountNano),
		ExternalTransID: &transferID,
		ClosedAt:        s.nowFunc(),
	}); jerr != nil {
		s.logger.Error("jackpot journal append failed", "wager_id", w.ID, "error", jerr)
	}

	if nerr := s.messenger.Notify(ctx, w.Chat, fmt.Sprintf(
		"JACKPOT! %.4f TON is on its way.", model.NanoToTON(award.AmountNano))); nerr != nil {
		s.logger.Warn("jackpot notification failed", "wager_id", w.ID, "error", nerr)
	}

	s.logger.Info("jackpot awarded",
		"wager_id", w.ID, "winner", w.RequesterID, "amount_nano", award.AmountNano)
	return award.AmountNano
}

func (s *Service) compensateJackpot(ctx context.Context, w *model.WagerRecord, award *store.JackpotAward, cause error) {
	metrics.JackpotAwards.WithLabelValues("failed").Inc()
	s.logger.Error("jackpot payout failed, compensating",
		"wager_id", w.ID, "amount_nano", award.AmountNano, "error", cause)

	if err := s.jackpot.Compensate(ctx, award); err != nil {
		// Balance and payout are now both unapplied durably. Operator must
		// reconcile from the alert.
		s.logger.Error("jackpot compensation failed", "wager_id", w.ID, "error", err)
	}
	_ = s.alerter.Send(ctx, alert.Alert{
		Type:     alert.AlertTypeJackpotPayoutFailed,
		RecordID: w.ID.String(),
		Title:    "Jackpot payout failed",
		Message:  cause.Error(),
		Fields: map[string]string{
			"winner":      w.RequesterID,
			"amount_nano": fmt.Sprintf("%d", award.AmountNano),
		},
	})
	s.refreshJackpotGauge(ctx)
}

func (s *Service) refreshJackpotGauge(ctx context.Context) {
	state, err := s.jackpot.Get(ctx)
	if err != nil {
		return
	}
	metrics.JackpotBalance.Set(float64(state.BalanceNano))
}

// Jackpot exposes the current jackpot state for the admin surface.
func (s *Service) Jackpot(ctx context.Context) (*model.JackpotState, error) {
	return s.jackpot.Get(ctx)
}

// Get exposes a wager record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.WagerRecord, error) {
	return s.wagers.Get(ctx, id)
}

var _ PayoutExecutor = (*settle.Executor)(nil)

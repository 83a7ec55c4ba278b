// Package settle executes the agent's side of a verified obligation exactly
// once. The at-most-once guarantee rests on a conditional claim: a single
// UPDATE that sets the claim marker only when the record is in the right
// state and unclaimed. Whoever wins that update owns the external transfer.
package settle

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
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

// ExternalTransferError reports a failed outbound transfer. The record has
// been moved to failed with its claim cleared; an operator retry through the
// admin surface is the only way forward.
type ExternalTransferError struct {
	RecordID uuid.UUID
	Kind     string
	Err      error
}

func (e *ExternalTransferError) Error() string {
	return fmt.Sprintf("%s settlement %s: external transfer failed: %v", e.Kind, e.RecordID, e.Err)
}

func (e *ExternalTransferError) Unwrap() error { return e.Err }

// Journal is the slice of the journal writer the executor needs.
type Journal interface {
	Append(ctx context.Context, e *model.JournalEntry) error
}

type Executor struct {
	exchanges store.ExchangeRepository
	wagers    store.WagerRepository
	ledger    gateway.Ledger
	gifts     gateway.GiftInventory
	messenger gateway.Messenger
	journal   Journal
	alerter   alert.Alerter
	logger    *slog.Logger
	nowFunc   func() time.Time
}

func NewExecutor(
	exchanges store.ExchangeRepository,
	wagers store.WagerRepository,
	ledger gateway.Ledger,
	gifts gateway.GiftInventory,
	messenger gateway.Messenger,
	journal Journal,
	alerter alert.Alerter,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		exchanges: exchanges,
		wagers:    wagers,
		ledger:    ledger,
		gifts:     gifts,
		messenger: messenger,
		journal:   journal,
		alerter:   alerter,
		logger:    logger.With("component", "executor"),
		nowFunc:   time.Now,
	}
}

// ExecuteExchange settles a verified exchange record. Returns false when
// another process already claimed or completed the record; that is a benign
// race loss, not an error.
func (e *Executor) ExecuteExchange(ctx context.Context, rec *model.ExchangeRecord) (bool, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "settle.exchange")
	defer span.End()
	span.SetAttributes(attribute.String("record_id", rec.ID.String()))

	start := time.Now()
	defer func() {
		metrics.SettlementLatency.WithLabelValues("exchange").Observe(time.Since(start).Seconds())
	}()

	claimed, err := e.exchanges.Claim(ctx, rec.ID, e.nowFunc())
	if err != nil {
		return false, fmt.Errorf("claim exchange %s: %w", rec.ID, err)
	}
	if !claimed {
		metrics.SettlementsTotal.WithLabelValues("exchange", "conflict").Inc()
		e.logger.Info("exchange already claimed, skipping", "record_id", rec.ID)
		return false, nil
	}

	transferID, err := e.sendOutbound(ctx, rec)
	if err != nil {
		e.failExchange(ctx, rec, err)
		metrics.SettlementsTotal.WithLabelValues("exchange", "failed").Inc()
		return false, &ExternalTransferError{RecordID: rec.ID, Kind: "exchange", Err: err}
	}

	completed, err := e.exchanges.Complete(ctx, rec.ID, transferID, e.nowFunc())
	if err != nil {
		return false, fmt.Errorf("complete exchange %s: %w", rec.ID, err)
	}
	if !completed {
		// The transfer went out but the row moved underneath us. Should not
		// happen while we hold the claim; the receipt id survives only in the
		// alert and the log, so page the operator.
		e.logger.Error("exchange completion affected zero rows after transfer",
			"record_id", rec.ID, "external_transfer_id", transferID)
		_ = e.alerter.Send(ctx, alert.Alert{
			Type:     alert.AlertTypeReceiptOrphaned,
			RecordID: rec.ID.String(),
			Title:    "Exchange receipt orphaned",
			Message:  "outbound transfer succeeded but the completion update matched no row",
			Fields: map[string]string{
				"external_transfer_id": transferID,
				"counterparty":         rec.CounterpartyID,
			},
		})
	}

	if err := e.journal.Append(ctx, exchangeJournalEntry(rec, transferID, e.nowFunc())); err != nil {
		// The settlement itself succeeded. Surface the journal failure to the
		// caller but do not undo anything.
		return true, fmt.Errorf("journal exchange %s: %w", rec.ID, err)
	}

	metrics.SettlementsTotal.WithLabelValues("exchange", "completed").Inc()
	e.notify(ctx, rec.InitiatorChat, fmt.Sprintf("Exchange settled. Sent %s for %s.", rec.Offered, rec.Requested))
	return true, nil
}

// sendOutbound moves the agent's offered asset to the counterparty.
func (e *Executor) sendOutbound(ctx context.Context, rec *model.ExchangeRecord) (string, error) {
	if rec.Offered.IsCurrency() {
		destination := rec.Verification.PayerAddress
		if destination == "" {
			return "", fmt.Errorf("no payer address recorded for currency payout")
		}
		return e.ledger.SubmitTransfer(ctx, destination, rec.Offered.QuantityNano, rec.ID.String())
	}
	return e.transferGift(ctx, rec.Offered.GiftRef, rec.CounterpartyID)
}

// transferGift moves a collectible, paying the platform fee invoice if the
// first attempt comes back payment-required.
func (e *Executor) transferGift(ctx context.Context, giftRef, destinationID string) (string, error) {
	transferID, err := e.gifts.TransferGift(ctx, giftRef, destinationID)
	var payErr *gateway.ErrPaymentRequired
	if !errors.As(err, &payErr) {
		return transferID, err
	}

	metrics.FeeSubsteps.Inc()
	e.logger.Info("gift transfer requires fee payment",
		"gift_ref", giftRef, "amount_nano", payErr.AmountNano)
	if err := e.gifts.PayInvoice(ctx, payErr.Invoice); err != nil {
		return "", fmt.Errorf("pay transfer fee invoice: %w", err)
	}
	return e.gifts.TransferGift(ctx, giftRef, destinationID)
}

func (e *Executor) failExchange(ctx context.Context, rec *model.ExchangeRecord, cause error) {
	note := cause.Error()
	if _, ferr := e.exchanges.Fail(ctx, rec.ID, note); ferr != nil {
		e.logger.Error("failed to mark exchange failed",
			"record_id", rec.ID, "error", ferr, "cause", cause)
	}
	_ = e.alerter.Send(ctx, alert.Alert{
		Type:     alert.AlertTypeSettlementFailed,
		RecordID: rec.ID.String(),
		Title:    "Exchange settlement failed",
		Message:  note,
		Fields: map[string]string{
			"counterparty": rec.CounterpartyID,
			"offered":      rec.Offered.String(),
		},
	})
}

// ExecuteWagerPayout settles a funded wager that owes a payout. Losing
// wagers never reach here; the wager service completes them directly.
func (e *Executor) ExecuteWagerPayout(ctx context.Context, w *model.WagerRecord) (bool, error) {
	ctx, span := otel.Tracer("settler").Start(ctx, "settle.wager_payout")
	defer span.End()
	span.SetAttributes(attribute.String("wager_id", w.ID.String()))

	start := time.Now()
	defer func() {
		metrics.SettlementLatency.WithLabelValues("wager").Observe(time.Since(start).Seconds())
	}()

	claimed, err := e.wagers.Claim(ctx, w.ID, e.nowFunc())
	if err != nil {
		return false, fmt.Errorf("claim wager %s: %w", w.ID, err)
	}
	if !claimed {
		metrics.SettlementsTotal.WithLabelValues("wager", "conflict").Inc()
		e.logger.Info("wager already claimed, skipping", "wager_id", w.ID)
		return false, nil
	}

	transferID, err := e.ledger.SubmitTransfer(ctx, w.PayerAddress, w.PayoutNano, w.ID.String())
	if err != nil {
		e.failWager(ctx, w, err)
		metrics.SettlementsTotal.WithLabelValues("wager", "failed").Inc()
		return false, &ExternalTransferError{RecordID: w.ID, Kind: "wager", Err: err}
	}

	completed, err := e.wagers.Complete(ctx, w.ID, &transferID, e.nowFunc())
	if err != nil {
		return false, fmt.Errorf("complete wager %s: %w", w.ID, err)
	}
	if !completed {
		e.logger.Error("wager completion affected zero rows after transfer",
			"wager_id", w.ID, "external_transfer_id", transferID)
		_ = e.alerter.Send(ctx, alert.Alert{
			Type:     alert.AlertTypeReceiptOrphaned,
			RecordID: w.ID.String(),
			Title:    "Wager receipt orphaned",
			Message:  "payout transfer succeeded but the completion update matched no row",
			Fields: map[string]string{
				"external_transfer_id": transferID,
				"requester":            w.RequesterID,
			},
		})
	}

	if err := e.journal.Append(ctx, wagerJournalEntry(w, &transferID, e.nowFunc())); err != nil {
		return true, fmt.Errorf("journal wager %s: %w", w.ID, err)
	}

	metrics.SettlementsTotal.WithLabelValues("wager", "completed").Inc()
	e.notify(ctx, w.Chat, fmt.Sprintf("Wager paid out: %.4f TON (%.2fx).",
		model.NanoToTON(w.PayoutNano), w.Multiplier))
	return true, nil
}

func (e *Executor) failWager(ctx context.Context, w *model.WagerRecord, cause error) {
	note := cause.Error()
	if _, ferr := e.wagers.Fail(ctx, w.ID, note); ferr != nil {
		e.logger.Error("failed to mark wager failed",
			"wager_id", w.ID, "error", ferr, "cause", cause)
	}
	_ = e.alerter.Send(ctx, alert.Alert{
		Type:     alert.AlertTypeSettlementFailed,
		RecordID: w.ID.String(),
		Title:    "Wager payout failed",
		Message:  note,
		Fields: map[string]string{
			"requester":   w.RequesterID,
			"payout_nano": fmt.Sprintf("%d", w.PayoutNano),
		},
	})
}

func (e *Executor) notify(ctx context.Context, chatID int64, text string) {
	if err := e.messenger.Notify(ctx, chatID, text); err != nil {
		e.logger.Warn("settlement notification failed", "chat", chatID, "error", err)
	}
}

func exchangeJournalEntry(rec *model.ExchangeRecord, transferID string, closedAt time.Time) *model.JournalEntry {
	entry := &model.JournalEntry{
		Kind:            model.JournalKindExchange,
		RecordID:        rec.ID,
		Counterparty:    rec.CounterpartyID,
		OutflowKind:     rec.Offered.Kind,
		OutflowNano:     rec.Offered.QuantityNano,
		InflowKind:      rec.Requested.Kind,
		InflowNano:      rec.Requested.QuantityNano,
		ProfitTON:       rec.Compliance.ProfitTON,
		ExternalTransID: &transferID,
		ClosedAt:        closedAt,
	}
	if rec.Offered.IsGift() {
		ref := rec.Offered.GiftRef
		entry.OutflowGiftRef = &ref
	}
	if rec.Requested.IsGift() {
		ref := rec.Requested.GiftRef
		entry.InflowGiftRef = &ref
	}
	return entry
}

func wagerJournalEntry(w *model.WagerRecord, transferID *string, closedAt time.Time) *model.JournalEntry {
	return &model.JournalEntry{
		Kind:            model.JournalKindWager,
		RecordID:        w.ID,
		Counterparty:    w.RequesterID,
		OutflowKind:     model.AssetKindCurrency,
		OutflowNano:     w.PayoutNano,
		InflowKind:      model.AssetKindCurrency,
		InflowNano:      w.StakeNano,
		ProfitTON:       model.NanoToTON(w.StakeNano - w.PayoutNano),
		ExternalTransID: transferID,
		ClosedAt:        closedAt,
	}
}

package settle

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/alert"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/gateway"
	gatewaymocks "github.com/itsdeadcow/teleton-agent-sub001/internal/gateway/mocks"
	storemocks "github.com/itsdeadcow/teleton-agent-sub001/internal/store/mocks"
)

type recordingAlerter struct {
	alerts []alert.Alert
}

func (r *recordingAlerter) Send(_ context.Context, a alert.Alert) error {
	r.alerts = append(r.alerts, a)
	return nil
}

type recordingJournal struct {
	entries []model.JournalEntry
	fail    error
}

func (r *recordingJournal) Append(_ context.Context, e *model.JournalEntry) error {
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, *e)
	return nil
}

type executorFixture struct {
	exchanges *storemocks.MockExchangeRepository
	wagers    *storemocks.MockWagerRepository
	ledger    *gatewaymocks.MockLedger
	gifts     *gatewaymocks.MockGiftInventory
	messenger *gatewaymocks.MockMessenger
	journal   *recordingJournal
	alerter   *recordingAlerter
	executor  *Executor
}

func newExecutorFixture(t *testing.T) *executorFixture {
	ctrl := gomock.NewController(t)
	f := &executorFixture{
		exchanges: storemocks.NewMockExchangeRepository(ctrl),
		wagers:    storemocks.NewMockWagerRepository(ctrl),
		ledger:    gatewaymocks.NewMockLedger(ctrl),
		gifts:     gatewaymocks.NewMockGiftInventory(ctrl),
		messenger: gatewaymocks.NewMockMessenger(ctrl),
		journal:   &recordingJournal{},
		alerter:   &recordingAlerter{},
	}
	f.executor = NewExecutor(f.exchanges, f.wagers, f.ledger, f.gifts, f.messenger, f.journal, f.alerter, slog.Default())
	return f
}

func verifiedSellExchange() *model.ExchangeRecord {
	// Agent sells a gift for 12 TON; the counterparty already paid.
	verifiedAt := time.Now().Add(-time.Minute)
	return &model.ExchangeRecord{
		ID:             uuid.New(),
		Status:         model.ExchangeStatusVerified,
		InitiatorChat:  100200,
		CounterpartyID: "user-42",
		Offered:        model.GiftAsset("plush-pepe-001", 10.0),
		Requested:      model.CurrencyAsset(12 * model.NanoPerTON),
		Compliance:     model.ComplianceResult{Acceptable: true, Rule: "SELL_GIFT", ProfitTON: 2.0},
		Verification: model.Verification{
			TransferID:   "ton-tx-777",
			VerifiedAt:   &verifiedAt,
			PayerAddress: "EQpayer",
		},
		CreatedAt: time.Now().Add(-2 * time.Minute),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
}

func verifiedBuyExchange() *model.ExchangeRecord {
	// Agent buys a gift for 8 TON; the gift already arrived.
	rec := verifiedSellExchange()
	rec.Offered = model.CurrencyAsset(8 * model.NanoPerTON)
	rec.Requested = model.GiftAsset("durov-cap-003", 10.0)
	return rec
}

func TestExecuteExchangeGiftPayout(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").Return("gift-tx-1", nil)
	f.exchanges.EXPECT().Complete(gomock.Any(), rec.ID, "gift-tx-1", gomock.Any()).Return(true, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), rec.InitiatorChat, gomock.Any()).Return(nil)

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, executed)

	require.Len(t, f.journal.entries, 1)
	entry := f.journal.entries[0]
	assert.Equal(t, model.JournalKindExchange, entry.Kind)
	assert.Equal(t, rec.ID, entry.RecordID)
	assert.Equal(t, model.AssetKindGift, entry.OutflowKind)
	assert.Equal(t, model.AssetKindCurrency, entry.InflowKind)
	assert.Equal(t, 2.0, entry.ProfitTON)
	require.NotNil(t, entry.ExternalTransID)
	assert.Equal(t, "gift-tx-1", *entry.ExternalTransID)
}

func TestExecuteExchangeCurrencyPayout(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedBuyExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	f.ledger.EXPECT().
		SubmitTransfer(gomock.Any(), "EQpayer", int64(8*model.NanoPerTON), rec.ID.String()).
		Return("ton-tx-900", nil)
	f.exchanges.EXPECT().Complete(gomock.Any(), rec.ID, "ton-tx-900", gomock.Any()).Return(true, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), rec.InitiatorChat, gomock.Any()).Return(nil)

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, executed)
}

func TestExecuteExchangeClaimLostIsBenign(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(false, nil)
	// No transfer, no completion, no journal entry.

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Empty(t, f.journal.entries)
}

func TestExecuteExchangeTransferFailure(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").
		Return("", errors.New("platform 500"))
	f.exchanges.EXPECT().Fail(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	assert.False(t, executed)

	var transferErr *ExternalTransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, rec.ID, transferErr.RecordID)

	require.Len(t, f.alerter.alerts, 1)
	assert.Equal(t, alert.AlertTypeSettlementFailed, f.alerter.alerts[0].Type)
	assert.Empty(t, f.journal.entries)
}

func TestExecuteExchangePaysTransferFee(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	first := f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").
		Return("", &gateway.ErrPaymentRequired{Invoice: "inv-55", AmountNano: 250_000_000})
	f.gifts.EXPECT().PayInvoice(gomock.Any(), "inv-55").Return(nil)
	f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").
		Return("gift-tx-2", nil).After(first)
	f.exchanges.EXPECT().Complete(gomock.Any(), rec.ID, "gift-tx-2", gomock.Any()).Return(true, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), rec.InitiatorChat, gomock.Any()).Return(nil)

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, executed)
}

func TestExecuteExchangeFeeInvoiceFailure(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").
		Return("", &gateway.ErrPaymentRequired{Invoice: "inv-56", AmountNano: 250_000_000})
	f.gifts.EXPECT().PayInvoice(gomock.Any(), "inv-56").Return(errors.New("insufficient stars"))
	f.exchanges.EXPECT().Fail(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)

	_, err := f.executor.ExecuteExchange(context.Background(), rec)
	var transferErr *ExternalTransferError
	require.ErrorAs(t, err, &transferErr)
}

func TestExecuteExchangeNotifyFailureIsNonFatal(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").Return("gift-tx-3", nil)
	f.exchanges.EXPECT().Complete(gomock.Any(), rec.ID, "gift-tx-3", gomock.Any()).Return(true, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), rec.InitiatorChat, gomock.Any()).
		Return(errors.New("chat blocked"))

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, executed)
	require.Len(t, f.journal.entries, 1)
}

func TestExecuteExchangeOrphanedReceiptAlerts(t *testing.T) {
	f := newExecutorFixture(t)
	rec := verifiedSellExchange()

	f.exchanges.EXPECT().Claim(gomock.Any(), rec.ID, gomock.Any()).Return(true, nil)
	f.gifts.EXPECT().TransferGift(gomock.Any(), "plush-pepe-001", "user-42").Return("gift-tx-9", nil)
	// The transfer went out but the completion update matched no row.
	f.exchanges.EXPECT().Complete(gomock.Any(), rec.ID, "gift-tx-9", gomock.Any()).Return(false, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), rec.InitiatorChat, gomock.Any()).Return(nil)

	executed, err := f.executor.ExecuteExchange(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, executed)

	require.Len(t, f.alerter.alerts, 1)
	a := f.alerter.alerts[0]
	assert.Equal(t, alert.AlertTypeReceiptOrphaned, a.Type)
	assert.Equal(t, rec.ID.String(), a.RecordID)
	assert.Equal(t, "gift-tx-9", a.Fields["external_transfer_id"])
}

func fundedWager() *model.WagerRecord {
	fundedAt := time.Now().Add(-time.Minute)
	return &model.WagerRecord{
		ID:              uuid.New(),
		RequesterID:     "user-42",
		Chat:            100200,
		StakeNano:       2 * model.NanoPerTON,
		Status:          model.WagerStatusFunded,
		StakeTransferID: "ton-tx-400",
		FundedAt:        &fundedAt,
		PayerAddress:    "EQplayer",
		Multiplier:      2.5,
		PayoutNano:      5 * model.NanoPerTON,
		CreatedAt:       time.Now().Add(-2 * time.Minute),
		ExpiresAt:       time.Now().Add(10 * time.Minute),
	}
}

func TestExecuteWagerPayout(t *testing.T) {
	f := newExecutorFixture(t)
	w := fundedWager()

	f.wagers.EXPECT().Claim(gomock.Any(), w.ID, gomock.Any()).Return(true, nil)
	f.ledger.EXPECT().
		SubmitTransfer(gomock.Any(), "EQplayer", int64(5*model.NanoPerTON), w.ID.String()).
		Return("ton-tx-401", nil)
	f.wagers.EXPECT().Complete(gomock.Any(), w.ID, gomock.Any(), gomock.Any()).Return(true, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), w.Chat, gomock.Any()).Return(nil)

	executed, err := f.executor.ExecuteWagerPayout(context.Background(), w)
	require.NoError(t, err)
	assert.True(t, executed)

	require.Len(t, f.journal.entries, 1)
	entry := f.journal.entries[0]
	assert.Equal(t, model.JournalKindWager, entry.Kind)
	assert.Equal(t, int64(5*model.NanoPerTON), entry.OutflowNano)
	assert.Equal(t, int64(2*model.NanoPerTON), entry.InflowNano)
	assert.Equal(t, -3.0, entry.ProfitTON)
}

func TestExecuteWagerPayoutClaimLost(t *testing.T) {
	f := newExecutorFixture(t)
	w := fundedWager()

	f.wagers.EXPECT().Claim(gomock.Any(), w.ID, gomock.Any()).Return(false, nil)

	executed, err := f.executor.ExecuteWagerPayout(context.Background(), w)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Empty(t, f.journal.entries)
}

func TestExecuteWagerPayoutOrphanedReceiptAlerts(t *testing.T) {
	f := newExecutorFixture(t)
	w := fundedWager()

	f.wagers.EXPECT().Claim(gomock.Any(), w.ID, gomock.Any()).Return(true, nil)
	f.ledger.EXPECT().
		SubmitTransfer(gomock.Any(), "EQplayer", int64(5*model.NanoPerTON), w.ID.String()).
		Return("ton-tx-402", nil)
	f.wagers.EXPECT().Complete(gomock.Any(), w.ID, gomock.Any(), gomock.Any()).Return(false, nil)
	f.messenger.EXPECT().Notify(gomock.Any(), w.Chat, gomock.Any()).Return(nil)

	executed, err := f.executor.ExecuteWagerPayout(context.Background(), w)
	require.NoError(t, err)
	assert.True(t, executed)

	require.Len(t, f.alerter.alerts, 1)
	a := f.alerter.alerts[0]
	assert.Equal(t, alert.AlertTypeReceiptOrphaned, a.Type)
	assert.Equal(t, "ton-tx-402", a.Fields["external_transfer_id"])
}

func TestExecuteWagerPayoutTransferFailure(t *testing.T) {
	f := newExecutorFixture(t)
	w := fundedWager()

	f.wagers.EXPECT().Claim(gomock.Any(), w.ID, gomock.Any()).Return(true, nil)
	f.ledger.EXPECT().
		SubmitTransfer(gomock.Any(), "EQplayer", int64(5*model.NanoPerTON), w.ID.String()).
		Return("", errors.New("node timeout"))
	f.wagers.EXPECT().Fail(gomock.Any(), w.ID, gomock.Any()).Return(true, nil)

	_, err := f.executor.ExecuteWagerPayout(context.Background(), w)
	var transferErr *ExternalTransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, "wager", transferErr.Kind)
	require.Len(t, f.alerter.alerts, 1)
}

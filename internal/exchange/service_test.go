package exchange

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

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	gatewaymocks "github.com/itsdeadcow/teleton-agent-sub001/internal/gateway/mocks"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/policy"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
	storemocks "github.com/itsdeadcow/teleton-agent-sub001/internal/store/mocks"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/verify"
)

type fakeVerifier struct {
	result *verify.Result
	err    error

	currencyCalls []verify.CurrencyExpectation
	giftCalls     []verify.GiftExpectation
}

func (f *fakeVerifier) VerifyCurrency(_ context.Context, exp verify.CurrencyExpectation) (*verify.Result, error) {
	f.currencyCalls = append(f.currencyCalls, exp)
	return f.result, f.err
}

func (f *fakeVerifier) VerifyGiftReceipt(_ context.Context, exp verify.GiftExpectation) (*verify.Result, error) {
	f.giftCalls = append(f.giftCalls, exp)
	return f.result, f.err
}

type fakeExecutor struct {
	executed []uuid.UUID
	result   bool
	err      error
}

func (f *fakeExecutor) ExecuteExchange(_ context.Context, rec *model.ExchangeRecord) (bool, error) {
	f.executed = append(f.executed, rec.ID)
	return f.result, f.err
}

type fixture struct {
	records   *storemocks.MockExchangeRepository
	oracle    *gatewaymocks.MockValueOracle
	messenger *gatewaymocks.MockMessenger
	verifier  *fakeVerifier
	executor  *fakeExecutor
	svc       *Service
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		records:   storemocks.NewMockExchangeRepository(ctrl),
		oracle:    gatewaymocks.NewMockValueOracle(ctrl),
		messenger: gatewaymocks.NewMockMessenger(ctrl),
		verifier:  &fakeVerifier{},
		executor:  &fakeExecutor{result: true},
		now:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(
		f.records,
		policy.NewChecker(policy.DefaultConfig()),
		f.verifier,
		f.executor,
		f.oracle,
		f.messenger,
		Config{ProposalWindow: 2 * time.Minute},
		slog.Default(),
	)
	f.svc.nowFunc = func() time.Time { return f.now }
	return f
}

func buyGiftRequest() ProposeRequest {
	return ProposeRequest{
		InitiatorChat:  100200,
		CounterpartyID: "user-42",
		Offered:        model.CurrencyAsset(10 * model.NanoPerTON),
		Requested:      model.GiftAsset("plush-pepe-001", 12.0),
	}
}

func TestProposeRejectedOverpay(t *testing.T) {
	f := newFixture(t)

	// 10 TON for a 12 TON gift is 83% of value; the cap is 80%.
	_, err := f.svc.Propose(context.Background(), buyGiftRequest())

	var policyErr *PolicyViolationError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, policy.RuleBuyGift, policyErr.Result.Rule)
	assert.False(t, policyErr.Result.Acceptable)
	assert.InDelta(t, 2.0, policyErr.Result.ProfitTON, 1e-9)
}

func TestProposeAcceptedWithinCap(t *testing.T) {
	f := newFixture(t)

	req := buyGiftRequest()
	req.Offered = model.CurrencyAsset(9 * model.NanoPerTON)

	f.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.messenger.EXPECT().
		DeliverProposalCard(gomock.Any(), int64(100200), gomock.Any(), gomock.Any()).
		Return(true, nil)

	rec, err := f.svc.Propose(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.ExchangeStatusProposed, rec.Status)
	assert.True(t, rec.Compliance.Acceptable)
	assert.InDelta(t, 3.0, rec.Compliance.ProfitTON, 1e-9)
	assert.Equal(t, f.now.Add(2*time.Minute), rec.ExpiresAt)
}

func TestProposePricesGiftThroughOracle(t *testing.T) {
	f := newFixture(t)

	req := buyGiftRequest()
	req.Offered = model.CurrencyAsset(9 * model.NanoPerTON)
	req.Requested = model.GiftAsset("plush-pepe-001", 0) // no reference value supplied

	f.oracle.EXPECT().EstimateValue(gomock.Any(), "plush-pepe-001").Return(12.0, nil)
	f.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.messenger.EXPECT().
		DeliverProposalCard(gomock.Any(), int64(100200), gomock.Any(), gomock.Any()).
		Return(true, nil)

	rec, err := f.svc.Propose(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 12.0, rec.Requested.RefValueTON)
}

func TestProposeDeliveryFailureCancelsRecord(t *testing.T) {
	f := newFixture(t)

	req := buyGiftRequest()
	req.Offered = model.CurrencyAsset(9 * model.NanoPerTON)

	f.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.messenger.EXPECT().
		DeliverProposalCard(gomock.Any(), int64(100200), gomock.Any(), gomock.Any()).
		Return(false, errors.New("chat not found"))
	f.records.EXPECT().
		Transition(gomock.Any(), gomock.Any(), model.ExchangeStatusProposed, model.ExchangeStatusCancelled).
		Return(true, nil)

	_, err := f.svc.Propose(context.Background(), req)

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
}

func proposedRecord(f *fixture) *model.ExchangeRecord {
	return &model.ExchangeRecord{
		ID:             uuid.New(),
		Status:         model.ExchangeStatusProposed,
		InitiatorChat:  100200,
		CounterpartyID: "user-42",
		Offered:        model.GiftAsset("plush-pepe-001", 10.0),
		Requested:      model.CurrencyAsset(12 * model.NanoPerTON),
		CreatedAt:      f.now,
		ExpiresAt:      f.now.Add(2 * time.Minute),
	}
}

func TestAcceptWithinWindow(t *testing.T) {
	f := newFixture(t)
	rec := proposedRecord(f)

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		Transition(gomock.Any(), rec.ID, model.ExchangeStatusProposed, model.ExchangeStatusAccepted).
		Return(true, nil)

	require.NoError(t, f.svc.Accept(context.Background(), rec.ID))
}

func TestAcceptAfterWindowExpires(t *testing.T) {
	f := newFixture(t)
	rec := proposedRecord(f)

	// 121 seconds after creation, one past the 120 second window.
	f.now = rec.CreatedAt.Add(121 * time.Second)

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		Transition(gomock.Any(), rec.ID, model.ExchangeStatusProposed, model.ExchangeStatusExpired).
		Return(true, nil)

	err := f.svc.Accept(context.Background(), rec.ID)
	require.ErrorIs(t, err, ErrExpired)
}

func TestAcceptConflict(t *testing.T) {
	f := newFixture(t)
	rec := proposedRecord(f)

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		Transition(gomock.Any(), rec.ID, model.ExchangeStatusProposed, model.ExchangeStatusAccepted).
		Return(false, nil)

	err := f.svc.Accept(context.Background(), rec.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestDecline(t *testing.T) {
	f := newFixture(t)
	rec := proposedRecord(f)

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		Transition(gomock.Any(), rec.ID, model.ExchangeStatusProposed, model.ExchangeStatusDeclined).
		Return(true, nil)

	require.NoError(t, f.svc.Decline(context.Background(), rec.ID))
}

func acceptedRecord(f *fixture) *model.ExchangeRecord {
	rec := proposedRecord(f)
	rec.Status = model.ExchangeStatusAccepted
	return rec
}

func TestVerifyCurrencySuccess(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)

	f.verifier.result = &verify.Result{
		Outcome:      verify.OutcomeVerified,
		TransferID:   "ton-tx-777",
		PayerAddress: "EQpayer",
		AmountNano:   12 * model.NanoPerTON,
		MatchedAt:    f.now,
	}

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		MarkVerified(gomock.Any(), rec.ID, "ton-tx-777", "EQpayer", f.now).
		Return(true, nil)

	result, err := f.svc.Verify(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, result.Verified())

	require.Len(t, f.verifier.currencyCalls, 1)
	exp := f.verifier.currencyCalls[0]
	assert.Equal(t, rec.ID.String(), exp.ClaimantID)
	assert.Equal(t, rec.ID.String(), exp.CorrelationTag)
	assert.Equal(t, int64(12*model.NanoPerTON), exp.ExpectedNano)
	// The acceptance window opens before the record to absorb clock drift.
	assert.Equal(t, rec.CreatedAt.Add(-3*time.Minute), exp.EarliestAcceptable)
}

func TestVerifyGiftExpectation(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)
	rec.Offered = model.CurrencyAsset(9 * model.NanoPerTON)
	rec.Requested = model.GiftAsset("durov-cap-003", 12.0)

	f.verifier.result = &verify.Result{
		Outcome:    verify.OutcomeVerified,
		TransferID: "gift:item-1",
		GiftItemID: "item-1",
		MatchedAt:  f.now,
	}

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		MarkVerified(gomock.Any(), rec.ID, "gift:item-1", "", f.now).
		Return(true, nil)

	_, err := f.svc.Verify(context.Background(), rec.ID)
	require.NoError(t, err)

	require.Len(t, f.verifier.giftCalls, 1)
	exp := f.verifier.giftCalls[0]
	assert.Equal(t, "durov-cap-003", exp.GiftRef)
	assert.Equal(t, "user-42", exp.ExpectedSender)
	assert.Equal(t, rec.CreatedAt.Add(-3*time.Minute), exp.After)
}

func TestVerifyNotYetObserved(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)

	f.verifier.result = &verify.Result{Outcome: verify.OutcomeNotFound}
	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

	_, err := f.svc.Verify(context.Background(), rec.ID)
	require.ErrorIs(t, err, ErrNotYetVerified)
}

func TestVerifyAlreadyConsumed(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)

	f.verifier.result = &verify.Result{Outcome: verify.OutcomeAlreadyConsumed, TransferID: "ton-tx-1"}
	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

	_, err := f.svc.Verify(context.Background(), rec.ID)

	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verify.OutcomeAlreadyConsumed, verr.Outcome)
}

func TestVerifyExpiredWindow(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)
	f.now = rec.CreatedAt.Add(3 * time.Minute)

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)
	f.records.EXPECT().
		Transition(gomock.Any(), rec.ID, model.ExchangeStatusAccepted, model.ExchangeStatusExpired).
		Return(true, nil)

	_, err := f.svc.Verify(context.Background(), rec.ID)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongState(t *testing.T) {
	f := newFixture(t)
	rec := proposedRecord(f) // still proposed, not accepted

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

	_, err := f.svc.Verify(context.Background(), rec.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestUnknownRecordID(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	f.records.EXPECT().Get(gomock.Any(), id).Return(nil, store.ErrNotFound).Times(3)

	err := f.svc.Accept(context.Background(), id)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Verify(context.Background(), id)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Execute(context.Background(), id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExecuteDelegates(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)
	rec.Status = model.ExchangeStatusVerified

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

	executed, err := f.svc.Execute(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, executed)
	assert.Equal(t, []uuid.UUID{rec.ID}, f.executor.executed)
}

func TestExecuteAlreadyCompleted(t *testing.T) {
	f := newFixture(t)
	rec := acceptedRecord(f)
	rec.Status = model.ExchangeStatusCompleted

	f.records.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil)

	executed, err := f.svc.Execute(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Empty(t, f.executor.executed)
}

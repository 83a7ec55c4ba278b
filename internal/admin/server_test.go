package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
	storemocks "github.com/itsdeadcow/teleton-agent-sub001/internal/store/mocks"
)

type fakeRetrier struct {
	executed []uuid.UUID
	result   bool
	err      error
}

func (f *fakeRetrier) Execute(_ context.Context, id uuid.UUID) (bool, error) {
	f.executed = append(f.executed, id)
	return f.result, f.err
}

type fakeJackpot struct {
	state *model.JackpotState
	err   error
}

func (f *fakeJackpot) Jackpot(context.Context) (*model.JackpotState, error) {
	return f.state, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(context.Context) error { return f.err }

type serverFixture struct {
	exchanges *storemocks.MockExchangeRepository
	wagers    *storemocks.MockWagerRepository
	retrier   *fakeRetrier
	jackpot   *fakeJackpot
	pinger    *fakePinger
	handler   http.Handler
}

func newServerFixture(t *testing.T) *serverFixture {
	ctrl := gomock.NewController(t)
	f := &serverFixture{
		exchanges: storemocks.NewMockExchangeRepository(ctrl),
		wagers:    storemocks.NewMockWagerRepository(ctrl),
		retrier:   &fakeRetrier{result: true},
		jackpot:   &fakeJackpot{state: &model.JackpotState{BalanceNano: 60 * model.NanoPerTON}},
		pinger:    &fakePinger{},
	}
	srv := NewServer(f.exchanges, f.wagers, f.retrier, f.jackpot, f.pinger, slog.Default())
	f.handler = srv.Handler()
	return f
}

func failedRecord() model.ExchangeRecord {
	note := "platform 500"
	return model.ExchangeRecord{
		ID:             uuid.New(),
		Status:         model.ExchangeStatusFailed,
		CounterpartyID: "user-42",
		Offered:        model.GiftAsset("plush-pepe-001", 10.0),
		Requested:      model.CurrencyAsset(12 * model.NanoPerTON),
		Compliance:     model.ComplianceResult{Acceptable: true, ProfitTON: 2.0},
		Execution:      model.Execution{FailureNote: &note},
		CreatedAt:      time.Now().Add(-time.Hour),
	}
}

func TestListFailedSettlements(t *testing.T) {
	f := newServerFixture(t)
	rec := failedRecord()

	f.exchanges.EXPECT().
		ListByStatus(gomock.Any(), model.ExchangeStatusFailed, defaultListLimit).
		Return([]model.ExchangeRecord{rec}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/settlements/failed", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []settlementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, rec.ID.String(), resp[0].ID)
	assert.Equal(t, "FAILED", resp[0].Status)
	require.NotNil(t, resp[0].FailureNote)
	assert.Equal(t, "platform 500", *resp[0].FailureNote)
}

func TestListFailedSettlementsLimit(t *testing.T) {
	f := newServerFixture(t)

	f.exchanges.EXPECT().
		ListByStatus(gomock.Any(), model.ExchangeStatusFailed, 5).
		Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/settlements/failed?limit=5", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetSettlement(t *testing.T) {
	f := newServerFixture(t)
	rec := failedRecord()

	f.exchanges.EXPECT().Get(gomock.Any(), rec.ID).Return(&rec, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/settlements/"+rec.ID.String(), nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetSettlementUnknownID(t *testing.T) {
	f := newServerFixture(t)
	id := uuid.New()

	f.exchanges.EXPECT().Get(gomock.Any(), id).Return(nil, store.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/settlements/"+id.String(), nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "settlement not found")
}

func TestGetSettlementStoreFault(t *testing.T) {
	f := newServerFixture(t)
	id := uuid.New()

	f.exchanges.EXPECT().Get(gomock.Any(), id).Return(nil, errors.New("connection reset"))

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/settlements/"+id.String(), nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetSettlementBadID(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/settlements/not-a-uuid", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetryRestoresAndExecutes(t *testing.T) {
	f := newServerFixture(t)
	id := uuid.New()

	f.exchanges.EXPECT().RestoreVerified(gomock.Any(), id).Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/settlements/"+id.String()+"/retry", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp retryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Restored)
	assert.True(t, resp.Executed)
	assert.Equal(t, []uuid.UUID{id}, f.retrier.executed)
}

func TestRetryNotRetryable(t *testing.T) {
	f := newServerFixture(t)
	id := uuid.New()

	f.exchanges.EXPECT().RestoreVerified(gomock.Any(), id).Return(false, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/settlements/"+id.String()+"/retry", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, f.retrier.executed)
}

func TestRetryExecutionFailsAgain(t *testing.T) {
	f := newServerFixture(t)
	id := uuid.New()
	f.retrier.result = false
	f.retrier.err = errors.New("still unreachable")

	f.exchanges.EXPECT().RestoreVerified(gomock.Any(), id).Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/settlements/"+id.String()+"/retry", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp retryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Restored)
	assert.False(t, resp.Executed)
	assert.Contains(t, resp.Error, "still unreachable")
}

func TestListFailedWagers(t *testing.T) {
	f := newServerFixture(t)
	note := "node timeout"

	f.wagers.EXPECT().
		ListByStatus(gomock.Any(), model.WagerStatusFailed, defaultListLimit).
		Return([]model.WagerRecord{{
			ID:          uuid.New(),
			Status:      model.WagerStatusFailed,
			RequesterID: "user-42",
			StakeNano:   2 * model.NanoPerTON,
			PayoutNano:  5 * model.NanoPerTON,
			Multiplier:  2.5,
			FailureNote: &note,
		}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/wagers/failed", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []wagerResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 2.0, resp[0].StakeTON)
	assert.Equal(t, 5.0, resp[0].PayoutTON)
}

func TestJackpotStatus(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/jackpot", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp jackpotResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 60.0, resp.BalanceTON)
}

func TestHealthz(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthzDatabaseDown(t *testing.T) {
	f := newServerFixture(t)
	f.pinger.err = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

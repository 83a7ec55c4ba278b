// Package admin exposes the operator surface: failed settlements, the
// explicit retry path, jackpot state and health. Retry is the only way a
// failed record moves again; the core never retries on its own.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

const defaultListLimit = 50

// SettlementRetrier re-drives a restored record through the executor.
// Satisfied by *exchange.Service.
type SettlementRetrier interface {
	Execute(ctx context.Context, id uuid.UUID) (bool, error)
}

// JackpotProvider exposes the current jackpot state. Satisfied by
// *wager.Service.
type JackpotProvider interface {
	Jackpot(ctx context.Context) (*model.JackpotState, error)
}

// Pinger reports storage liveness. Satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server provides the HTTP admin API.
type Server struct {
	exchanges store.ExchangeRepository
	wagers    store.WagerRepository
	retrier   SettlementRetrier
	jackpot   JackpotProvider
	db        Pinger
	logger    *slog.Logger
}

func NewServer(
	exchanges store.ExchangeRepository,
	wagers store.WagerRepository,
	retrier SettlementRetrier,
	jackpot JackpotProvider,
	db Pinger,
	logger *slog.Logger,
) *Server {
	return &Server{
		exchanges: exchanges,
		wagers:    wagers,
		retrier:   retrier,
		jackpot:   jackpot,
		db:        db,
		logger:    logger.With("component", "admin"),
	}
}

// Handler returns the HTTP handler for the admin API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/v1/settlements/failed", s.handleListFailed)
	mux.HandleFunc("GET /admin/v1/settlements/{id}", s.handleGetSettlement)
	mux.HandleFunc("POST /admin/v1/settlements/{id}/retry", s.handleRetry)
	mux.HandleFunc("GET /admin/v1/wagers/failed", s.handleListFailedWagers)
	mux.HandleFunc("GET /admin/v1/jackpot", s.handleJackpot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type settlementResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Counterparty string  `json:"counterparty"`
	Offered      string  `json:"offered"`
	Requested    string  `json:"requested"`
	ProfitTON    float64 `json:"profit_ton"`
	CreatedAt    string  `json:"created_at"`
	FailureNote  *string `json:"failure_note,omitempty"`
}

func settlementFromRecord(rec *model.ExchangeRecord) settlementResponse {
	return settlementResponse{
		ID:           rec.ID.String(),
		Status:       string(rec.Status),
		Counterparty: rec.CounterpartyID,
		Offered:      rec.Offered.String(),
		Requested:    rec.Requested.String(),
		ProfitTON:    rec.Compliance.ProfitTON,
		CreatedAt:    rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		FailureNote:  rec.Execution.FailureNote,
	}
}

func parseLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return defaultListLimit
}

func (s *Server) handleListFailed(w http.ResponseWriter, r *http.Request) {
	records, err := s.exchanges.ListByStatus(r.Context(), model.ExchangeStatusFailed, parseLimit(r))
	if err != nil {
		s.logger.Error("list failed settlements failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	resp := make([]settlementResponse, len(records))
	for i := range records {
		resp[i] = settlementFromRecord(&records[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid settlement id"}`, http.StatusBadRequest)
		return
	}

	rec, err := s.exchanges.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"settlement not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("get settlement failed", "record_id", id, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settlementFromRecord(rec))
}

type retryResponse struct {
	ID       string `json:"id"`
	Restored bool   `json:"restored"`
	Executed bool   `json:"executed"`
	Error    string `json:"error,omitempty"`
}

// handleRetry restores a failed record to verified and re-drives the
// executor. The restore only matches failed rows with a cleared claim, so a
// double-submitted retry is a 409, never a double payout.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid settlement id"}`, http.StatusBadRequest)
		return
	}

	restored, err := s.exchanges.RestoreVerified(r.Context(), id)
	if err != nil {
		s.logger.Error("settlement restore failed", "record_id", id, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if !restored {
		http.Error(w, `{"error":"record is not in a retryable state"}`, http.StatusConflict)
		return
	}

	s.logger.Info("settlement restored for retry", "record_id", id)

	executed, err := s.retrier.Execute(r.Context(), id)
	resp := retryResponse{ID: id.String(), Restored: true, Executed: executed}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type wagerResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Requester   string  `json:"requester"`
	StakeTON    float64 `json:"stake_ton"`
	PayoutTON   float64 `json:"payout_ton"`
	Multiplier  float64 `json:"multiplier"`
	FailureNote *string `json:"failure_note,omitempty"`
}

func (s *Server) handleListFailedWagers(w http.ResponseWriter, r *http.Request) {
	records, err := s.wagers.ListByStatus(r.Context(), model.WagerStatusFailed, parseLimit(r))
	if err != nil {
		s.logger.Error("list failed wagers failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	resp := make([]wagerResponse, len(records))
	for i, rec := range records {
		resp[i] = wagerResponse{
			ID:          rec.ID.String(),
			Status:      string(rec.Status),
			Requester:   rec.RequesterID,
			StakeTON:    model.NanoToTON(rec.StakeNano),
			PayoutTON:   model.NanoToTON(rec.PayoutNano),
			Multiplier:  rec.Multiplier,
			FailureNote: rec.FailureNote,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type jackpotResponse struct {
	BalanceTON    float64 `json:"balance_ton"`
	LastWinnerID  *string `json:"last_winner_id,omitempty"`
	LastAwardedAt *string `json:"last_awarded_at,omitempty"`
}

func (s *Server) handleJackpot(w http.ResponseWriter, r *http.Request) {
	state, err := s.jackpot.Jackpot(r.Context())
	if err != nil {
		s.logger.Error("jackpot read failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	resp := jackpotResponse{
		BalanceTON:   model.NanoToTON(state.BalanceNano),
		LastWinnerID: state.LastWinnerID,
	}
	if state.LastAwardedAt != nil {
		ts := state.LastAwardedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.LastAwardedAt = &ts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

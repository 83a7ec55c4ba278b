// Package journal appends immutable settlement records and fans them out to
// a Redis stream for downstream consumers. The Postgres append is the source
// of truth; the fan-out is best-effort.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/metrics"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

// DefaultStream is the Redis stream journal events are published to.
const DefaultStream = "settler:journal"

// Publisher pushes a journal event to the stream. *redis.Stream satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, stream string, v any) (string, error)
}

// Event is the wire shape of a fanned-out journal entry.
type Event struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	RecordID     string  `json:"record_id"`
	Counterparty string  `json:"counterparty"`
	OutflowKind  string  `json:"outflow_kind"`
	OutflowNano  int64   `json:"outflow_nano"`
	InflowKind   string  `json:"inflow_kind"`
	InflowNano   int64   `json:"inflow_nano"`
	ProfitTON    float64 `json:"profit_ton"`
	ClosedAt     string  `json:"closed_at"`
}

type Writer struct {
	repo      store.JournalRepository
	publisher Publisher
	stream    string
	logger    *slog.Logger
	nowFunc   func() time.Time
}

// NewWriter builds a journal writer. publisher may be nil when no Redis is
// configured; appends then skip fan-out.
func NewWriter(repo store.JournalRepository, publisher Publisher, stream string, logger *slog.Logger) *Writer {
	if stream == "" {
		stream = DefaultStream
	}
	return &Writer{
		repo:      repo,
		publisher: publisher,
		stream:    stream,
		logger:    logger.With("component", "journal"),
		nowFunc:   time.Now,
	}
}

// Append persists the entry and publishes it to the stream. A fan-out
// failure is logged and counted, never returned: the settlement already
// happened and the durable record is in Postgres.
func (w *Writer) Append(ctx context.Context, e *model.JournalEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ClosedAt.IsZero() {
		e.ClosedAt = w.nowFunc()
	}

	if err := w.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	metrics.JournalAppends.WithLabelValues(string(e.Kind)).Inc()

	if w.publisher == nil {
		return nil
	}

	event := Event{
		ID:           e.ID.String(),
		Kind:         string(e.Kind),
		RecordID:     e.RecordID.String(),
		Counterparty: e.Counterparty,
		OutflowKind:  string(e.OutflowKind),
		OutflowNano:  e.OutflowNano,
		InflowKind:   string(e.InflowKind),
		InflowNano:   e.InflowNano,
		ProfitTON:    e.ProfitTON,
		ClosedAt:     e.ClosedAt.UTC().Format(time.RFC3339Nano),
	}
	if _, err := w.publisher.PublishJSON(ctx, w.stream, event); err != nil {
		metrics.JournalFanoutErrors.Inc()
		w.logger.Warn("journal fan-out failed",
			"entry_id", e.ID, "kind", e.Kind, "error", err)
	}
	return nil
}

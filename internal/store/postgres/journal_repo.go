package postgres

import (
	"context"
	"fmt"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
)

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Append(ctx context.Context, e *model.JournalEntry) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO journal_entries (
			id, kind, record_id, counterparty,
			outflow_kind, outflow_nano, outflow_gift_ref,
			inflow_kind, inflow_nano, inflow_gift_ref,
			profit_ton, external_transfer_id, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		e.ID, e.Kind, e.RecordID, e.Counterparty,
		e.OutflowKind, e.OutflowNano, e.OutflowGiftRef,
		e.InflowKind, e.InflowNano, e.InflowGiftRef,
		e.ProfitTON, e.ExternalTransID, e.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

type ConsumedTransferRepo struct {
	db *DB
}

func NewConsumedTransferRepo(db *DB) *ConsumedTransferRepo {
	return &ConsumedTransferRepo{db: db}
}

// Consume appends the transfer to the anti-replay ledger. The primary key on
// transfer_id doing the work: a unique violation is translated to
// store.ErrAlreadyConsumed rather than a generic error.
func (r *ConsumedTransferRepo) Consume(ctx context.Context, ct *model.ConsumedTransfer) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO consumed_transfers (transfer_id, claimant_id, amount_nano, purpose, used_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ct.TransferID, ct.ClaimantID, ct.AmountNano, ct.Purpose, ct.UsedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return store.ErrAlreadyConsumed
		}
		return fmt.Errorf("consume transfer %s: %w", ct.TransferID, err)
	}
	return nil
}

func (r *ConsumedTransferRepo) Get(ctx context.Context, transferID string) (*model.ConsumedTransfer, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var ct model.ConsumedTransfer
	err := r.db.QueryRowContext(ctx, `
		SELECT transfer_id, claimant_id, amount_nano, purpose, used_at
		FROM consumed_transfers
		WHERE transfer_id = $1
	`, transferID).Scan(&ct.TransferID, &ct.ClaimantID, &ct.AmountNano, &ct.Purpose, &ct.UsedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get consumed transfer: %w", err)
	}
	return &ct, nil
}

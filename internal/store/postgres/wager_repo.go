package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

type WagerRepo struct {
	db *DB
}

func NewWagerRepo(db *DB) *WagerRepo {
	return &WagerRepo{db: db}
}

const wagerColumns = `
	id, requester_id, chat, stake_nano, status,
	stake_transfer_id, funded_at, payer_address,
	multiplier, payout_nano,
	claimed_at, completed_at, external_transfer_id, failure_note,
	created_at, expires_at`

func (r *WagerRepo) Create(ctx context.Context, w *model.WagerRecord) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wagers (id, requester_id, chat, stake_nano, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, w.ID, w.RequesterID, w.Chat, w.StakeNano, w.Status, w.CreatedAt, w.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert wager: %w", err)
	}
	return nil
}

func (r *WagerRepo) Get(ctx context.Context, id uuid.UUID) (*model.WagerRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE id = $1
	`, id)

	w, err := scanWager(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wager: %w", err)
	}
	return w, nil
}

func (r *WagerRepo) MarkFunded(ctx context.Context, id uuid.UUID, transferID, payerAddress string, fundedAt time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE wagers
		SET status = $2, stake_transfer_id = $3, funded_at = $4, payer_address = $5
		WHERE id = $1 AND status = $6
	`, id, model.WagerStatusFunded, transferID, fundedAt, payerAddress, model.WagerStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark wager funded: %w", err)
	}
	return oneRowAffected(res)
}

func (r *WagerRepo) SetOutcome(ctx context.Context, id uuid.UUID, multiplier float64, payoutNano int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE wagers
		SET multiplier = $2, payout_nano = $3
		WHERE id = $1 AND status = $4 AND claimed_at IS NULL AND completed_at IS NULL
	`, id, multiplier, payoutNano, model.WagerStatusFunded)
	if err != nil {
		return false, fmt.Errorf("set wager outcome: %w", err)
	}
	return oneRowAffected(res)
}

func (r *WagerRepo) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE wagers
		SET claimed_at = $2
		WHERE id = $1 AND status = $3 AND payout_nano > 0 AND claimed_at IS NULL
	`, id, now, model.WagerStatusFunded)
	if err != nil {
		return false, fmt.Errorf("claim wager: %w", err)
	}
	return oneRowAffected(res)
}

func (r *WagerRepo) Complete(ctx context.Context, id uuid.UUID, externalTransferID *string, completedAt time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE wagers
		SET status = $2, completed_at = $3, external_transfer_id = $4
		WHERE id = $1 AND status = $5
	`, id, model.WagerStatusSettled, completedAt, externalTransferID, model.WagerStatusFunded)
	if err != nil {
		return false, fmt.Errorf("complete wager: %w", err)
	}
	return oneRowAffected(res)
}

func (r *WagerRepo) Fail(ctx context.Context, id uuid.UUID, note string) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE wagers
		SET status = $2, claimed_at = NULL, failure_note = $3
		WHERE id = $1 AND status = $4
	`, id, model.WagerStatusFailed, note, model.WagerStatusFunded)
	if err != nil {
		return false, fmt.Errorf("fail wager: %w", err)
	}
	return oneRowAffected(res)
}

func (r *WagerRepo) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE wagers
		SET status = $2
		WHERE id = $1 AND status = $3
	`, id, model.WagerStatusExpired, model.WagerStatusPending)
	if err != nil {
		return false, fmt.Errorf("expire wager: %w", err)
	}
	return oneRowAffected(res)
}

func (r *WagerRepo) LatestCreatedAt(ctx context.Context, requesterID string) (*time.Time, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var t time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT created_at
		FROM wagers
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, requesterID).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest wager time: %w", err)
	}
	return &t, nil
}

func (r *WagerRepo) CountSince(ctx context.Context, requesterID string, since time.Time) (int, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM wagers
		WHERE requester_id = $1 AND created_at >= $2
	`, requesterID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count wagers since: %w", err)
	}
	return n, nil
}

func (r *WagerRepo) ListByStatus(ctx context.Context, status model.WagerStatus, limit int) ([]model.WagerRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list wagers: %w", err)
	}
	defer rows.Close()

	var wagers []model.WagerRecord
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wager: %w", err)
		}
		wagers = append(wagers, *w)
	}
	return wagers, rows.Err()
}

func scanWager(row rowScanner) (*model.WagerRecord, error) {
	var w model.WagerRecord
	if err := row.Scan(
		&w.ID, &w.RequesterID, &w.Chat, &w.StakeNano, &w.Status,
		&w.StakeTransferID, &w.FundedAt, &w.PayerAddress,
		&w.Multiplier, &w.PayoutNano,
		&w.ClaimedAt, &w.CompletedAt, &w.ExternalTransferID, &w.FailureNote,
		&w.CreatedAt, &w.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}

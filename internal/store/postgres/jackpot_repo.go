package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

type JackpotRepo struct {
	db *DB
}

func NewJackpotRepo(db *DB) *JackpotRepo {
	return &JackpotRepo{db: db}
}

func (r *JackpotRepo) Get(ctx context.Context) (*model.JackpotState, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var j model.JackpotState
	err := r.db.QueryRowContext(ctx, `
		SELECT balance_nano, last_winner_id, last_awarded_at, updated_at
		FROM jackpot_state
		WHERE id = 1
	`).Scan(&j.BalanceNano, &j.LastWinnerID, &j.LastAwardedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get jackpot state: %w", err)
	}
	return &j, nil
}

func (r *JackpotRepo) Accrue(ctx context.Context, amountNano int64) error {
	if amountNano <= 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE jackpot_state
		SET balance_nano = balance_nano + $1, updated_at = now()
		WHERE id = 1
	`, amountNano)
	if err != nil {
		return fmt.Errorf("accrue jackpot: %w", err)
	}
	return nil
}

// TryAward re-checks eligibility inside the statement and captures the prior
// state in the same round trip, so two concurrent award attempts cannot both
// succeed and a failed payout can be compensated exactly.
func (r *JackpotRepo) TryAward(ctx context.Context, winnerID string, floorNano int64, cooldown time.Duration) (*store.JackpotAward, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var award store.JackpotAward
	err := r.db.QueryRowContext(ctx, `
		WITH prev AS (
			SELECT balance_nano, last_winner_id, last_awarded_at
			FROM jackpot_state
			WHERE id = 1
			FOR UPDATE
		)
		UPDATE jackpot_state s
		SET balance_nano = 0, last_winner_id = $1, last_awarded_at = now(), updated_at = now()
		FROM prev
		WHERE s.id = 1
		  AND prev.balance_nano >= $2
		  AND (prev.last_awarded_at IS NULL OR prev.last_awarded_at <= now() - $3 * interval '1 second')
		RETURNING prev.balance_nano, prev.last_winner_id, prev.last_awarded_at
	`, winnerID, floorNano, cooldown.Seconds()).Scan(&award.AmountNano, &award.PrevWinnerID, &award.PrevAwardedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("try jackpot award: %w", err)
	}
	return &award, nil
}

// Compensate adds the awarded amount back and restores the prior winner
// fields. It is a compensating action, not a transactional rollback: accruals
// that landed while the payout was in flight are preserved.
func (r *JackpotRepo) Compensate(ctx context.Context, award *store.JackpotAward) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE jackpot_state
		SET balance_nano = balance_nano + $1, last_winner_id = $2, last_awarded_at = $3, updated_at = now()
		WHERE id = 1
	`, award.AmountNano, award.PrevWinnerID, award.PrevAwardedAt)
	if err != nil {
		return fmt.Errorf("compensate jackpot award: %w", err)
	}
	return nil
}

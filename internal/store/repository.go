package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
)

var (
	// ErrAlreadyConsumed is returned by ConsumedTransferRepository.Consume
	// when the transfer id has already been used by another obligation. The
	// unique constraint on transfer_id is the detection mechanism.
	ErrAlreadyConsumed = errors.New("transfer already consumed")

	// ErrNotFound is returned by the Get methods when no row matches. A
	// lookup never yields a nil record with a nil error.
	ErrNotFound = errors.New("record not found")
)

// Every at-most-once transition in this core is a single conditional UPDATE
// whose affected-row count the repository surfaces as a bool: false means
// another process already moved the row. Callers treat false as a benign
// race loss (a Conflict), never as an error.

// ExchangeRepository provides access to exchange records.
type ExchangeRepository interface {
	Create(ctx context.Context, rec *model.ExchangeRecord) error

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id uuid.UUID) (*model.ExchangeRecord, error)

	// Transition moves a record from one status to another. Used for the
	// simple edges: accept, decline, cancel, expire.
	Transition(ctx context.Context, id uuid.UUID, from, to model.ExchangeStatus) (bool, error)

	// MarkVerified moves accepted → verified and stores the matched payment
	// in the same statement, so a record transitions to verified at most once.
	MarkVerified(ctx context.Context, id uuid.UUID, transferID, payerAddress string, verifiedAt time.Time) (bool, error)

	// Claim sets claimed_at iff the record is verified and unclaimed.
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// Complete moves verified → completed and stores the outbound receipt.
	Complete(ctx context.Context, id uuid.UUID, externalTransferID string, completedAt time.Time) (bool, error)

	// Fail moves the record to failed, clears the claim marker so an
	// operator retry remains possible, and persists the failure note.
	Fail(ctx context.Context, id uuid.UUID, note string) (bool, error)

	// RestoreVerified moves failed → verified for an explicit operator
	// retry. Never called by the core itself.
	RestoreVerified(ctx context.Context, id uuid.UUID) (bool, error)

	ListByStatus(ctx context.Context, status model.ExchangeStatus, limit int) ([]model.ExchangeRecord, error)
}

// ConsumedTransferRepository is the anti-replay ledger.
type ConsumedTransferRepository interface {
	// Consume appends the transfer id. Returns ErrAlreadyConsumed if some
	// obligation has already used it.
	Consume(ctx context.Context, ct *model.ConsumedTransfer) error

	// Get returns ErrNotFound for an unconsumed transfer id.
	Get(ctx context.Context, transferID string) (*model.ConsumedTransfer, error)
}

// WagerRepository provides access to wager records. The conditional-update
// contract matches ExchangeRepository.
type WagerRepository interface {
	Create(ctx context.Context, w *model.WagerRecord) error

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id uuid.UUID) (*model.WagerRecord, error)

	// MarkFunded moves pending → funded with the consumed stake transfer.
	MarkFunded(ctx context.Context, id uuid.UUID, transferID, payerAddress string, fundedAt time.Time) (bool, error)

	// SetOutcome records the multiplier and payout on a funded wager that
	// has not been settled yet.
	SetOutcome(ctx context.Context, id uuid.UUID, multiplier float64, payoutNano int64) (bool, error)

	// Claim sets claimed_at iff the wager is funded, owes a payout and is
	// unclaimed.
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// Complete moves funded → settled; payout receipt may be nil for losing
	// wagers that owe nothing.
	Complete(ctx context.Context, id uuid.UUID, externalTransferID *string, completedAt time.Time) (bool, error)

	Fail(ctx context.Context, id uuid.UUID, note string) (bool, error)
	Expire(ctx context.Context, id uuid.UUID) (bool, error)

	// LatestCreatedAt returns the creation time of the requester's most
	// recent wager, or nil if they have none. Backs the cooldown guard.
	LatestCreatedAt(ctx context.Context, requesterID string) (*time.Time, error)

	// CountSince counts the requester's wagers created at or after since.
	// Backs the per-bucket rate cap.
	CountSince(ctx context.Context, requesterID string, since time.Time) (int, error)

	ListByStatus(ctx context.Context, status model.WagerStatus, limit int) ([]model.WagerRecord, error)
}

// JackpotAward is the prior jackpot state captured by a successful award,
// kept for the compensating rollback if the payout transfer fails.
type JackpotAward struct {
	AmountNano    int64
	PrevWinnerID  *string
	PrevAwardedAt *time.Time
}

// JackpotRepository manages the single durable jackpot row.
type JackpotRepository interface {
	Get(ctx context.Context) (*model.JackpotState, error)

	// Accrue adds amountNano to the jackpot balance.
	Accrue(ctx context.Context, amountNano int64) error

	// TryAward zeroes the balance and records the winner in one conditional
	// statement that re-checks eligibility (balance >= floor, cooldown
	// elapsed). Returns (nil, nil) when not eligible or when a concurrent
	// award won the race.
	TryAward(ctx context.Context, winnerID string, floorNano int64, cooldown time.Duration) (*JackpotAward, error)

	// Compensate restores the awarded amount and the prior winner fields
	// after a failed payout. Concurrent accruals during the payout call are
	// preserved (the amount is added back, not assigned).
	Compensate(ctx context.Context, award *JackpotAward) error
}

// JournalRepository is the append-only audit sink. Reporting is out of this
// core's responsibility.
type JournalRepository interface {
	Append(ctx context.Context, e *model.JournalEntry) error
}

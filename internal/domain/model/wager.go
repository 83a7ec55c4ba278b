package model

import (
	"time"

	"github.com/google/uuid"
)

type WagerStatus string

const (
	WagerStatusPending WagerStatus = "PENDING" // created, stake not yet seen on ledger
	WagerStatusFunded  WagerStatus = "FUNDED"  // stake verified and consumed
	WagerStatusSettled WagerStatus = "SETTLED" // outcome applied, payout (if any) sent
	WagerStatusExpired WagerStatus = "EXPIRED"
	WagerStatusFailed  WagerStatus = "FAILED" // payout transfer failed, needs operator
)

func (s WagerStatus) String() string {
	return string(s)
}

func (s WagerStatus) Terminal() bool {
	switch s {
	case WagerStatusSettled, WagerStatusExpired, WagerStatusFailed:
		return true
	}
	return false
}

// WagerRecord is a one-sided stake against a table-driven payout. The
// execution columns mirror ExchangeRecord so the settlement executor can
// drive both through the same claim protocol.
type WagerRecord struct {
	ID          uuid.UUID   `db:"id"`
	RequesterID string      `db:"requester_id"`
	Chat        int64       `db:"chat"`
	StakeNano   int64       `db:"stake_nano"`
	Status      WagerStatus `db:"status"`

	StakeTransferID string     `db:"stake_transfer_id"`
	FundedAt        *time.Time `db:"funded_at"`
	PayerAddress    string     `db:"payer_address"`

	Multiplier float64 `db:"multiplier"`
	PayoutNano int64   `db:"payout_nano"`

	ClaimedAt          *time.Time `db:"claimed_at"`
	CompletedAt        *time.Time `db:"completed_at"`
	ExternalTransferID *string    `db:"external_transfer_id"`
	FailureNote        *string    `db:"failure_note"`

	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (w *WagerRecord) ExpiredAt(now time.Time) bool {
	if w.Status != WagerStatusPending {
		return false
	}
	return now.After(w.ExpiresAt)
}

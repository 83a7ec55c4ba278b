package model

import "time"

// TransferPurpose tags why a ledger transfer was consumed.
type TransferPurpose string

const (
	TransferPurposeExchange   TransferPurpose = "EXCHANGE"
	TransferPurposeWagerStake TransferPurpose = "WAGER_STAKE"
)

// ConsumedTransfer is one row of the anti-replay ledger. TransferID is the
// primary key; a failed insert on that constraint is the replay signal.
type ConsumedTransfer struct {
	TransferID string          `db:"transfer_id"`
	ClaimantID string          `db:"claimant_id"`
	AmountNano int64           `db:"amount_nano"`
	Purpose    TransferPurpose `db:"purpose"`
	UsedAt     time.Time       `db:"used_at"`
}

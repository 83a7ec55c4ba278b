package model

import (
	"time"

	"github.com/google/uuid"
)

type ExchangeStatus string

const (
	ExchangeStatusProposed  ExchangeStatus = "PROPOSED"
	ExchangeStatusAccepted  ExchangeStatus = "ACCEPTED"
	ExchangeStatusVerified  ExchangeStatus = "VERIFIED"
	ExchangeStatusCompleted ExchangeStatus = "COMPLETED"
	ExchangeStatusDeclined  ExchangeStatus = "DECLINED"
	ExchangeStatusExpired   ExchangeStatus = "EXPIRED"
	ExchangeStatusCancelled ExchangeStatus = "CANCELLED"
	ExchangeStatusFailed    ExchangeStatus = "FAILED"
)

func (s ExchangeStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are allowed from s.
func (s ExchangeStatus) Terminal() bool {
	switch s {
	case ExchangeStatusCompleted, ExchangeStatusDeclined, ExchangeStatusExpired,
		ExchangeStatusCancelled, ExchangeStatusFailed:
		return true
	}
	return false
}

// ComplianceResult records the policy verdict attached to a record at
// proposal time. Persisted as JSONB.
type ComplianceResult struct {
	Acceptable bool    `json:"acceptable"`
	Rule       string  `json:"rule"`
	ProfitTON  float64 `json:"profit_ton"`
	Reason     string  `json:"reason,omitempty"`
}

// Verification holds the matched counterparty payment once the verifier has
// consumed it.
type Verification struct {
	TransferID   string     `db:"verified_transfer_id"`
	VerifiedAt   *time.Time `db:"verified_at"`
	PayerAddress string     `db:"payer_address"`
}

// Execution tracks the agent side of the settlement. ClaimedAt doubles as
// the at-most-once claim marker: it is set by the executor's conditional
// claim and cleared again on failure so an operator retry is possible.
type Execution struct {
	ClaimedAt          *time.Time `db:"claimed_at"`
	CompletedAt        *time.Time `db:"completed_at"`
	ExternalTransferID *string    `db:"external_transfer_id"`
	FailureNote        *string    `db:"failure_note"`
}

// ExchangeRecord is a negotiated two-sided exchange between the agent and a
// Telegram counterparty. Records are never deleted; terminal states are kept
// for audit.
type ExchangeRecord struct {
	ID             uuid.UUID        `db:"id"`
	Status         ExchangeStatus   `db:"status"`
	InitiatorChat  int64            `db:"initiator_chat"`
	CounterpartyID string           `db:"counterparty_id"`
	Offered        AssetValue       `db:"offered"`
	Requested      AssetValue       `db:"requested"`
	Compliance     ComplianceResult `db:"compliance"`
	Verification   Verification     `db:"verification"`
	Execution      Execution        `db:"execution"`
	CreatedAt      time.Time        `db:"created_at"`
	ExpiresAt      time.Time        `db:"expires_at"`
	Notes          *string          `db:"notes"`
}

// ExpiredAt reports whether the record's proposal window has lapsed at now.
// Only non-terminal, pre-verification states are subject to expiry.
func (r *ExchangeRecord) ExpiredAt(now time.Time) bool {
	if r.Status != ExchangeStatusProposed && r.Status != ExchangeStatusAccepted {
		return false
	}
	return now.After(r.ExpiresAt)
}

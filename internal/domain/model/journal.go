package model

import (
	"time"

	"github.com/google/uuid"
)

type JournalKind string

const (
	JournalKindExchange JournalKind = "EXCHANGE"
	JournalKindWager    JournalKind = "WAGER"
	JournalKindJackpot  JournalKind = "JACKPOT"
)

// JournalEntry is the immutable audit record of one completed settlement.
// Append-only; never mutated after ClosedAt is set.
type JournalEntry struct {
	ID           uuid.UUID   `db:"id"`
	Kind         JournalKind `db:"kind"`
	RecordID     uuid.UUID   `db:"record_id"`
	Counterparty string      `db:"counterparty"`

	// Asset flow from the agent's perspective.
	OutflowKind     AssetKind `db:"outflow_kind"`
	OutflowNano     int64     `db:"outflow_nano"`
	OutflowGiftRef  *string   `db:"outflow_gift_ref"`
	InflowKind      AssetKind `db:"inflow_kind"`
	InflowNano      int64     `db:"inflow_nano"`
	InflowGiftRef   *string   `db:"inflow_gift_ref"`
	ProfitTON       float64   `db:"profit_ton"`
	ExternalTransID *string   `db:"external_transfer_id"`

	ClosedAt time.Time `db:"closed_at"`
}

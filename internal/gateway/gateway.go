// Package gateway defines the contracts for every external collaborator the
// settlement core talks to: the TON ledger, the agent's gift inventory, the
// Telegram messenger and the gift value oracle. The core depends only on
// these interfaces; concrete HTTP clients live in the subpackages.
package gateway

import (
	"context"
	"fmt"
	"time"
)

// LedgerTransfer is one incoming transfer observed on the ledger.
type LedgerTransfer struct {
	ID         string
	AmountNano int64
	Sender     string
	Memo       string
	Timestamp  time.Time
}

// Ledger moves and observes currency on TON.
type Ledger interface {
	// SubmitTransfer broadcasts an outbound transfer and returns its id.
	SubmitTransfer(ctx context.Context, destination string, amountNano int64, memo string) (string, error)

	// QueryIncoming lists transfers received by account since the given time.
	QueryIncoming(ctx context.Context, account string, since time.Time) ([]LedgerTransfer, error)

	// Balance returns the spendable balance of account in nanotons.
	Balance(ctx context.Context, account string) (int64, error)
}

// GiftReceipt is one collectible that appeared in the agent's inventory.
type GiftReceipt struct {
	ItemID     string
	GiftRef    string
	SenderID   string
	ReceivedAt time.Time
}

// ErrPaymentRequired is returned by GiftInventory.TransferGift when the
// platform demands a fee before the transfer can proceed. The caller pays the
// invoice and resubmits.
type ErrPaymentRequired struct {
	Invoice    string
	AmountNano int64
}

func (e *ErrPaymentRequired) Error() string {
	return fmt.Sprintf("payment required: %d nanoton, invoice %s", e.AmountNano, e.Invoice)
}

// GiftInventory observes and moves unique collectibles.
type GiftInventory interface {
	// RecentlyReceived lists collectibles that recently arrived in the
	// agent's inventory, newest first.
	RecentlyReceived(ctx context.Context, account string) ([]GiftReceipt, error)

	// TransferGift sends a collectible to the destination and returns the
	// platform transfer id. May return *ErrPaymentRequired.
	TransferGift(ctx context.Context, giftRef, destinationID string) (string, error)

	// PayInvoice settles a platform fee invoice.
	PayInvoice(ctx context.Context, invoice string) error
}

// Messenger delivers proposal cards and notifications over Telegram.
type Messenger interface {
	// DeliverProposalCard sends the proposal UI to the chat. The returned
	// bool reports whether the counterparty actually received it.
	DeliverProposalCard(ctx context.Context, chatID int64, recordID string, text string) (bool, error)

	// Notify sends a plain message. Callers treat failures as non-fatal.
	Notify(ctx context.Context, chatID int64, text string) error
}

// ValueOracle estimates the reference value of a collectible in TON.
type ValueOracle interface {
	EstimateValue(ctx context.Context, giftRef string) (float64, error)
}

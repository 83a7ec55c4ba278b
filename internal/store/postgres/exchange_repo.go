package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
	"github.com/itsdeadcow/teleton-agent-sub001/internal/store"
)

type ExchangeRepo struct {
	db *DB
}

func NewExchangeRepo(db *DB) *ExchangeRepo {
	return &ExchangeRepo{db: db}
}

const exchangeColumns = `
	id, status, initiator_chat, counterparty_id,
	offered_kind, offered_quantity, offered_gift_ref, offered_ref_value,
	requested_kind, requested_quantity, requested_gift_ref, requested_ref_value,
	compliance,
	verified_transfer_id, verified_at, payer_address,
	claimed_at, completed_at, external_transfer_id, failure_note,
	notes, created_at, expires_at`

func (r *ExchangeRepo) Create(ctx context.Context, rec *model.ExchangeRecord) error {
	compliance, err := json.Marshal(rec.Compliance)
	if err != nil {
		return fmt.Errorf("marshal compliance: %w", err)
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO exchange_records (
			id, status, initiator_chat, counterparty_id,
			offered_kind, offered_quantity, offered_gift_ref, offered_ref_value,
			requested_kind, requested_quantity, requested_gift_ref, requested_ref_value,
			compliance, notes, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		rec.ID, rec.Status, rec.InitiatorChat, rec.CounterpartyID,
		rec.Offered.Kind, rec.Offered.QuantityNano, rec.Offered.GiftRef, rec.Offered.RefValueTON,
		rec.Requested.Kind, rec.Requested.QuantityNano, rec.Requested.GiftRef, rec.Requested.RefValueTON,
		compliance, rec.Notes, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert exchange record: %w", err)
	}
	return nil
}

func (r *ExchangeRepo) Get(ctx context.Context, id uuid.UUID) (*model.ExchangeRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+exchangeColumns+`
		FROM exchange_records
		WHERE id = $1
	`, id)

	rec, err := scanExchange(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exchange record: %w", err)
	}
	return rec, nil
}

func (r *ExchangeRepo) Transition(ctx context.Context, id uuid.UUID, from, to model.ExchangeStatus) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE exchange_records
		SET status = $3
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("transition exchange %s -> %s: %w", from, to, err)
	}
	return oneRowAffected(res)
}

func (r *ExchangeRepo) MarkVerified(ctx context.Context, id uuid.UUID, transferID, payerAddress string, verifiedAt time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE exchange_records
		SET status = $2, verified_transfer_id = $3, verified_at = $4, payer_address = $5
		WHERE id = $1 AND status = $6
	`, id, model.ExchangeStatusVerified, transferID, verifiedAt, payerAddress, model.ExchangeStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("mark exchange verified: %w", err)
	}
	return oneRowAffected(res)
}

func (r *ExchangeRepo) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE exchange_records
		SET claimed_at = $2
		WHERE id = $1 AND status = $3 AND claimed_at IS NULL
	`, id, now, model.ExchangeStatusVerified)
	if err != nil {
		return false, fmt.Errorf("claim exchange: %w", err)
	}
	return oneRowAffected(res)
}

func (r *ExchangeRepo) Complete(ctx context.Context, id uuid.UUID, externalTransferID string, completedAt time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE exchange_records
		SET status = $2, completed_at = $3, external_transfer_id = $4
		WHERE id = $1 AND status = $5
	`, id, model.ExchangeStatusCompleted, completedAt, externalTransferID, model.ExchangeStatusVerified)
	if err != nil {
		return false, fmt.Errorf("complete exchange: %w", err)
	}
	return oneRowAffected(res)
}

func (r *ExchangeRepo) Fail(ctx context.Context, id uuid.UUID, note string) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE exchange_records
		SET status = $2, claimed_at = NULL, failure_note = $3
		WHERE id = $1 AND status = $4
	`, id, model.ExchangeStatusFailed, note, model.ExchangeStatusVerified)
	if err != nil {
		return false, fmt.Errorf("fail exchange: %w", err)
	}
	return oneRowAffected(res)
}

func (r *ExchangeRepo) RestoreVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE exchange_records
		SET status = $2, failure_note = NULL
		WHERE id = $1 AND status = $3 AND claimed_at IS NULL
	`, id, model.ExchangeStatusVerified, model.ExchangeStatusFailed)
	if err != nil {
		return false, fmt.Errorf("restore exchange to verified: %w", err)
	}
	return oneRowAffected(res)
}

func (r *ExchangeRepo) ListByStatus(ctx context.Context, status model.ExchangeStatus, limit int) ([]model.ExchangeRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+exchangeColumns+`
		FROM exchange_records
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list exchange records: %w", err)
	}
	defer rows.Close()

	var records []model.ExchangeRecord
	for rows.Next() {
		rec, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exchange record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (*model.ExchangeRecord, error) {
	var (
		rec        model.ExchangeRecord
		compliance []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.Status, &rec.InitiatorChat, &rec.CounterpartyID,
		&rec.Offered.Kind, &rec.Offered.QuantityNano, &rec.Offered.GiftRef, &rec.Offered.RefValueTON,
		&rec.Requested.Kind, &rec.Requested.QuantityNano, &rec.Requested.GiftRef, &rec.Requested.RefValueTON,
		&compliance,
		&rec.Verification.TransferID, &rec.Verification.VerifiedAt, &rec.Verification.PayerAddress,
		&rec.Execution.ClaimedAt, &rec.Execution.CompletedAt, &rec.Execution.ExternalTransferID, &rec.Execution.FailureNote,
		&rec.Notes, &rec.CreatedAt, &rec.ExpiresAt,
	); err != nil {
		return nil, err
	}
	if len(compliance) > 0 {
		if err := json.Unmarshal(compliance, &rec.Compliance); err != nil {
			return nil, fmt.Errorf("unmarshal compliance: %w", err)
		}
	}
	return &rec, nil
}

// oneRowAffected maps an update result to the conditional-transition
// contract: one row means the caller won the transition, zero means another
// process already moved the record.
func oneRowAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

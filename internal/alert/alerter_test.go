package alert

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureAlerter struct {
	mu   sync.Mutex
	seen []Alert
	fail error
}

func (c *captureAlerter) Send(_ context.Context, a Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.seen = append(c.seen, a)
	return nil
}

func (c *captureAlerter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func TestMultiAlerterCooldown(t *testing.T) {
	capture := &captureAlerter{}
	m := NewMultiAlerter(time.Minute, slog.Default(), capture)

	a := Alert{Type: AlertTypeSettlementFailed, RecordID: "rec-1", Title: "settlement failed"}

	require.NoError(t, m.Send(context.Background(), a))
	require.NoError(t, m.Send(context.Background(), a))

	assert.Equal(t, 1, capture.count(), "second send within cooldown should be suppressed")
}

func TestMultiAlerterDistinctRecordsNotSuppressed(t *testing.T) {
	capture := &captureAlerter{}
	m := NewMultiAlerter(time.Minute, slog.Default(), capture)

	require.NoError(t, m.Send(context.Background(), Alert{Type: AlertTypeSettlementFailed, RecordID: "rec-1"}))
	require.NoError(t, m.Send(context.Background(), Alert{Type: AlertTypeSettlementFailed, RecordID: "rec-2"}))
	require.NoError(t, m.Send(context.Background(), Alert{Type: AlertTypeJackpotPayoutFailed, RecordID: "rec-1"}))

	assert.Equal(t, 3, capture.count())
}

func TestMultiAlerterCooldownExpiry(t *testing.T) {
	capture := &captureAlerter{}
	m := NewMultiAlerter(10*time.Millisecond, slog.Default(), capture)

	a := Alert{Type: AlertTypeReplayAttempt, RecordID: "rec-9"}
	require.NoError(t, m.Send(context.Background(), a))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, m.Send(context.Background(), a))

	assert.Equal(t, 2, capture.count())
}

func TestNopAlerter(t *testing.T) {
	assert.NoError(t, NopAlerter{}.Send(context.Background(), Alert{Type: AlertTypeSettlementFailed}))
}

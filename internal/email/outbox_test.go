package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatedNotifier struct {
	gate chan struct{}
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *gatedNotifier) PasswordReset(ctx context.Context, to, _ string) error {
	select {
	case <-n.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to)
	return n.err
}

func TestOutboxDrainWaitsForQueuedNotices(t *testing.T) {
	next := &gatedNotifier{gate: make(chan struct{})}
	outbox := NewOutbox(next, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, outbox.PasswordReset(ctx, "mango@example.com", "Mango"))
	cancel()

	short, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	assert.ErrorIs(t, outbox.Drain(short), context.DeadlineExceeded)

	close(next.gate)
	require.NoError(t, outbox.Drain(context.Background()))
	assert.Equal(t, []string{"mango@example.com"}, next.sent)
}

func TestOutboxSwallowsDeliveryErrors(t *testing.T) {
	next := &gatedNotifier{gate: make(chan struct{}), err: errors.New("smtp down")}
	close(next.gate)
	outbox := NewOutbox(next, time.Minute)

	assert.NoError(t, outbox.PasswordReset(context.Background(), "a@example.com", "A"))
	assert.NoError(t, outbox.PasswordReset(context.Background(), "b@example.com", "B"))
	require.NoError(t, outbox.Drain(context.Background()))
	assert.Len(t, next.sent, 2)
}

func TestOutboxAppliesTimeout(t *testing.T) {
	next := &gatedNotifier{gate: make(chan struct{})}
	outbox := NewOutbox(next, 10*time.Millisecond)

	require.NoError(t, outbox.PasswordReset(context.Background(), "slow@example.com", "Slow"))
	require.NoError(t, outbox.Drain(context.Background()))
	assert.Empty(t, next.sent)
}

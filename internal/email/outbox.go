package email

import (
	"context"
	"sync"
	"time"

	"github.com/MANGOpali/attendance-backend/internal/logger"
)

// Outbox delivers notices in the background. PasswordReset returns once the
// notice is queued; Drain waits for everything queued so far.
type Outbox struct {
	next    Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewOutbox(next Notifier, timeout time.Duration) *Outbox {
	return &Outbox{next: next, timeout: timeout}
}

func (o *Outbox) PasswordReset(ctx context.Context, to, name string) error {
	ctx = context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		if err := o.next.PasswordReset(ctx, to, name); err != nil {
			logger.Warn("email.send_failed", "notice", "password_reset", "to", to, "err", err)
		}
	}()
	return nil
}

// Drain blocks until queued notices finish or ctx ends. Call it after the
// HTTP server has stopped accepting requests.
func (o *Outbox) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package marine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garrettladley/marine/internal/xslog"
)

// refresher lets at most one session refresh run at a time. Callers that
// arrive while a refresh is in flight wait for its outcome instead of
// starting their own.
type refresher struct {
	mu       sync.Mutex
	inFlight bool
	pending  []chan error

	refresh func(ctx context.Context) error
	expired func(ctx context.Context, err error)
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// Refresh returns nil once the session has been refreshed, or the refresh
// error. Only the caller that ran a failed refresh invokes the expiry hook.
func (r *refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if r.inFlight {
		done := make(chan error, 1)
		r.pending = append(r.pending, done)
		queued := len(r.pending)
		r.mu.Unlock()

		r.metrics.observeQueued()
		r.logger.DebugContext(ctx, "session refresh in flight, queueing request", xslog.Queued(queued))

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.inFlight = true
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "refreshing session")
	start := time.Now()
	err := r.run(ctx)

	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.inFlight = false
	r.mu.Unlock()

	for _, done := range pending {
		done <- err
	}
	r.metrics.observeRefresh(err)

	if err != nil {
		r.logger.WarnContext(ctx, "session refresh failed",
			xslog.Error(err),
			xslog.Queued(len(pending)),
			xslog.Duration(time.Since(start)),
		)
		r.expired(ctx, err)
		return err
	}

	r.logger.DebugContext(ctx, "session refreshed",
		xslog.Queued(len(pending)),
		xslog.Duration(time.Since(start)),
	)
	return nil
}

// run ignores the caller's cancellation; the refresh is bounded by timeout only.
func (r *refresher) run(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return nil
}

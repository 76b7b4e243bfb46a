package reconciler

import (
	"context"
	"log/slog"
	"time"
)

// InviteExpirer flips pending invites past their expiry to expired.
type InviteExpirer interface {
	ExpireInvites(ctx context.Context, now time.Time) (int64, error)
}

// Reconciler periodically expires stale team invites.
type Reconciler struct {
	invites  InviteExpirer
	interval time.Duration
	now      func() time.Time
}

// New creates a new Reconciler.
func New(invites InviteExpirer, interval time.Duration) *Reconciler {
	return &Reconciler{
		invites:  invites,
		interval: interval,
		now:      time.Now,
	}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	slog.Info("reconciler started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	n, err := r.invites.ExpireInvites(ctx, r.now())
	if err != nil {
		slog.Error("reconciler: failed to expire invites", "error", err)
		return
	}

	if n > 0 {
		slog.Info("reconciler: invites expired", "count", n)
	}
}

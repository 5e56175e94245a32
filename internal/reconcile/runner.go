package reconcile

import (
	"context"
	"log/slog"
	"time"
)

// Runner drives periodic reconciliation passes for deployments without an
// external cron. It ticks at a fixed interval and can be woken early via
// Notify.
type Runner struct {
	svc      *Service
	interval time.Duration
	notify   chan struct{}
}

func NewRunner(svc *Service, interval time.Duration) *Runner {
	return &Runner{
		svc:      svc,
		interval: interval,
		notify:   make(chan struct{}, 1),
	}
}

// Notify requests a pass outside the regular schedule. Non-blocking; a
// pending request is not queued twice.
func (r *Runner) Notify() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. A pass already in flight finishes
// before the runner exits.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.notify:
		case <-ticker.C:
		}

		if _, err := r.svc.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("scheduled reconciliation failed", "error", err)
		}
	}
}

package admin

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// CountFunc reports the current number of orders. Implementations must not
// panic; errors make the synchronizer skip the cycle and retry next tick.
type CountFunc func(ctx context.Context) (int, error)

// Alerter raises the audible alert for newly arrived orders. One call per
// poll cycle, no matter how many orders arrived in the window.
type Alerter interface {
	Alert(ctx context.Context, newOrders, total int)
}

// Synchronizer gives the operator console near-real-time visibility into
// new orders without a push channel: it polls the order count and alerts
// when it grew. Muting suppresses the alert only; the count bookkeeping
// keeps running so unmuting never replays stale deltas.
type Synchronizer struct {
	log      *slog.Logger
	count    CountFunc
	alerter  Alerter
	interval time.Duration

	muted    atomic.Bool
	previous int
}

func NewSynchronizer(log *slog.Logger, count CountFunc, alerter Alerter, interval time.Duration) *Synchronizer {
	return &Synchronizer{
		log:      log,
		count:    count,
		alerter:  alerter,
		interval: interval,
	}
}

// SetMuted toggles alert emission without affecting counting.
func (s *Synchronizer) SetMuted(muted bool) {
	s.muted.Store(muted)
}

func (s *Synchronizer) Muted() bool {
	return s.muted.Load()
}

// Run seeds the baseline count and polls until ctx is cancelled. The
// ticker is always released on return.
func (s *Synchronizer) Run(ctx context.Context) {
	if n, err := s.count(ctx); err != nil {
		s.log.Error("synchronizer baseline count failed, starting from zero", "err", err)
	} else {
		s.previous = n
	}

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("synchronizer stopping")
			return
		case <-t.C:
			s.poll(ctx)
		}
	}
}

func (s *Synchronizer) poll(ctx context.Context) {
	current, err := s.count(ctx)
	if err != nil {
		s.log.Error("order count failed, skipping cycle", "err", err)
		return
	}
	if current > s.previous {
		delta := current - s.previous
		if !s.muted.Load() {
			s.alerter.Alert(ctx, delta, current)
		}
	}
	s.previous = current
}

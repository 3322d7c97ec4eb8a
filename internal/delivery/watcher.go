package delivery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/diskleads/leadmarket-backend/internal/orders"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
	"github.com/diskleads/leadmarket-backend/pkg/mailer"
	"github.com/diskleads/leadmarket-backend/pkg/metrics"
)

// JobName labels the watcher in logs and metrics.
const JobName = "delivery-watcher"

const defaultInterval = 15 * time.Second

// Watcher scans for paid, undelivered orders and emails the purchased export.
// It claims each order with a conditional update before sending, so a
// concurrent scan can never deliver the same order twice.
type Watcher struct {
	repo     orders.Repository
	sender   mailer.Sender
	logg     *logger.Logger
	metrics  *metrics.JobMetrics
	lock     Lock
	interval time.Duration
}

// WatcherParams wire the delivery watcher. Lock is optional; with multiple
// worker replicas it keeps passes from overlapping.
type WatcherParams struct {
	Orders   orders.Repository
	Sender   mailer.Sender
	Logger   *logger.Logger
	Metrics  *metrics.JobMetrics
	Lock     Lock
	Interval time.Duration
}

func NewWatcher(params WatcherParams) (*Watcher, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: JobName})
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Watcher{
		repo:     params.Orders,
		sender:   params.Sender,
		logg:     logg,
		metrics:  params.Metrics,
		lock:     params.Lock,
		interval: interval,
	}, nil
}

// Run executes delivery passes until the context is canceled. A failing pass
// is logged and the loop continues; nothing short of cancellation stops it.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = w.logg.WithJob(ctx, JobName)

	if err := w.runPass(ctx); err != nil {
		w.logg.Error(ctx, "delivery pass failed", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "delivery watcher stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.runPass(ctx); err != nil {
				w.logg.Error(ctx, "delivery pass failed", err)
			}
		}
	}
}

func (w *Watcher) runPass(ctx context.Context) error {
	if w.lock != nil {
		locked, err := w.lock.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("lock acquire: %w", err)
		}
		if !locked {
			w.logg.Info(ctx, "another watcher instance holds the lock; skipping pass")
			return nil
		}
		defer func() {
			if relErr := w.lock.Release(ctx); relErr != nil {
				w.logg.Error(ctx, "failed to release watcher lock", relErr)
			}
		}()
	}

	start := time.Now()
	err := w.RunOnce(ctx)
	w.metrics.ObserveDuration(JobName, time.Since(start))
	if err != nil {
		w.metrics.IncFailure(JobName)
		return err
	}
	w.metrics.IncSuccess(JobName)
	return nil
}

// RunOnce performs a single scan-and-deliver pass. Per-order failures are
// collected and returned together; one bad order never blocks the rest.
func (w *Watcher) RunOnce(ctx context.Context) error {
	rows, err := w.repo.FindPaidUndelivered(ctx)
	if err != nil {
		return fmt.Errorf("scanning paid undelivered orders: %w", err)
	}

	var errs error
	for i := range rows {
		order := &rows[i]
		orderCtx := w.logg.WithReference(ctx, order.Reference)

		claimed, err := w.repo.ClaimDelivery(orderCtx, order.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("claiming order %s: %w", order.Reference, err))
			continue
		}
		if !claimed {
			// another pass is already delivering this order
			continue
		}

		if err := w.sender.Send(orderCtx, order.CustomerEmail, EmailSubject(order), EmailBody(order)); err != nil {
			// release so the next interval retries
			if relErr := w.repo.ReleaseDeliveryClaim(orderCtx, order.ID); relErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("releasing claim for %s: %w", order.Reference, relErr))
			}
			errs = multierr.Append(errs, fmt.Errorf("sending order %s: %w", order.Reference, err))
			continue
		}

		w.metrics.IncDelivered(JobName)
		w.logg.Info(orderCtx, "order delivered")
	}
	return errs
}

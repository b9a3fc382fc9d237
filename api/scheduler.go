/*
scheduler.go - Automated monthly payroll runs

PURPOSE:
  Periodically makes sure the payroll run for the current month has been
  recorded. Each month's run is evaluated at the first local instant of
  the month and keyed by payroll.MonthKey, so restarts and repeated checks
  never record a month twice.

  A month cannot be paid while someone hired after its first instant is in
  staff (their salary at that instant is undefined). Such a month is
  reported once at Warn and retried on every tick.

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPayrollScheduler(handler, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreatePayrollRun endpoint (manual runs)
  - payroll/ledger.go: Idempotency keys
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/staff"
)

// PayrollScheduler records one payroll run per calendar month.
type PayrollScheduler struct {
	Handler       *Handler
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	// last month reported by deferMonth, guarded by Handler.mu
	deferred string

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPayrollScheduler creates a new scheduler.
func NewPayrollScheduler(handler *Handler, logger *slog.Logger) *PayrollScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollScheduler{
		Handler:       handler,
		Logger:        logger.With(slog.String("component", "scheduler")),
		CheckInterval: time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.Logger.Info("disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)
	go ps.run()

	ps.Logger.Info("started", slog.Duration("check_interval", ps.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight check.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.ticker = nil
		ps.Logger.Info("stopped")
	}
}

func (ps *PayrollScheduler) run() {
	defer ps.wg.Done()

	// Run immediately on start
	ps.RunNow()

	for {
		select {
		case <-ps.ticker.C:
			ps.RunNow()
		case <-ps.stop:
			return
		}
	}
}

// RunNow performs one check and reports whether a run was recorded.
func (ps *PayrollScheduler) RunNow() bool {
	ctx := logging.WithLogger(context.Background(), ps.Logger)
	recorded, err := ps.checkMonth(ctx, ps.Handler.Now())
	if err != nil {
		ps.Logger.Error("monthly payroll failed", slog.Any("error", err))
		return false
	}
	return recorded
}

func (ps *PayrollScheduler) checkMonth(ctx context.Context, now time.Time) (bool, error) {
	now = now.In(time.Local)
	key := payroll.MonthKey(now.Year(), now.Month())

	h := ps.Handler
	h.mu.Lock()
	defer h.mu.Unlock()

	done, err := h.Ledger.Recorded(ctx, key)
	if err != nil {
		return false, err
	}
	if done {
		ps.Logger.Debug("month already recorded", slog.String("key", key))
		return false, nil
	}

	at, err := payroll.MonthStart(now.Year(), now.Month())
	if err != nil {
		return false, err
	}
	if _, err := h.recordRun(ctx, at, key); err != nil {
		if errors.Is(err, staff.ErrBeforeHireTime) {
			ps.deferMonth(key, err)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// deferMonth reports a month that cannot be paid yet because someone was
// hired after its first instant. It warns once per month and retries
// quietly afterwards. Callers hold Handler.mu.
func (ps *PayrollScheduler) deferMonth(key string, err error) {
	if ps.deferred == key {
		ps.Logger.Debug("monthly payroll still deferred", slog.String("key", key))
		return
	}
	ps.deferred = key
	ps.Logger.Warn("monthly payroll deferred",
		slog.String("key", key),
		slog.Any("error", err))
}

// NextRunTime returns when the next scheduled check will occur.
func (ps *PayrollScheduler) NextRunTime() time.Time {
	return ps.Handler.Now().Add(ps.CheckInterval)
}

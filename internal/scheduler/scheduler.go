// Package scheduler drives recurring billing work: the daily overdue sweep
// and automatic rent generation on the configured day of month.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/rentora/internal/actorcontext"
	"github.com/smallbiznis/rentora/internal/clock"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	"github.com/smallbiznis/rentora/internal/metrics"
	"github.com/smallbiznis/rentora/internal/scheduler/guard"
	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	jobSweepOverdue = "sweep_overdue"
	jobGenerateRent = "generate_rent"

	runLockKey = "rentora:scheduler:run"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log         *zap.Logger
	InvoiceSvc  invoicedomain.Service
	SettingsSvc settingsdomain.Service
	Clock       clock.Clock
	Locker      *Locker          `optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
	Config      Config           `optional:"true"`
}

type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	invoiceSvc  invoicedomain.Service
	settingsSvc settingsdomain.Service
	locker      *Locker
	guard       *guard.Guard
	metrics     *metrics.Metrics

	mu      sync.Mutex
	running bool
	nextRun time.Time
}

// Status is the operator-facing view of the scheduler.
type Status struct {
	Running  bool                        `json:"running"`
	NextRun  time.Time                   `json:"next_run"`
	Settings settingsdomain.RentSettings `json:"settings"`
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.InvoiceSvc == nil || p.SettingsSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		invoiceSvc:  p.InvoiceSvc,
		settingsSvc: p.SettingsSvc,
		locker:      p.Locker,
		guard:       guard.New(),
		metrics:     p.Metrics,
	}, nil
}

// RunOnce executes one tick: the overdue sweep, then rent generation when
// it is due. Overlapping ticks are skipped, either via the redis lock when
// configured or the in-process guard otherwise, so two generation runs
// never overlap.
func (s *Scheduler) RunOnce(parent context.Context) error {
	release, acquired, err := s.acquire(parent)
	if err != nil {
		return err
	}
	if !acquired {
		s.log.Info("previous run still in progress, skipping tick")
		return nil
	}
	defer release()

	return errors.Join(
		s.runJob(parent, jobSweepOverdue, s.sweepOverdueJob),
		s.runJob(parent, jobGenerateRent, s.generateRentJob),
	)
}

// RunForever ticks until the context is cancelled. The first run happens
// immediately; generation stays safe across restarts because it is
// idempotent per (unit, month).
func (s *Scheduler) RunForever(ctx context.Context) {
	s.setRunning(true)
	defer s.setRunning(false)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		s.setNextRun(s.clock.Now().Add(s.cfg.TickInterval))
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error("scheduler tick failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Status reports whether the loop is running, the next tick, and the
// settings the generation job will honor.
func (s *Scheduler) Status(ctx context.Context) (Status, error) {
	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return Status{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:  s.running,
		NextRun:  s.nextRun,
		Settings: settings,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()
	ctx = actorcontext.WithActor(ctx, "scheduler")

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) sweepOverdueJob(ctx context.Context) error {
	_, err := s.invoiceSvc.SweepOverdue(ctx, s.clock.Now())
	return err
}

// generateRentJob fires on the configured day of month, clamped to short
// months. Re-running on the same day only produces skips, so an hourly
// tick needs no durable "already ran today" marker.
func (s *Scheduler) generateRentJob(ctx context.Context) error {
	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.AutoGenerateRent {
		return nil
	}

	now := s.clock.Now()
	day := settings.RentGenerationDay
	if last := lastDayOfMonth(now); day > last {
		day = last
	}
	if now.Day() != day {
		return nil
	}

	period := invoicedomain.MonthOf(now, settings.RentDueDays)
	run, err := s.invoiceSvc.Generate(ctx, period)
	if err != nil {
		return err
	}
	s.log.Info("automatic rent generation finished",
		zap.Int("year", period.Year()),
		zap.Int("month", period.Month()),
		zap.Int("created", len(run.CreatedInvoices)),
		zap.Int("skipped", len(run.SkippedUnits)),
	)
	return nil
}

func (s *Scheduler) acquire(ctx context.Context) (release func(), acquired bool, err error) {
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, runLockKey, s.cfg.LockTTL)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		return func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), runLockKey, token); err != nil {
				s.log.Warn("failed to release scheduler lock", zap.Error(err))
			}
		}, true, nil
	}

	if !s.guard.TryAcquire() {
		return nil, false, nil
	}
	return s.guard.Release, true, nil
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = v
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun = t
}

func lastDayOfMonth(t time.Time) int {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

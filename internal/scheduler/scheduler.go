// Package scheduler runs library sync, return detection and month close on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/ranking"
	"github.com/mcoot/spendboard/internal/services/reconcile"
)

// Job names
const (
	JobSyncLibraries = "sync-libraries"
	JobDetectReturns = "detect-returns"
	JobCloseMonth    = "close-month"
)

// Reconciler is the library reconciliation engine
type Reconciler interface {
	SyncLibraries(ctx context.Context) (*reconcile.SyncReport, error)
	DetectReturns(ctx context.Context) (*reconcile.ReturnsReport, error)
}

// MonthCloser closes the previous month
type MonthCloser interface {
	ClosePreviousMonth(ctx context.Context) (*ranking.CloseReport, error)
}

// Config holds cron expressions for each job. An empty expression disables the job.
type Config struct {
	SyncSchedule       string
	ReturnsSchedule    string
	CloseMonthSchedule string
	// Location is the time zone schedules are evaluated in
	Location *time.Location
	// JobTimeout bounds a single job run
	JobTimeout time.Duration
}

// DefaultConfig returns the default schedules
func DefaultConfig() Config {
	return Config{
		SyncSchedule:       "0 */6 * * *",
		ReturnsSchedule:    "30 */6 * * *",
		CloseMonthSchedule: "5 0 1 * *",
		Location:           time.UTC,
		JobTimeout:         30 * time.Minute,
	}
}

// Scheduler owns the cron jobs
type Scheduler struct {
	sched      gocron.Scheduler
	reconciler Reconciler
	closer     MonthCloser
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a Scheduler and registers the configured jobs
func New(cfg Config, reconciler Reconciler, closer MonthCloser, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultConfig().JobTimeout
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		sched:      sched,
		reconciler: reconciler,
		closer:     closer,
		timeout:    cfg.JobTimeout,
		logger:     logger.With(slog.String("component", "scheduler")),
	}

	jobs := []struct {
		name string
		expr string
		run  func(context.Context) error
	}{
		{JobSyncLibraries, cfg.SyncSchedule, s.runSync},
		{JobDetectReturns, cfg.ReturnsSchedule, s.runReturns},
		{JobCloseMonth, cfg.CloseMonthSchedule, s.runCloseMonth},
	}

	for _, job := range jobs {
		if job.expr == "" {
			continue
		}
		if err := s.add(job.name, job.expr, job.run); err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) add(name, expr string, run func(context.Context) error) error {
	_, err := s.sched.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			start := time.Now()
			if err := run(ctx); err != nil {
				s.logger.Error("job failed",
					slog.String("job", name),
					slog.String("error", err.Error()),
				)
				return
			}
			s.logger.Info("job finished",
				slog.String("job", name),
				slog.Duration("duration", time.Since(start)),
			)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s (%q): %w", name, expr, err)
	}
	return nil
}

// Start begins running jobs
func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("scheduler started", slog.Any("jobs", s.JobNames()))
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// JobNames lists the registered jobs
func (s *Scheduler) JobNames() []string {
	jobs := s.sched.Jobs()
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name()
	}
	return names
}

func (s *Scheduler) runSync(ctx context.Context) error {
	report, err := s.reconciler.SyncLibraries(ctx)
	if errors.Is(err, model.ErrCatalogNotConfigured) {
		s.logger.Warn("skipping library sync: catalog not configured")
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("scheduled sync complete", slog.Int("new_games", report.NewGames()))
	return nil
}

func (s *Scheduler) runReturns(ctx context.Context) error {
	report, err := s.reconciler.DetectReturns(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("scheduled return check complete",
		slog.Int("removed", len(report.Removed)),
		slog.Int("removed_pending", len(report.RemovedPending)),
	)
	return nil
}

func (s *Scheduler) runCloseMonth(ctx context.Context) error {
	report, err := s.closer.ClosePreviousMonth(ctx)
	if errors.Is(err, model.ErrMonthAlreadyClosed) {
		s.logger.Info("previous month already closed")
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("scheduled month close complete",
		slog.Int("month", report.Month),
		slog.Int("year", report.Year),
	)
	return nil
}

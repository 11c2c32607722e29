package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/config"
)

// Exporter snapshots the registry.
type Exporter interface {
	Export(ctx context.Context) (int, error)
	Summary(ctx context.Context, at time.Time) (string, error)
}

// Notifier delivers the snapshot summary.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	exporter Exporter
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ExportConfig, exporter Exporter, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		exporter: exporter,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the export job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runExport); err != nil {
		return fmt.Errorf("schedule registry export %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running export to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runExport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.logger.Info("exporting registry")

	n, err := s.exporter.Export(ctx)
	if err != nil {
		s.logger.Error("failed to export registry", zap.Error(err))
	} else {
		s.logger.Info("registry export finished", zap.Int("parcels", n))
	}

	summary, err := s.exporter.Summary(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to build registry summary", zap.Error(err))
		return
	}

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, summary); err != nil {
		s.logger.Error("failed to send registry summary", zap.Error(err))
	} else {
		s.logger.Info("registry summary sent")
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the activity report on a cron schedule (UTC).
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	schedule   string
	reportFunc func(ctx context.Context) error
	logger     *zap.Logger
}

func New(schedule string, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		ctx:      ctx,
		cancel:   cancel,
		schedule: schedule,
		logger:   logger,
	}
}

// SetReportFunction sets the job run on every tick.
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job and starts the cron loop.
// Without a report function it does nothing.
func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		s.logger.Warn("report function not set, scheduler will not generate reports")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.runReport)
	if err != nil {
		return fmt.Errorf("schedule report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

func (s *Scheduler) runReport() {
	s.logger.Info("triggered activity report")
	if err := s.reportFunc(s.ctx); err != nil {
		s.logger.Error("activity report failed", zap.Error(err))
	}
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

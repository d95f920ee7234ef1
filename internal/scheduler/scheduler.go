package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const exportTimeout = 2 * time.Minute

// ReportExporter writes the inventory report somewhere durable.
type ReportExporter interface {
	Export(ctx context.Context) error
}

// Scheduler runs the periodic inventory report export.
type Scheduler struct {
	cron     *cron.Cron
	exporter ReportExporter
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler for a standard five-field cron expression.
func NewScheduler(schedule string, exporter ReportExporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		exporter: exporter,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the export job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.exportReport); err != nil {
		return err
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running export to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) exportReport() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	if err := s.exporter.Export(ctx); err != nil {
		s.logger.Error("failed to export inventory report", zap.Error(err))
		return
	}
	s.logger.Info("scheduled inventory report exported")
}

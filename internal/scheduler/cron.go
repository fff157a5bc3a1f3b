package scheduler

import (
	"context"
	"fmt"

	"github.com/amaumene/purgarr/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages the periodic retention scan
type Scheduler struct {
	cron          *cron.Cron
	retentionCtrl *controllers.RetentionController
	schedule      string
	logger        *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(retentionCtrl *controllers.RetentionController, schedule string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		retentionCtrl: retentionCtrl,
		schedule:      schedule,
		logger:        logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.WithField("schedule", s.schedule).Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runRetention()
	})
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runRetention executes the retention scan job
func (s *Scheduler) runRetention() {
	s.logger.Info("Running scheduled retention scan")
	ctx := context.Background()

	if err := s.retentionCtrl.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Retention job failed")
	} else {
		s.logger.Info("Retention job completed successfully")
	}
}

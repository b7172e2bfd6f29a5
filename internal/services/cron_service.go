package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	alertSvc *AlertService
	logger   *logrus.Logger

	sweepSchedule string
}

// NewCronService creates a new CronService
func NewCronService(alertSvc *AlertService, logger *logrus.Logger, sweepSchedule string) *CronService {
	// Seconds precision, matching the schedule format in config
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:          c,
		alertSvc:      alertSvc,
		logger:        logger,
		sweepSchedule: sweepSchedule,
	}
}

// Start schedules all background jobs and starts the scheduler
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.sweepSchedule, s.overstaySweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule overstay sweep: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.sweepSchedule).Info("Overstay sweep scheduled")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// overstaySweepJob flags checked-in passes past their scheduled exit. The
// dashboard fetch also sweeps, so this only matters for quiet periods when
// nobody is watching.
func (s *CronService) overstaySweepJob() {
	startTime := time.Now()

	flagged, err := s.alertSvc.SweepOverstayed()
	if err != nil {
		s.logger.WithError(err).Error("Overstay sweep job failed")
		return
	}

	if flagged > 0 {
		s.logger.WithFields(logrus.Fields{
			"flagged":  flagged,
			"duration": time.Since(startTime),
		}).Info("Overstay sweep flagged passes")
	}
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RetentionService periodically purges old build history
type RetentionService struct {
	history   *HistoryService
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *logrus.Logger
}

func NewRetentionService(history *HistoryService, retention time.Duration, schedule string, logger *logrus.Logger) *RetentionService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RetentionService{
		history:   history,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the purge job and starts the scheduler
func (s *RetentionService) Start() error {
	if s.retention <= 0 {
		s.logger.Info("History retention disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.purge); err != nil {
		return fmt.Errorf("failed to schedule history purge: %w", err)
	}
	s.cron.Start()

	s.logger.WithFields(logrus.Fields{
		"schedule":  s.schedule,
		"retention": s.retention.String(),
	}).Info("History retention started")
	return nil
}

// Stop waits for a running purge to finish
func (s *RetentionService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce purges immediately
func (s *RetentionService) RunOnce(ctx context.Context) (int64, error) {
	return s.history.PurgeOlderThan(ctx, s.retention)
}

func (s *RetentionService) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.WithError(err).Error("History purge failed")
		return
	}
	s.logger.WithField("deleted", deleted).Info("History purge completed")
}

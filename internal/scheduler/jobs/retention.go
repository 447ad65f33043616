package jobs

import (
	"context"

	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// RetentionJob deletes signal log rows past the retention window
type RetentionJob struct {
	signals       *s5_signallog.Service
	retentionDays int
	schedule      string
	logger        *logger.Logger
}

// NewRetentionJob creates a new retention job
func NewRetentionJob(signals *s5_signallog.Service, retentionDays int, schedule string, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		signals:       signals,
		retentionDays: retentionDays,
		schedule:      schedule,
		logger:        log,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "signal_retention"
}

// Schedule returns the cron schedule (default: Sunday 03:00)
func (j *RetentionJob) Schedule() string {
	return j.schedule
}

// Run purges expired rows
func (j *RetentionJob) Run(ctx context.Context) error {
	n, err := j.signals.PurgeOlderThan(ctx, j.retentionDays)
	if err != nil {
		return err
	}

	if n > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed":        n,
			"retention_days": j.retentionDays,
		}).Info("Signal retention completed")
	}
	return nil
}

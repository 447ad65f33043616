package jobs

import (
	"context"

	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// OutcomeJob fills signal price-after-N-days slots from daily prices
type OutcomeJob struct {
	evaluator *s5_signallog.OutcomeEvaluator
	schedule  string
	logger    *logger.Logger
}

// NewOutcomeJob creates a new outcome evaluation job
func NewOutcomeJob(evaluator *s5_signallog.OutcomeEvaluator, schedule string, log *logger.Logger) *OutcomeJob {
	return &OutcomeJob{
		evaluator: evaluator,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *OutcomeJob) Name() string {
	return "signal_outcomes"
}

// Schedule returns the cron schedule (default: weekdays after close)
func (j *OutcomeJob) Schedule() string {
	return j.schedule
}

// Run evaluates one batch of pending outcomes
func (j *OutcomeJob) Run(ctx context.Context) error {
	report, err := j.evaluator.Run(ctx)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		j.logger.WithField("failed", report.Failed).Warn("Some outcome prices could not be loaded")
	}
	return nil
}

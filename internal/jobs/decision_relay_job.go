package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DecisionRelayJob redelivers queued tenant decisions to Central.
type DecisionRelayJob struct {
	handler  commands.RetryDecisionRelaysCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewDecisionRelayJob(
	handler commands.RetryDecisionRelaysCommandHandler,
	schedule string,
	logger *slog.Logger,
) *DecisionRelayJob {
	return &DecisionRelayJob{
		handler:  handler,
		schedule: schedule,
		cron:     newCron(),
		logger:   logger.With("component", "decision_relay_job"),
	}
}

// RunOnce performs a single retry pass.
func (j *DecisionRelayJob) RunOnce(ctx context.Context) {
	report, err := j.handler.Handle(ctx, commands.NewRetryDecisionRelaysCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Decision relay retry failed", "error", err)
		return
	}
	logReport(ctx, j.logger, "Decision relay retry pass finished", report)
}

func (j *DecisionRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Decision relay job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running pass to finish.
func (j *DecisionRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Decision relay job stopped")
}

func logReport(ctx context.Context, logger *slog.Logger, msg string, report commands.RetryReport) {
	if report == (commands.RetryReport{}) {
		return
	}
	logger.InfoContext(ctx, msg,
		"delivered", report.Delivered,
		"failed", report.Failed,
		"exhausted", report.Exhausted,
		"skipped", report.Skipped,
	)
}

// newCron builds a scheduler that never overlaps two runs of the same job.
func newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}

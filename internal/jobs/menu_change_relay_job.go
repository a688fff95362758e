package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// MenuChangeRelayJob redelivers queued menu changes. The queue's backoff decides which
// items a pass actually sends, so the schedule can be short.
type MenuChangeRelayJob struct {
	handler  commands.RetryMenuChangeRelaysCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewMenuChangeRelayJob(
	handler commands.RetryMenuChangeRelaysCommandHandler,
	schedule string,
	logger *slog.Logger,
) *MenuChangeRelayJob {
	return &MenuChangeRelayJob{
		handler:  handler,
		schedule: schedule,
		cron:     newCron(),
		logger:   logger.With("component", "menu_change_relay_job"),
	}
}

func (j *MenuChangeRelayJob) RunOnce(ctx context.Context) {
	report, err := j.handler.Handle(ctx, commands.NewRetryMenuChangeRelaysCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Menu change relay retry failed", "error", err)
		return
	}
	logReport(ctx, j.logger, "Menu change relay retry pass finished", report)
}

func (j *MenuChangeRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Menu change relay job started", "schedule", j.schedule)
	return nil
}

func (j *MenuChangeRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Menu change relay job stopped")
}

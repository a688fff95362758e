package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// HousekeepingJob drops stale push connections and evicts finished orders from the cache.
type HousekeepingJob struct {
	sweepHandler commands.SweepStaleConnectionsCommandHandler
	purgeHandler commands.PurgeFinishedOrdersCommandHandler
	maxAge       time.Duration
	retention    time.Duration
	schedule     string
	cron         *cron.Cron
	logger       *slog.Logger
}

// HousekeepingConfig holds the schedule and thresholds of HousekeepingJob.
type HousekeepingConfig struct {
	Schedule          string
	ConnectionMaxAge  time.Duration
	FinishedRetention time.Duration
}

func NewHousekeepingJob(
	sweepHandler commands.SweepStaleConnectionsCommandHandler,
	purgeHandler commands.PurgeFinishedOrdersCommandHandler,
	cfg HousekeepingConfig,
	logger *slog.Logger,
) *HousekeepingJob {
	return &HousekeepingJob{
		sweepHandler: sweepHandler,
		purgeHandler: purgeHandler,
		maxAge:       cfg.ConnectionMaxAge,
		retention:    cfg.FinishedRetention,
		schedule:     cfg.Schedule,
		cron:         newCron(),
		logger:       logger.With("component", "housekeeping_job"),
	}
}

func (j *HousekeepingJob) RunOnce(ctx context.Context) {
	sweep, err := commands.NewSweepStaleConnectionsCommand(j.maxAge)
	if err != nil {
		j.logger.ErrorContext(ctx, "Invalid connection max age", "error", err)
	} else if swept, sweepErr := j.sweepHandler.Handle(ctx, sweep); sweepErr != nil {
		j.logger.ErrorContext(ctx, "Connection sweep failed", "error", sweepErr)
	} else if swept > 0 {
		j.logger.InfoContext(ctx, "Stale connections swept", "count", swept)
	}

	purge, err := commands.NewPurgeFinishedOrdersCommand(j.retention)
	if err != nil {
		j.logger.ErrorContext(ctx, "Invalid order retention", "error", err)
		return
	}
	purged, err := j.purgeHandler.Handle(ctx, purge)
	if err != nil {
		j.logger.ErrorContext(ctx, "Order purge failed", "error", err)
		return
	}
	if purged > 0 {
		j.logger.InfoContext(ctx, "Finished orders purged", "count", purged)
	}
}

func (j *HousekeepingJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Housekeeping job started", "schedule", j.schedule)
	return nil
}

func (j *HousekeepingJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Housekeeping job stopped")
}

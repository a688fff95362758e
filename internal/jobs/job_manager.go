package jobs

import (
	"fmt"
	"log/slog"
)

type job interface {
	Start() error
	Stop()
}

// JobManager starts and stops the background jobs as one unit.
type JobManager struct {
	decisionRelayJob   *DecisionRelayJob
	menuChangeRelayJob *MenuChangeRelayJob
	housekeepingJob    *HousekeepingJob
	logger             *slog.Logger
}

func NewJobManager(
	decisionRelayJob *DecisionRelayJob,
	menuChangeRelayJob *MenuChangeRelayJob,
	housekeepingJob *HousekeepingJob,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		decisionRelayJob:   decisionRelayJob,
		menuChangeRelayJob: menuChangeRelayJob,
		housekeepingJob:    housekeepingJob,
		logger:             logger.With("component", "job_manager"),
	}
}

func (jm *JobManager) jobs() []struct {
	name string
	job  job
} {
	return []struct {
		name string
		job  job
	}{
		{"decision relay", jm.decisionRelayJob},
		{"menu change relay", jm.menuChangeRelayJob},
		{"housekeeping", jm.housekeepingJob},
	}
}

// StartAll starts every job. If one fails to start, the ones already running are stopped.
func (jm *JobManager) StartAll() error {
	started := make([]job, 0, 3)
	for _, j := range jm.jobs() {
		if err := j.job.Start(); err != nil {
			for _, s := range started {
				s.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
		started = append(started, j.job)
	}
	return nil
}

// StopAll stops every job and waits for running passes to finish.
func (jm *JobManager) StopAll() {
	for _, j := range jm.jobs() {
		j.job.Stop()
	}
	jm.logger.Info("All jobs stopped")
}

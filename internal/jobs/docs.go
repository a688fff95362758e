// Package jobs runs the periodic work of the fulfillment service on
// github.com/robfig/cron/v3 schedules.
//
// # Available Jobs
//
//  1. DecisionRelayJob - redelivers queued tenant decisions to Central
//  2. MenuChangeRelayJob - redelivers queued menu changes once their backoff has elapsed
//  3. HousekeepingJob - drops push connections older than the max age and evicts finished
//     orders from the cache
//
// # Usage
//
//	jobManager := jobs.NewJobManager(decisionJob, menuJob, housekeepingJob, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules accept the six field cron syntax with seconds as well as descriptors such as
// "@every 30m". A pass that is still running when its next tick fires is skipped.
//
// # Error Handling
//
// Jobs never stop on a failed pass. Failures are logged and the next tick tries again.
// Relays that reach the retry limit stay queued and are logged at error level.
package jobs

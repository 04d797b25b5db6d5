// Package jobs provides scheduled background tasks for the dispatch engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to drive the periodic halves of the broadcast lifecycle.
//
// # Available Jobs
//
// 1. ReadyQueueScannerJob - Runs every 10 seconds to open broadcasts for pending jobs
// 2. BroadcastExpiryJob - Runs every 30 seconds to retry or escalate overdue broadcasts
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(scanHandler, expireHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both jobs use second-granularity cron expressions and skip a tick when the
// previous run is still in flight, so a slow database never stacks sweeps.
// The intervals are deliberately coarser than the broadcast durations they
// police: a broadcast may be seen as overdue up to one sweep interval late,
// and the acceptance deadline check tolerates that.
//
// # Error Handling
//
// - Per-job failures inside a batch are logged and skipped by the handlers
// - A failed tick is logged; the next tick retries from current state
// - Failed job starts will stop any already running jobs
package jobs

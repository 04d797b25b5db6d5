package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	readyQueueScannerJob *ReadyQueueScannerJob
	broadcastExpiryJob   *BroadcastExpiryJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	scanHandler commands.ScanReadyQueueCommandHandler,
	expireHandler commands.ExpireBroadcastsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		readyQueueScannerJob: NewReadyQueueScannerJob(scanHandler, logger),
		broadcastExpiryJob:   NewBroadcastExpiryJob(expireHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.readyQueueScannerJob.Start(); err != nil {
		return fmt.Errorf("failed to start ready queue scanner: %w", err)
	}

	if err := jm.broadcastExpiryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.readyQueueScannerJob.Stop()
		return fmt.Errorf("failed to start broadcast expiry sweep: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.broadcastExpiryJob.Stop()
	jm.readyQueueScannerJob.Stop()
}

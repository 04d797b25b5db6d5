package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ReadyQueueScannerJob periodically picks up pending jobs and opens a
// broadcast for each. Runs every ten seconds.
type ReadyQueueScannerJob struct {
	handler commands.ScanReadyQueueCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewReadyQueueScannerJob creates the scanner job. A tick that outlives the
// interval is skipped rather than run concurrently, so two scans never race
// over the same pending jobs.
func NewReadyQueueScannerJob(handler commands.ScanReadyQueueCommandHandler, logger *slog.Logger) *ReadyQueueScannerJob {
	return &ReadyQueueScannerJob{
		handler: handler,
		cron: cron.New(cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "ready_queue_scanner_job"),
	}
}

// Start begins the scanner job to run every ten seconds.
func (j *ReadyQueueScannerJob) Start() error {
	_, err := j.cron.AddFunc("*/10 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewScanReadyQueueCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Ready queue scan failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Ready queue scanner started (running every 10 seconds)")
	return nil
}

// Stop stops the scanner job.
func (j *ReadyQueueScannerJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Ready queue scanner stopped")
}

package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// BroadcastExpiryJob periodically sweeps overdue broadcasts: expired jobs are
// retried with escalated parameters or handed to an operator once the attempt
// budget runs out. Runs every thirty seconds.
type BroadcastExpiryJob struct {
	handler commands.ExpireBroadcastsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewBroadcastExpiryJob creates the expiry sweep job. Overlapping sweeps are
// skipped; a courier acceptance racing the sweep is resolved by the
// conditional write, not by scheduling.
func NewBroadcastExpiryJob(handler commands.ExpireBroadcastsCommandHandler, logger *slog.Logger) *BroadcastExpiryJob {
	return &BroadcastExpiryJob{
		handler: handler,
		cron: cron.New(cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "broadcast_expiry_job"),
	}
}

// Start begins the expiry sweep to run every thirty seconds.
func (j *BroadcastExpiryJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewExpireBroadcastsCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Broadcast expiry sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Broadcast expiry sweep started (running every 30 seconds)")
	return nil
}

// Stop stops the expiry sweep.
func (j *BroadcastExpiryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Broadcast expiry sweep stopped")
}

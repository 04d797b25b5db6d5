package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// ScanReadyQueueCommandHandler sweeps the ready queue and opens a broadcast
// for each waiting job by delegating to the StartBroadcastCommandHandler.
// The repository serves jobs highest priority first, oldest first within a
// tier, so urgent work is broadcast ahead of the backlog.
//
// Each job is processed independently; a failure on one is logged and the
// sweep continues.
type ScanReadyQueueCommandHandler struct {
	jobRepo      ports.JobRepository
	startHandler StartBroadcastCommandHandler
	batchSize    int
	logger       *slog.Logger
}

// NewScanReadyQueueCommandHandler creates a handler for ready queue sweeps.
// batchSize caps how many jobs one sweep broadcasts.
func NewScanReadyQueueCommandHandler(
	jobRepo ports.JobRepository,
	startHandler StartBroadcastCommandHandler,
	batchSize int,
	logger *slog.Logger,
) ScanReadyQueueCommandHandler {
	return ScanReadyQueueCommandHandler{
		jobRepo:      jobRepo,
		startHandler: startHandler,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Handle processes the ready queue sweep. Only infrastructure failures on
// the query itself are returned; per-job failures are logged and skipped.
func (h *ScanReadyQueueCommandHandler) Handle(ctx context.Context, cmd ScanReadyQueueCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	jobs, err := h.jobRepo.GetReadyForBroadcast(ctx, h.batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		startCmd, cmdErr := NewStartBroadcastCommand(job.ID())
		if cmdErr != nil {
			h.logger.Error("ready queue sweep: job skipped",
				"job_id", job.ID().String(),
				"error", cmdErr)
			continue
		}

		if startErr := h.startHandler.Handle(ctx, startCmd); startErr != nil {
			h.logger.Error("ready queue sweep: broadcast not opened",
				"job_id", job.ID().String(),
				"error", startErr)
		}
	}

	return nil
}

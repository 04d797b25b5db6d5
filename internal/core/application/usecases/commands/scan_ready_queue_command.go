package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrScanReadyQueueCommandIsNotConstructed = errors.New(
	"ScanReadyQueueCommand must be created via NewScanReadyQueueCommand constructor",
)

// ScanReadyQueueCommand triggers a sweep over the ready queue: pending jobs
// whose broadcast has not started get one opened, highest priority first.
//
// Example:
//
//	cmd := NewScanReadyQueueCommand()
//	handler := NewScanReadyQueueCommandHandler(jobRepo, startHandler, 100, logger)
//
//	// Run periodically from the scheduler
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    log.Printf("ready queue sweep failed: %v", err)
//	}
type ScanReadyQueueCommand struct {
	guard guard.ConstructorGuard
}

// NewScanReadyQueueCommand creates a command to trigger a ready queue sweep.
// This is a parameterless command that processes all jobs awaiting broadcast.
func NewScanReadyQueueCommand() ScanReadyQueueCommand {
	return ScanReadyQueueCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrScanReadyQueueCommandIsNotConstructed if validation fails.
func (c *ScanReadyQueueCommand) Validate() error {
	return c.guard.Validate(ErrScanReadyQueueCommandIsNotConstructed)
}

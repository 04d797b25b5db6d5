package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrExpireBroadcastsCommandIsNotConstructed = errors.New(
	"ExpireBroadcastsCommand must be created via NewExpireBroadcastsCommand constructor",
)

// ExpireBroadcastsCommand triggers a sweep over broadcasts whose deadline
// has passed: each is expired and then either retried with escalated
// parameters or escalated to manual assignment.
//
// Example:
//
//	cmd := NewExpireBroadcastsCommand()
//	handler := NewExpireBroadcastsCommandHandler(jobRepo, notifier, alerts, 100, time.Now, logger)
//
//	// Run periodically from the scheduler
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    log.Printf("expiry sweep failed: %v", err)
//	}
type ExpireBroadcastsCommand struct {
	guard guard.ConstructorGuard
}

// NewExpireBroadcastsCommand creates a command to trigger an expiry sweep.
// This is a parameterless command that processes all overdue broadcasts.
func NewExpireBroadcastsCommand() ExpireBroadcastsCommand {
	return ExpireBroadcastsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrExpireBroadcastsCommandIsNotConstructed if validation fails.
func (c *ExpireBroadcastsCommand) Validate() error {
	return c.guard.Validate(ErrExpireBroadcastsCommandIsNotConstructed)
}

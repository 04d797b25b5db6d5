package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrStartBroadcastCommandIsNotConstructed = errors.New(
	"StartBroadcastCommand must be created via NewStartBroadcastCommand constructor",
)

// StartBroadcastCommand requests opening a broadcast for a single job that
// is waiting in the ready queue.
type StartBroadcastCommand struct { //nolint:recvcheck //using for validation
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartBroadcastCommand creates a command to open a broadcast for the job.
func NewStartBroadcastCommand(jobID kernel.UUID) (StartBroadcastCommand, error) {
	command := StartBroadcastCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setJobID(jobID); err != nil {
		return StartBroadcastCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrStartBroadcastCommandIsNotConstructed if validation fails.
func (c StartBroadcastCommand) Validate() error {
	return c.guard.Validate(ErrStartBroadcastCommandIsNotConstructed)
}

// JobID returns the identifier of the job to broadcast.
func (c StartBroadcastCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c *StartBroadcastCommand) setJobID(jobID kernel.UUID) error {
	if err := jobID.Validate(); err != nil {
		return err
	}

	c.jobID = jobID
	return nil
}

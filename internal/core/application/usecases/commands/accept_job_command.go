package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptJobCommandIsNotConstructed = errors.New(
	"AcceptJobCommand must be created via NewAcceptJobCommand constructor",
)

// AcceptJobCommand represents a courier's attempt to accept a broadcast job.
type AcceptJobCommand struct { //nolint:recvcheck //using for validation
	jobID     kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptJobCommand creates a command for a courier accepting a job.
func NewAcceptJobCommand(jobID kernel.UUID, courierID kernel.UUID) (AcceptJobCommand, error) {
	command := AcceptJobCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setJobID(jobID),
		command.setCourierID(courierID),
	); err != nil {
		return AcceptJobCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAcceptJobCommandIsNotConstructed if validation fails.
func (c AcceptJobCommand) Validate() error {
	return c.guard.Validate(ErrAcceptJobCommandIsNotConstructed)
}

// JobID returns the identifier of the job being accepted.
func (c AcceptJobCommand) JobID() kernel.UUID {
	return c.jobID
}

// CourierID returns the identifier of the accepting courier.
func (c AcceptJobCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AcceptJobCommand) setJobID(jobID kernel.UUID) error {
	if err := jobID.Validate(); err != nil {
		return err
	}

	c.jobID = jobID
	return nil
}

func (c *AcceptJobCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

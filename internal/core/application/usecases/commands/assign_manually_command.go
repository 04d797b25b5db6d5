package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignManuallyCommandIsNotConstructed = errors.New(
	"AssignManuallyCommand must be created via NewAssignManuallyCommand constructor",
)

// AssignManuallyCommand represents an operator's decision to attach a
// courier to a job directly, bypassing the broadcast flow.
type AssignManuallyCommand struct { //nolint:recvcheck //using for validation
	jobID     kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignManuallyCommand creates a command for a manual courier assignment.
func NewAssignManuallyCommand(jobID kernel.UUID, courierID kernel.UUID) (AssignManuallyCommand, error) {
	command := AssignManuallyCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setJobID(jobID),
		command.setCourierID(courierID),
	); err != nil {
		return AssignManuallyCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignManuallyCommandIsNotConstructed if validation fails.
func (c AssignManuallyCommand) Validate() error {
	return c.guard.Validate(ErrAssignManuallyCommandIsNotConstructed)
}

// JobID returns the identifier of the job being assigned.
func (c AssignManuallyCommand) JobID() kernel.UUID {
	return c.jobID
}

// CourierID returns the identifier of the courier chosen by the operator.
func (c AssignManuallyCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AssignManuallyCommand) setJobID(jobID kernel.UUID) error {
	if err := jobID.Validate(); err != nil {
		return err
	}

	c.jobID = jobID
	return nil
}

func (c *AssignManuallyCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

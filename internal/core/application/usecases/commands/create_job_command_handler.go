package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/ports"
)

// CreateJobCommandHandler handles the business logic for job creation.
// New jobs enter the ready queue in "pending" status with broadcast state
// "not started"; the ready queue scanner opens their first broadcast.
type CreateJobCommandHandler struct {
	jobRepo ports.JobRepository
	now     func() time.Time
}

// NewCreateJobCommandHandler creates a handler for job creation operations.
// The now function supplies the creation timestamp.
func NewCreateJobCommandHandler(jobRepo ports.JobRepository, now func() time.Time) CreateJobCommandHandler {
	return CreateJobCommandHandler{
		jobRepo: jobRepo,
		now:     now,
	}
}

// Handle processes the job creation command. Broadcast overrides are clamped
// into the configured bounds by the domain before the job is persisted.
func (h *CreateJobCommandHandler) Handle(ctx context.Context, cmd CreateJobCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	settings := deliveryjob.NewBroadcastSettings(cmd.RadiusKm(), cmd.DurationSec(), cmd.MaxAttempts())

	job, err := deliveryjob.NewJob(
		cmd.JobID(),
		cmd.Pickup(),
		cmd.Dropoff(),
		cmd.PickupAddress(),
		cmd.DropoffAddress(),
		cmd.FeeCents(),
		cmd.Priority(),
		settings,
		h.now(),
	)
	if err != nil {
		return err
	}

	return h.jobRepo.Add(ctx, job)
}

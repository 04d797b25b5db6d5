package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// AssignManuallyCommandHandler handles operator-directed courier assignment.
// The courier must exist but eligibility is not enforced: the operator may
// deliberately assign an offline courier they reached by phone.
//
// A manual assignment racing a courier acceptance is resolved by the same
// conditional write as everything else; whichever lands second sees the
// assignment and is refused.
type AssignManuallyCommandHandler struct {
	jobRepo          ports.JobRepository
	courierDirectory ports.CourierDirectory
	notifier         ports.NotificationDispatcher
	now              func() time.Time
	logger           *slog.Logger
}

// NewAssignManuallyCommandHandler creates a handler for manual assignments.
func NewAssignManuallyCommandHandler(
	jobRepo ports.JobRepository,
	courierDirectory ports.CourierDirectory,
	notifier ports.NotificationDispatcher,
	now func() time.Time,
	logger *slog.Logger,
) AssignManuallyCommandHandler {
	return AssignManuallyCommandHandler{
		jobRepo:          jobRepo,
		courierDirectory: courierDirectory,
		notifier:         notifier,
		now:              now,
		logger:           logger,
	}
}

// Handle processes the manual assignment. When the job was mid-broadcast,
// the offered couriers are told the job is no longer available.
func (h *AssignManuallyCommandHandler) Handle(ctx context.Context, cmd AssignManuallyCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.courierDirectory.Get(ctx, cmd.CourierID()); err != nil {
		return err
	}

	job, err := h.jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return err
	}

	offered := job.OfferedCouriers()

	if err = job.AssignManually(cmd.CourierID(), h.now()); err != nil {
		return err
	}

	if err = h.jobRepo.Update(ctx, job); err != nil {
		if errors.Is(err, ports.ErrConcurrentUpdate) {
			// Re-derive the refusal from fresh state: most likely a courier
			// accepted in the meantime.
			fresh, getErr := h.jobRepo.Get(ctx, cmd.JobID())
			if getErr != nil {
				return getErr
			}
			if assignErr := fresh.AssignManually(cmd.CourierID(), h.now()); assignErr != nil {
				return assignErr
			}
		}
		return err
	}

	if len(offered) > 0 {
		if notifyErr := h.notifier.NotifyOfferRevoked(ctx, job.ID(), offered); notifyErr != nil {
			h.logger.Warn("offer revocation failed",
				"job_id", job.ID().String(),
				"couriers", len(offered),
				"error", notifyErr)
		}
	}

	return nil
}

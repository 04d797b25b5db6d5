package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// ErrCourierNotEligible is returned when the accepting courier is inactive,
// offline or suspended at the moment of acceptance. Eligibility is
// re-checked here because it may have changed since the offer went out.
var ErrCourierNotEligible = errors.New("courier is not eligible to accept jobs")

// acceptMaxRetries bounds the read-transition-write loop on version
// conflicts. Conflicts beyond the first almost always mean another courier
// won; the re-read turns that into the right domain error.
const acceptMaxRetries = 3

// AcceptJobCommandHandler arbitrates job acceptance. Any number of couriers
// may race; exactly one wins. The winner is decided by the repository's
// atomic conditional write, never by handler-side locking, so the guarantee
// holds across processes.
//
// Losing couriers receive a distinguishable error: ErrAlreadyAccepted when
// someone else won, ErrBroadcastExpired when the deadline passed, or an
// InvalidStateError reporting the job's actual state.
type AcceptJobCommandHandler struct {
	jobRepo          ports.JobRepository
	courierDirectory ports.CourierDirectory
	notifier         ports.NotificationDispatcher
	now              func() time.Time
	logger           *slog.Logger
}

// NewAcceptJobCommandHandler creates a handler for acceptance arbitration.
func NewAcceptJobCommandHandler(
	jobRepo ports.JobRepository,
	courierDirectory ports.CourierDirectory,
	notifier ports.NotificationDispatcher,
	now func() time.Time,
	logger *slog.Logger,
) AcceptJobCommandHandler {
	return AcceptJobCommandHandler{
		jobRepo:          jobRepo,
		courierDirectory: courierDirectory,
		notifier:         notifier,
		now:              now,
		logger:           logger,
	}
}

// Handle processes the acceptance. The flow is read, transition, conditional
// write; on a version conflict the job is re-read and the transition re-run
// against the fresh state, which yields the precise refusal reason instead
// of a generic conflict. After a win, couriers who were offered the job and
// lost are told it is no longer available (best-effort).
func (h *AcceptJobCommandHandler) Handle(ctx context.Context, cmd AcceptJobCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	courier, err := h.courierDirectory.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}
	if !courier.IsEligible() {
		return ErrCourierNotEligible
	}

	var lastErr error
	for range acceptMaxRetries {
		job, getErr := h.jobRepo.Get(ctx, cmd.JobID())
		if getErr != nil {
			return getErr
		}

		offered := job.OfferedCouriers()

		if acceptErr := job.Accept(cmd.CourierID(), h.now()); acceptErr != nil {
			return acceptErr
		}

		updateErr := h.jobRepo.Update(ctx, job)
		if updateErr == nil {
			h.notifyLosers(ctx, job.ID(), offered, cmd.CourierID())
			return nil
		}
		if !errors.Is(updateErr, ports.ErrConcurrentUpdate) {
			return updateErr
		}

		lastErr = updateErr
	}

	return lastErr
}

// notifyLosers tells every courier from the offered snapshot except the
// winner that the job is gone. Failures are logged, never surfaced.
func (h *AcceptJobCommandHandler) notifyLosers(
	ctx context.Context,
	jobID kernel.UUID,
	offered []kernel.UUID,
	winner kernel.UUID,
) {
	losers := make([]kernel.UUID, 0, len(offered))
	for _, id := range offered {
		if !id.IsEqual(winner) {
			losers = append(losers, id)
		}
	}

	if len(losers) == 0 {
		return
	}

	if err := h.notifier.NotifyOfferRevoked(ctx, jobID, losers); err != nil {
		h.logger.Warn("offer revocation failed",
			"job_id", jobID.String(),
			"couriers", len(losers),
			"error", err)
	}
}

package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// StartBroadcastCommandHandler opens a broadcast for a ready job: ranks the
// eligible couriers around the pickup point, records the offered snapshot on
// the job and pushes the offer to their devices.
//
// An empty candidate set still opens the broadcast; it will expire and retry
// with an escalated radius, which is how sparse areas eventually reach a
// courier.
type StartBroadcastCommandHandler struct {
	jobRepo          ports.JobRepository
	courierDirectory ports.CourierDirectory
	finder           services.ProximityFinder
	notifier         ports.NotificationDispatcher
	maxOffers        int
	now              func() time.Time
	logger           *slog.Logger
}

// NewStartBroadcastCommandHandler creates a handler for opening broadcasts.
// maxOffers caps how many couriers a single broadcast targets; zero or less
// means no cap.
func NewStartBroadcastCommandHandler(
	jobRepo ports.JobRepository,
	courierDirectory ports.CourierDirectory,
	finder services.ProximityFinder,
	notifier ports.NotificationDispatcher,
	maxOffers int,
	now func() time.Time,
	logger *slog.Logger,
) StartBroadcastCommandHandler {
	return StartBroadcastCommandHandler{
		jobRepo:          jobRepo,
		courierDirectory: courierDirectory,
		finder:           finder,
		notifier:         notifier,
		maxOffers:        maxOffers,
		now:              now,
		logger:           logger,
	}
}

// Handle opens the broadcast. The state transition is persisted through the
// repository's conditional write; a lost race (for example a concurrent
// manual assignment) surfaces as ports.ErrConcurrentUpdate and the broadcast
// is not opened. The offer push is best-effort and never fails the command.
func (h *StartBroadcastCommandHandler) Handle(ctx context.Context, cmd StartBroadcastCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	job, err := h.jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return err
	}

	couriers, err := h.courierDirectory.GetAvailable(ctx)
	if err != nil {
		return err
	}

	ranked, err := h.finder.FindWithinRadius(job.Pickup(), couriers, job.RadiusKm(), h.maxOffers)
	if err != nil {
		return err
	}

	offered := make([]kernel.UUID, 0, len(ranked))
	for _, rc := range ranked {
		offered = append(offered, rc.Courier.ID())
	}

	if err = job.StartBroadcast(h.now(), offered); err != nil {
		return err
	}

	if err = h.jobRepo.Update(ctx, job); err != nil {
		return err
	}

	if len(offered) == 0 {
		h.logger.Info("broadcast opened with no couriers in range",
			"job_id", job.ID().String(),
			"radius_km", job.RadiusKm(),
			"attempt", job.Attempts())
		return nil
	}

	if err = h.notifier.NotifyOffer(ctx, job, offered); err != nil {
		h.logger.Warn("offer notification failed",
			"job_id", job.ID().String(),
			"couriers", len(offered),
			"error", err)
	}

	return nil
}

package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/ports"
)

// ExpireBroadcastsCommandHandler sweeps overdue broadcasts. For each job it
// closes the broadcast, then retries with escalated radius and duration when
// attempts remain, or escalates to manual assignment when the budget is
// exhausted.
//
// Each job is processed independently: a failure on one is logged and the
// sweep moves on, so a single bad record never wedges the scheduler. A
// version conflict means a courier accepted between the query and the write;
// skipping is exactly right.
type ExpireBroadcastsCommandHandler struct {
	jobRepo   ports.JobRepository
	notifier  ports.NotificationDispatcher
	alerts    ports.AdminAlerts
	batchSize int
	now       func() time.Time
	logger    *slog.Logger
}

// NewExpireBroadcastsCommandHandler creates a handler for expiry sweeps.
// batchSize caps how many overdue broadcasts one sweep processes.
func NewExpireBroadcastsCommandHandler(
	jobRepo ports.JobRepository,
	notifier ports.NotificationDispatcher,
	alerts ports.AdminAlerts,
	batchSize int,
	now func() time.Time,
	logger *slog.Logger,
) ExpireBroadcastsCommandHandler {
	return ExpireBroadcastsCommandHandler{
		jobRepo:   jobRepo,
		notifier:  notifier,
		alerts:    alerts,
		batchSize: batchSize,
		now:       now,
		logger:    logger,
	}
}

// Handle processes the expiry sweep. Only infrastructure failures on the
// query itself are returned; per-job failures are logged and skipped.
func (h *ExpireBroadcastsCommandHandler) Handle(ctx context.Context, cmd ExpireBroadcastsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	jobs, err := h.jobRepo.GetExpiredBroadcasts(ctx, h.batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if procErr := h.expireJob(ctx, job); procErr != nil {
			h.logger.Error("expiry sweep: job skipped",
				"job_id", job.ID().String(),
				"error", procErr)
		}
	}

	return nil
}

// expireJob closes one overdue broadcast and applies the follow-up
// transition. Both transitions land in a single conditional write; the job
// either fully moves to its next state or stays untouched for the next sweep.
func (h *ExpireBroadcastsCommandHandler) expireJob(ctx context.Context, job *deliveryjob.Job) error {
	offered := job.OfferedCouriers()

	if err := job.Expire(h.now()); err != nil {
		if errors.Is(err, deliveryjob.ErrInvalidState) {
			// Already resolved by an acceptance or a competing sweep.
			return nil
		}
		return err
	}

	escalated := false
	if job.Attempts() < job.MaxAttempts() {
		if err := job.Retry(); err != nil {
			return err
		}
	} else {
		if err := job.EscalateToManual(); err != nil {
			return err
		}
		escalated = true
	}

	if err := h.jobRepo.Update(ctx, job); err != nil {
		if errors.Is(err, ports.ErrConcurrentUpdate) {
			h.logger.Info("expiry sweep: job changed concurrently, skipping",
				"job_id", job.ID().String())
			return nil
		}
		return err
	}

	if len(offered) > 0 {
		if err := h.notifier.NotifyOfferRevoked(ctx, job.ID(), offered); err != nil {
			h.logger.Warn("offer revocation failed",
				"job_id", job.ID().String(),
				"couriers", len(offered),
				"error", err)
		}
	}

	if escalated {
		h.logger.Warn("job escalated to manual assignment",
			"job_id", job.ID().String(),
			"attempts", job.Attempts())
		if err := h.alerts.ManualAssignmentRequired(ctx, job); err != nil {
			h.logger.Warn("manual assignment alert failed",
				"job_id", job.ID().String(),
				"error", err)
		}
	}

	return nil
}

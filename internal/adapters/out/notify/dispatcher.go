// Package notify provides the outbound notification adapters. The push
// gateway to courier devices lives outside this service; this adapter logs
// the events it would emit and is the seam where the real gateway client
// plugs in.
package notify

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
)

// SlogNotificationDispatcher implements ports.NotificationDispatcher by
// writing structured log records. Delivery is best-effort by contract, so a
// log-only implementation is a valid one: nothing downstream depends on the
// push having happened.
type SlogNotificationDispatcher struct {
	logger *slog.Logger
}

// NewSlogNotificationDispatcher creates a log-backed notification dispatcher.
func NewSlogNotificationDispatcher(logger *slog.Logger) *SlogNotificationDispatcher {
	return &SlogNotificationDispatcher{logger: logger}
}

// NotifyOffer logs the job offer for each targeted courier.
func (d *SlogNotificationDispatcher) NotifyOffer(ctx context.Context, job *deliveryjob.Job, courierIDs []kernel.UUID) error {
	for _, courierID := range courierIDs {
		d.logger.InfoContext(ctx, "job offered to courier",
			"job_id", job.ID().String(),
			"courier_id", courierID.String(),
			"pickup_address", job.PickupAddress(),
			"fee_cents", job.FeeCents(),
			"broadcast_end", job.BroadcastEnd(),
			"attempt", job.Attempts())
	}
	return nil
}

// NotifyOfferRevoked logs the revocation for each courier.
func (d *SlogNotificationDispatcher) NotifyOfferRevoked(ctx context.Context, jobID kernel.UUID, courierIDs []kernel.UUID) error {
	for _, courierID := range courierIDs {
		d.logger.InfoContext(ctx, "job offer revoked",
			"job_id", jobID.String(),
			"courier_id", courierID.String())
	}
	return nil
}

// SlogAdminAlerts implements ports.AdminAlerts by writing structured log
// records at warning level, which is what the on-call alerting keys on.
type SlogAdminAlerts struct {
	logger *slog.Logger
}

// NewSlogAdminAlerts creates a log-backed admin alert sink.
func NewSlogAdminAlerts(logger *slog.Logger) *SlogAdminAlerts {
	return &SlogAdminAlerts{logger: logger}
}

// ManualAssignmentRequired logs the escalation for operator attention.
func (a *SlogAdminAlerts) ManualAssignmentRequired(ctx context.Context, job *deliveryjob.Job) error {
	a.logger.WarnContext(ctx, "manual assignment required",
		"job_id", job.ID().String(),
		"pickup_address", job.PickupAddress(),
		"priority", job.Priority().String(),
		"attempts", job.Attempts(),
		"radius_km", job.RadiusKm())
	return nil
}

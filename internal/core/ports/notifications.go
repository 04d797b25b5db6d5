package ports

import (
	"context"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
)

// NotificationDispatcher pushes broadcast events to courier devices.
// Delivery is best-effort: a failed push never blocks or rolls back the
// dispatch transition it accompanies, so implementations log and move on.
type NotificationDispatcher interface {
	// NotifyOffer tells the listed couriers a job is available for
	// acceptance until the job's broadcast deadline.
	NotifyOffer(ctx context.Context, job *deliveryjob.Job, courierIDs []kernel.UUID) error

	// NotifyOfferRevoked tells the listed couriers a previously offered job
	// is no longer available (someone else won, the broadcast expired or the
	// job was withdrawn).
	NotifyOfferRevoked(ctx context.Context, jobID kernel.UUID, courierIDs []kernel.UUID) error
}

// AdminAlerts surfaces dispatch conditions that need a human.
type AdminAlerts interface {
	// ManualAssignmentRequired reports that automated matching exhausted its
	// attempt budget for the job and an operator must assign a courier.
	ManualAssignmentRequired(ctx context.Context, job *deliveryjob.Job) error
}

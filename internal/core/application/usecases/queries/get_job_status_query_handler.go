package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetJobStatusQueryHandler retrieves a job's dispatch state straight from the
// database, bypassing the aggregate. Reads are not arbitrated: a snapshot may
// be stale by the time the client sees it, which is fine for tracking.
type GetJobStatusQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGetJobStatusQueryHandler creates a handler for job status queries.
// The now function supplies the cutoff for the CanBeAccepted flag.
func NewGetJobStatusQueryHandler(db *gorm.DB, now func() time.Time) GetJobStatusQueryHandler {
	return GetJobStatusQueryHandler{db: db, now: now}
}

// Handle executes the query for a single job.
// Returns errs.ErrObjectNotFound when the job does not exist.
func (h GetJobStatusQueryHandler) Handle(
	ctx context.Context,
	query GetJobStatusQuery,
) (GetJobStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetJobStatusQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			broadcast_status,
			priority,
			attempts,
			max_attempts,
			radius_km,
			duration_sec,
			broadcast_start,
			broadcast_end,
			assigned_courier_id,
			created_at
		FROM jobs
		WHERE id = ?
	`, query.JobID().Bytes()).Rows()
	if err != nil {
		return GetJobStatusQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetJobStatusQueryResponse{}, err
		}
		return GetJobStatusQueryResponse{},
			errs.NewObjectNotFoundError("job", query.JobID().String())
	}

	var response GetJobStatusQueryResponse
	var id uuid.UUID
	var status, broadcastStatus, priority int
	var assignedCourierID *uuid.UUID

	err = rows.Scan(
		&id,
		&status,
		&broadcastStatus,
		&priority,
		&response.Attempts,
		&response.MaxAttempts,
		&response.RadiusKm,
		&response.DurationSec,
		&response.BroadcastStart,
		&response.BroadcastEnd,
		&assignedCourierID,
		&response.CreatedAt,
	)
	if err != nil {
		return GetJobStatusQueryResponse{}, err
	}

	jobID, idErr := kernel.UUIDFromBytes(id[:])
	if idErr != nil {
		return GetJobStatusQueryResponse{}, idErr
	}
	response.ID = jobID
	response.Status = deliveryjob.Status(status).String()
	response.BroadcastStatus = deliveryjob.BroadcastStatus(broadcastStatus).String()
	response.Priority = deliveryjob.Priority(priority).String()

	if assignedCourierID != nil {
		courierID, courierErr := kernel.UUIDFromBytes(assignedCourierID[:])
		if courierErr != nil {
			return GetJobStatusQueryResponse{}, courierErr
		}
		response.AssignedCourier = &courierID
	}

	response.CanBeAccepted = deliveryjob.BroadcastStatus(broadcastStatus) == deliveryjob.BroadcastBroadcasting &&
		response.AssignedCourier == nil &&
		response.BroadcastEnd != nil &&
		!h.now().After(*response.BroadcastEnd)

	return response, nil
}

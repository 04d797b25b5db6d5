package queries

import (
	"context"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveJobsForCourierQueryHandler retrieves a courier's active workload
// from the database.
type GetActiveJobsForCourierQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveJobsForCourierQueryHandler creates a handler for courier
// workload queries.
func NewGetActiveJobsForCourierQueryHandler(db *gorm.DB) GetActiveJobsForCourierQueryHandler {
	return GetActiveJobsForCourierQueryHandler{db: db}
}

// Handle executes the query for a courier's active jobs.
// Returns jobs in Accepted or PickedUp status, oldest assignment first.
// An unknown courier yields an empty list, not an error.
func (h GetActiveJobsForCourierQueryHandler) Handle(
	ctx context.Context,
	query GetActiveJobsForCourierQuery,
) ([]GetActiveJobsForCourierQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	jobs := make([]GetActiveJobsForCourierQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			priority,
			pickup_address,
			dropoff_address,
			fee_cents,
			assigned_at
		FROM jobs
		WHERE assigned_courier_id = ?
		  AND status IN (?, ?)
		ORDER BY assigned_at
	`, query.CourierID().Bytes(), deliveryjob.StatusAccepted, deliveryjob.StatusPickedUp).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var jobResp GetActiveJobsForCourierQueryResponse
		var id uuid.UUID
		var status, priority int

		err = rows.Scan(
			&id,
			&status,
			&priority,
			&jobResp.PickupAddress,
			&jobResp.DropoffAddress,
			&jobResp.FeeCents,
			&jobResp.AssignedAt,
		)
		if err != nil {
			return nil, err
		}

		jobID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		jobResp.ID = jobID
		jobResp.Status = deliveryjob.Status(status).String()
		jobResp.Priority = deliveryjob.Priority(priority).String()

		jobs = append(jobs, jobResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

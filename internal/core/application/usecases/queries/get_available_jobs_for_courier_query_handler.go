package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableJobsForCourierQueryHandler retrieves the open broadcasts from
// the database. The radius filter runs in process: result sets are bounded
// by how many broadcasts can be live at once, and the haversine stays in one
// place instead of being duplicated in SQL.
type GetAvailableJobsForCourierQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGetAvailableJobsForCourierQueryHandler creates a handler for open
// broadcast queries. The now function supplies the deadline cutoff.
func NewGetAvailableJobsForCourierQueryHandler(db *gorm.DB, now func() time.Time) GetAvailableJobsForCourierQueryHandler {
	return GetAvailableJobsForCourierQueryHandler{db: db, now: now}
}

// Handle executes the query. Returns jobs being broadcast, unassigned, with
// the deadline still open, highest priority first. With a location on the
// query, only broadcasts whose radius covers that location are returned;
// without one the list is unfiltered.
func (h GetAvailableJobsForCourierQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableJobsForCourierQuery,
) ([]GetAvailableJobsForCourierQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	jobs := make([]GetAvailableJobsForCourierQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			priority,
			pickup_lat,
			pickup_lon,
			pickup_address,
			dropoff_address,
			fee_cents,
			radius_km,
			broadcast_end
		FROM jobs
		WHERE broadcast_status = ?
		  AND assigned_courier_id IS NULL
		  AND broadcast_end >= ?
		ORDER BY priority DESC, broadcast_end ASC
	`, deliveryjob.BroadcastBroadcasting, h.now().UTC()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var jobResp GetAvailableJobsForCourierQueryResponse
		var id uuid.UUID
		var priority int
		var pickupLat, pickupLon float64

		err = rows.Scan(
			&id,
			&priority,
			&pickupLat,
			&pickupLon,
			&jobResp.PickupAddress,
			&jobResp.DropoffAddress,
			&jobResp.FeeCents,
			&jobResp.RadiusKm,
			&jobResp.BroadcastEnd,
		)
		if err != nil {
			return nil, err
		}

		if query.Location() != nil {
			pickup, pointErr := kernel.NewGeoPoint(pickupLat, pickupLon)
			if pointErr != nil {
				return nil, pointErr
			}
			distance, distErr := query.Location().DistanceKm(pickup)
			if distErr != nil {
				return nil, distErr
			}
			if distance > jobResp.RadiusKm {
				continue
			}
			jobResp.DistanceKm = &distance
		}

		jobID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		jobResp.ID = jobID
		jobResp.Priority = deliveryjob.Priority(priority).String()

		jobs = append(jobs, jobResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

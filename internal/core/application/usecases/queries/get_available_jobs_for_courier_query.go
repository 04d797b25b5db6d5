package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetAvailableJobsForCourierQueryIsNotConstructed = errors.New(
		"GetAvailableJobsForCourierQuery must be created via NewGetAvailableJobsForCourierQuery constructor",
	)
)

// GetAvailableJobsForCourierQuery lists the open broadcasts a courier could
// accept right now: jobs being broadcast, unassigned, with an unexpired
// deadline. An optional location narrows the list to broadcasts whose search
// radius covers it; without a location the full list is returned.
//
// Example:
//
//	query, err := NewGetAvailableJobsForCourierQuery(courierID, &location)
//	if err != nil {
//	    return err
//	}
//
//	jobs, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get available jobs: %w", err)
//	}
//
//	for _, job := range jobs {
//	    fmt.Printf("%s pays %d, closes at %s\n", job.PickupAddress, job.FeeCents, job.BroadcastEnd)
//	}
type GetAvailableJobsForCourierQuery struct {
	courierID kernel.UUID
	location  *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewGetAvailableJobsForCourierQuery creates a query for the open broadcasts
// visible to a courier. The location is optional and may be nil.
func NewGetAvailableJobsForCourierQuery(
	courierID kernel.UUID,
	location *kernel.GeoPoint,
) (GetAvailableJobsForCourierQuery, error) {
	query := GetAvailableJobsForCourierQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setCourierID(courierID),
		query.setLocation(location),
	); err != nil {
		return GetAvailableJobsForCourierQuery{}, err
	}

	return query, nil
}

// CourierID returns the identifier of the courier asking for work.
func (q GetAvailableJobsForCourierQuery) CourierID() kernel.UUID {
	return q.courierID
}

// Location returns the courier's reported location, nil when none was given.
func (q GetAvailableJobsForCourierQuery) Location() *kernel.GeoPoint {
	return q.location
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetAvailableJobsForCourierQueryIsNotConstructed if validation fails.
func (q GetAvailableJobsForCourierQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableJobsForCourierQueryIsNotConstructed)
}

func (q *GetAvailableJobsForCourierQuery) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	q.courierID = courierID
	return nil
}

func (q *GetAvailableJobsForCourierQuery) setLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	q.location = location
	return nil
}

// GetAvailableJobsForCourierQueryResponse represents one open broadcast.
// DistanceKm is set only when the query carried a location.
type GetAvailableJobsForCourierQueryResponse struct {
	ID             kernel.UUID
	Priority       string
	PickupAddress  string
	DropoffAddress string
	FeeCents       int64
	RadiusKm       float64
	BroadcastEnd   time.Time
	DistanceKm     *float64
}

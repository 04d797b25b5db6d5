package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetActiveJobsForCourierQueryIsNotConstructed = errors.New(
		"GetActiveJobsForCourierQuery must be created via NewGetActiveJobsForCourierQuery constructor",
	)
)

// GetActiveJobsForCourierQuery retrieves the jobs a courier is currently
// working: accepted but not yet delivered. Backs the courier app's task list.
//
// Example:
//
//	query, err := NewGetActiveJobsForCourierQuery(courierID)
//	if err != nil {
//	    return err
//	}
//
//	jobs, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get active jobs: %w", err)
//	}
//
//	for _, job := range jobs {
//	    fmt.Printf("%s -> %s (%s)\n", job.PickupAddress, job.DropoffAddress, job.Status)
//	}
type GetActiveJobsForCourierQuery struct {
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetActiveJobsForCourierQuery creates a query for a courier's active jobs.
func NewGetActiveJobsForCourierQuery(courierID kernel.UUID) (GetActiveJobsForCourierQuery, error) {
	query := GetActiveJobsForCourierQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setCourierID(courierID); err != nil {
		return GetActiveJobsForCourierQuery{}, err
	}

	return query, nil
}

// CourierID returns the identifier of the courier being queried.
func (q GetActiveJobsForCourierQuery) CourierID() kernel.UUID {
	return q.courierID
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetActiveJobsForCourierQueryIsNotConstructed if validation fails.
func (q GetActiveJobsForCourierQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveJobsForCourierQueryIsNotConstructed)
}

func (q *GetActiveJobsForCourierQuery) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	q.courierID = courierID
	return nil
}

// GetActiveJobsForCourierQueryResponse represents one job on a courier's
// active task list.
type GetActiveJobsForCourierQueryResponse struct {
	ID             kernel.UUID
	Status         string
	Priority       string
	PickupAddress  string
	DropoffAddress string
	FeeCents       int64
	AssignedAt     *time.Time
}

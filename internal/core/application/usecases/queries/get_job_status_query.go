package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetJobStatusQueryIsNotConstructed = errors.New(
		"GetJobStatusQuery must be created via NewGetJobStatusQuery constructor",
	)
)

// GetJobStatusQuery retrieves the dispatch state of a single delivery job.
// Backs the tracking endpoint used by clients polling for an assignment.
//
// Example:
//
//	query, err := NewGetJobStatusQuery(jobID)
//	if err != nil {
//	    return err
//	}
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get job status: %w", err)
//	}
//
//	fmt.Printf("Job %s is %s (attempt %d/%d)\n",
//	    status.ID, status.BroadcastStatus, status.Attempts, status.MaxAttempts)
type GetJobStatusQuery struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetJobStatusQuery creates a query for a job's dispatch state.
func NewGetJobStatusQuery(jobID kernel.UUID) (GetJobStatusQuery, error) {
	query := GetJobStatusQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setJobID(jobID); err != nil {
		return GetJobStatusQuery{}, err
	}

	return query, nil
}

// JobID returns the identifier of the job being queried.
func (q GetJobStatusQuery) JobID() kernel.UUID {
	return q.jobID
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetJobStatusQueryIsNotConstructed if validation fails.
func (q GetJobStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetJobStatusQueryIsNotConstructed)
}

func (q *GetJobStatusQuery) setJobID(jobID kernel.UUID) error {
	if err := jobID.Validate(); err != nil {
		return err
	}
	q.jobID = jobID
	return nil
}

// GetJobStatusQueryResponse represents the dispatch state of a delivery job
// as seen by a tracking client.
type GetJobStatusQueryResponse struct {
	ID              kernel.UUID
	Status          string
	BroadcastStatus string
	Priority        string
	Attempts        int
	MaxAttempts     int
	RadiusKm        float64
	DurationSec     int
	BroadcastStart  *time.Time
	BroadcastEnd    *time.Time
	AssignedCourier *kernel.UUID
	CanBeAccepted   bool
	CreatedAt       time.Time
}

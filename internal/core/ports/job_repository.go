// Package ports defines the contracts between the dispatch core and
// infrastructure adapters, enabling dependency inversion and testability.
package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrConcurrentUpdate is returned by JobRepository.Update when the
// conditional write matched no row: another writer changed the job since it
// was read. The caller re-reads the job and re-derives the outcome from the
// fresh state.
var ErrConcurrentUpdate = errors.New("job was modified concurrently")

// JobRepository defines the persistence contract for delivery job aggregates.
//
// Update is the concurrency keystone of the whole dispatcher: it applies the
// aggregate's state as a single atomic conditional write keyed on the version
// the aggregate was read with, and additionally refuses to overwrite an
// existing courier assignment. Exactly one of any set of racing writers
// succeeds; the rest get ErrConcurrentUpdate. No lock is ever held across
// more than this one record.
type JobRepository interface {
	// Add persists a new job aggregate to storage.
	// The job must be valid and not already exist in the repository.
	Add(ctx context.Context, job *deliveryjob.Job) error

	// Update persists changes to an existing job as an atomic conditional
	// write: the row is written only if its stored version still equals
	// job.Version() and, when the job carries an assignment, only if no
	// courier is assigned in storage yet. On success the aggregate's version
	// is advanced; on a lost race ErrConcurrentUpdate is returned and the
	// aggregate is left untouched.
	Update(ctx context.Context, job *deliveryjob.Job) error

	// Get retrieves a job aggregate by its unique identifier.
	// Returns an errs.ObjectNotFoundError when no such job exists.
	Get(ctx context.Context, id kernel.UUID) (*deliveryjob.Job, error)

	// GetReadyForBroadcast retrieves jobs awaiting a broadcast: pending jobs
	// whose broadcast state is NotStarted, ordered by priority descending
	// then oldest first, capped at limit.
	GetReadyForBroadcast(ctx context.Context, limit int) ([]*deliveryjob.Job, error)

	// GetExpiredBroadcasts retrieves jobs still marked Broadcasting whose
	// deadline has passed, oldest deadline first, capped at limit.
	GetExpiredBroadcasts(ctx context.Context, limit int) ([]*deliveryjob.Job, error)
}

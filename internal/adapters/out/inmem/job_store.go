// Package inmem provides in-memory implementations of the outbound ports.
// They back the end-to-end dispatch tests and local development without a
// database, and honor the same conditional write contract as the postgres
// adapters.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// jobRecord is the stored snapshot of a job. Snapshots are immutable; a
// write replaces the record wholesale under the store mutex.
type jobRecord struct {
	job *deliveryjob.Job
}

// JobStore implements ports.JobRepository in memory. A single mutex guards
// the map; the version check inside the critical section gives the same
// exactly-one-winner semantics as the SQL conditional update.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]jobRecord
	now  func() time.Time
}

// NewJobStore creates an empty in-memory job store. The now function
// supplies the deadline cutoff for the overdue broadcast scan.
func NewJobStore(now func() time.Time) *JobStore {
	return &JobStore{
		jobs: make(map[string]jobRecord),
		now:  now,
	}
}

// Add stores a new job.
func (s *JobStore) Add(_ context.Context, job *deliveryjob.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := job.ID().String()
	if _, exists := s.jobs[key]; exists {
		return errs.NewValueIsInvalidError("job already exists")
	}

	snapshot, err := cloneJob(job)
	if err != nil {
		return err
	}
	s.jobs[key] = jobRecord{job: snapshot}
	return nil
}

// Update applies the aggregate's state when the stored version still matches
// and, for writes carrying an assignment, no courier is assigned yet.
// Returns ports.ErrConcurrentUpdate on a lost race.
func (s *JobStore) Update(_ context.Context, job *deliveryjob.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := job.ID().String()
	current, exists := s.jobs[key]
	if !exists {
		return ports.ErrConcurrentUpdate
	}
	if current.job.Version() != job.Version() {
		return ports.ErrConcurrentUpdate
	}
	if job.AssignedCourier() != nil && current.job.AssignedCourier() != nil {
		return ports.ErrConcurrentUpdate
	}

	job.AdvanceVersion()
	snapshot, err := cloneJob(job)
	if err != nil {
		return err
	}
	s.jobs[key] = jobRecord{job: snapshot}
	return nil
}

// Get retrieves a job snapshot by ID.
func (s *JobStore) Get(_ context.Context, id kernel.UUID) (*deliveryjob.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.jobs[id.String()]
	if !exists {
		return nil, errs.NewObjectNotFoundError("job", id.String())
	}

	return cloneJob(record.job)
}

// GetReadyForBroadcast retrieves pending jobs awaiting a broadcast, highest
// priority first, oldest first within a tier.
func (s *JobStore) GetReadyForBroadcast(_ context.Context, limit int) ([]*deliveryjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*deliveryjob.Job
	for _, record := range s.jobs {
		j := record.job
		if j.Status() == deliveryjob.StatusPending && j.BroadcastStatus() == deliveryjob.BroadcastNotStarted {
			matches = append(matches, j)
		}
	}

	sort.Slice(matches, func(i, k int) bool {
		if matches[i].Priority() != matches[k].Priority() {
			return matches[i].Priority() > matches[k].Priority()
		}
		return matches[i].CreatedAt().Before(matches[k].CreatedAt())
	})

	return cloneJobs(capSlice(matches, limit))
}

// GetExpiredBroadcasts retrieves jobs still marked Broadcasting whose
// deadline has passed, oldest deadline first.
func (s *JobStore) GetExpiredBroadcasts(_ context.Context, limit int) ([]*deliveryjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now()
	var matches []*deliveryjob.Job
	for _, record := range s.jobs {
		j := record.job
		if j.BroadcastStatus() == deliveryjob.BroadcastBroadcasting &&
			j.BroadcastEnd() != nil && cutoff.After(*j.BroadcastEnd()) {
			matches = append(matches, j)
		}
	}

	sort.Slice(matches, func(i, k int) bool {
		return matches[i].BroadcastEnd().Before(*matches[k].BroadcastEnd())
	})

	return cloneJobs(capSlice(matches, limit))
}

func capSlice(jobs []*deliveryjob.Job, limit int) []*deliveryjob.Job {
	if limit > 0 && len(jobs) > limit {
		return jobs[:limit]
	}
	return jobs
}

func cloneJobs(jobs []*deliveryjob.Job) ([]*deliveryjob.Job, error) {
	clones := make([]*deliveryjob.Job, 0, len(jobs))
	for _, j := range jobs {
		clone, err := cloneJob(j)
		if err != nil {
			return nil, err
		}
		clones = append(clones, clone)
	}
	return clones, nil
}

// cloneJob deep-copies a job through its restore constructor so callers can
// never mutate stored state without going through Update.
func cloneJob(job *deliveryjob.Job) (*deliveryjob.Job, error) {
	return deliveryjob.RestoreJob(
		job.ID(),
		job.Pickup(),
		job.Dropoff(),
		job.PickupAddress(),
		job.DropoffAddress(),
		job.FeeCents(),
		job.Priority(),
		job.Status(),
		job.BroadcastStatus(),
		job.BroadcastStart(),
		job.BroadcastEnd(),
		job.RadiusKm(),
		job.DurationSec(),
		job.Attempts(),
		job.MaxAttempts(),
		job.OfferedCouriers(),
		job.AssignedCourier(),
		job.AssignedAt(),
		job.AcceptedAt(),
		job.CreatedAt(),
		job.Version(),
	)
}

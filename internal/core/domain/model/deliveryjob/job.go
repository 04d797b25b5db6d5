package deliveryjob

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrJobIsNotConstructed is returned when a Job instance was not created
	// through the NewJob or RestoreJob factory methods.
	ErrJobIsNotConstructed = errors.New("Job must be created via NewJob or RestoreJob constructor")

	// ErrPickupAddressIsRequired is returned when a job is created without a pickup address.
	ErrPickupAddressIsRequired = errs.NewValueIsRequiredError("pickup address")
	// ErrDropoffAddressIsRequired is returned when a job is created without a dropoff address.
	ErrDropoffAddressIsRequired = errs.NewValueIsRequiredError("dropoff address")
	// ErrFeeIsInvalid is returned when a job is created with a negative fee.
	ErrFeeIsInvalid = errs.NewValueIsInvalidError("fee must not be negative")
)

// Job is the aggregate root of the dispatch core: a delivery job moving
// through the broadcast state machine until exactly one courier is awarded
// it, or automated matching gives up and escalates to manual assignment.
//
// Job enforces these invariants:
//   - An assigned courier exists only in the Accepted or ManualAssignment
//     broadcast states, and at most one courier is ever assigned.
//   - Broadcast attempts never exceed the attempt budget.
//   - Radius and duration are non-decreasing across retries and capped.
//   - While broadcasting, the deadline equals start time plus duration.
//   - No dispatch transition proceeds on a terminal job status.
//
// All state transitions are precondition-guarded and return
// InvalidStateError (or a distinct acceptance failure) when refused, which
// makes re-processing by the schedulers an idempotent no-op. Persisting a
// transition is the adapter's concern; the store must apply it as a single
// atomic conditional write keyed on the version returned by Version.
type Job struct {
	id kernel.UUID

	pickup         kernel.GeoPoint
	dropoff        kernel.GeoPoint
	pickupAddress  string
	dropoffAddress string

	// feeCents is the courier-facing fee in minor currency units.
	feeCents int64
	priority Priority

	status          Status
	broadcastStatus BroadcastStatus

	broadcastStart *time.Time
	broadcastEnd   *time.Time
	radiusKm       float64
	durationSec    int
	attempts       int
	maxAttempts    int

	// offeredCouriers is the snapshot of couriers notified for the current
	// broadcast, kept for the "no longer available" fan-out after acceptance.
	offeredCouriers []kernel.UUID

	assignedCourierID *kernel.UUID
	assignedAt        *time.Time
	acceptedAt        *time.Time

	createdAt time.Time

	// version is the optimistic concurrency token checked by the store's
	// conditional write.
	version int64

	isConstructed bool
}

// NewJob creates a delivery job awaiting dispatch. The job starts in
// StatusPending with broadcast state NotStarted and the broadcast
// configuration taken from settings (already clamped into bounds).
func NewJob(
	id kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	pickupAddress string,
	dropoffAddress string,
	feeCents int64,
	priority Priority,
	settings BroadcastSettings,
	createdAt time.Time,
) (*Job, error) {
	job := &Job{
		status:          StatusPending,
		broadcastStatus: BroadcastNotStarted,
		radiusKm:        settings.RadiusKm(),
		durationSec:     settings.DurationSec(),
		maxAttempts:     settings.MaxAttempts(),
		createdAt:       createdAt.UTC(),
		isConstructed:   true,
	}

	if err := errors.Join(
		job.setID(id),
		job.setPickup(pickup),
		job.setDropoff(dropoff),
		job.setPickupAddress(pickupAddress),
		job.setDropoffAddress(dropoffAddress),
		job.setFeeCents(feeCents),
		job.setPriority(priority),
	); err != nil {
		return nil, err
	}

	return job, nil
}

// RestoreJob reconstructs a job from persistence without re-running creation
// rules. Statuses are still validated so corrupted rows surface as errors
// instead of silently entering the state machine.
func RestoreJob(
	id kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	pickupAddress string,
	dropoffAddress string,
	feeCents int64,
	priority Priority,
	status Status,
	broadcastStatus BroadcastStatus,
	broadcastStart *time.Time,
	broadcastEnd *time.Time,
	radiusKm float64,
	durationSec int,
	attempts int,
	maxAttempts int,
	offeredCouriers []kernel.UUID,
	assignedCourierID *kernel.UUID,
	assignedAt *time.Time,
	acceptedAt *time.Time,
	createdAt time.Time,
	version int64,
) (*Job, error) {
	if err := errors.Join(
		id.Validate(),
		pickup.Validate(),
		dropoff.Validate(),
		priority.Validate(),
		status.Validate(),
		broadcastStatus.Validate(),
	); err != nil {
		return nil, err
	}

	return &Job{
		id:                id,
		pickup:            pickup,
		dropoff:           dropoff,
		pickupAddress:     pickupAddress,
		dropoffAddress:    dropoffAddress,
		feeCents:          feeCents,
		priority:          priority,
		status:            status,
		broadcastStatus:   broadcastStatus,
		broadcastStart:    broadcastStart,
		broadcastEnd:      broadcastEnd,
		radiusKm:          radiusKm,
		durationSec:       durationSec,
		attempts:          attempts,
		maxAttempts:       maxAttempts,
		offeredCouriers:   append([]kernel.UUID(nil), offeredCouriers...),
		assignedCourierID: assignedCourierID,
		assignedAt:        assignedAt,
		acceptedAt:        acceptedAt,
		createdAt:         createdAt.UTC(),
		version:           version,
		isConstructed:     true,
	}, nil
}

// Validate ensures the Job was created through NewJob or RestoreJob.
func (j *Job) Validate() error {
	if j == nil || !j.isConstructed {
		return ErrJobIsNotConstructed
	}
	return nil
}

// IsEqual compares two jobs by their unique identifiers.
func (j *Job) IsEqual(other *Job) bool {
	return other != nil && j.id.IsEqual(other.id)
}

// ID returns the job's unique identifier.
func (j *Job) ID() kernel.UUID {
	return j.id
}

// Pickup returns the pickup coordinate used as the broadcast origin.
func (j *Job) Pickup() kernel.GeoPoint {
	return j.pickup
}

// Dropoff returns the delivery destination coordinate.
func (j *Job) Dropoff() kernel.GeoPoint {
	return j.dropoff
}

// PickupAddress returns the human-readable pickup address.
func (j *Job) PickupAddress() string {
	return j.pickupAddress
}

// DropoffAddress returns the human-readable dropoff address.
func (j *Job) DropoffAddress() string {
	return j.dropoffAddress
}

// FeeCents returns the courier fee in minor currency units.
func (j *Job) FeeCents() int64 {
	return j.feeCents
}

// Priority returns the dispatch tier of the job.
func (j *Job) Priority() Priority {
	return j.priority
}

// Status returns the current job lifecycle status.
func (j *Job) Status() Status {
	return j.status
}

// BroadcastStatus returns the current broadcast state.
func (j *Job) BroadcastStatus() BroadcastStatus {
	return j.broadcastStatus
}

// BroadcastStart returns when the current broadcast opened, nil before the
// first broadcast.
func (j *Job) BroadcastStart() *time.Time {
	return j.broadcastStart
}

// BroadcastEnd returns the current broadcast deadline, nil before the first
// broadcast.
func (j *Job) BroadcastEnd() *time.Time {
	return j.broadcastEnd
}

// RadiusKm returns the current broadcast search radius.
func (j *Job) RadiusKm() float64 {
	return j.radiusKm
}

// DurationSec returns the current broadcast duration in seconds.
func (j *Job) DurationSec() int {
	return j.durationSec
}

// Attempts returns how many broadcasts have been opened for this job.
func (j *Job) Attempts() int {
	return j.attempts
}

// MaxAttempts returns the broadcast attempt budget.
func (j *Job) MaxAttempts() int {
	return j.maxAttempts
}

// OfferedCouriers returns the couriers notified for the current broadcast.
func (j *Job) OfferedCouriers() []kernel.UUID {
	return append([]kernel.UUID(nil), j.offeredCouriers...)
}

// AssignedCourier returns the awarded courier's ID, nil while unassigned.
func (j *Job) AssignedCourier() *kernel.UUID {
	return j.assignedCourierID
}

// AssignedAt returns when a courier was assigned, nil while unassigned.
func (j *Job) AssignedAt() *time.Time {
	return j.assignedAt
}

// AcceptedAt returns when the winning courier accepted, nil for manual
// assignments and unassigned jobs.
func (j *Job) AcceptedAt() *time.Time {
	return j.acceptedAt
}

// CreatedAt returns when the job entered the system.
func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

// Version returns the optimistic concurrency token for the store's
// conditional write.
func (j *Job) Version() int64 {
	return j.version
}

// AdvanceVersion bumps the concurrency token. Called by persistence adapters
// after a successful conditional write so the in-memory aggregate matches the
// stored row.
func (j *Job) AdvanceVersion() {
	j.version++
}

// CanBeAccepted reports whether an acceptance at the given instant would
// succeed: the job is broadcasting, the deadline has not passed and no
// courier is assigned yet.
func (j *Job) CanBeAccepted(now time.Time) bool {
	return j.broadcastStatus == BroadcastBroadcasting &&
		j.assignedCourierID == nil &&
		j.broadcastEnd != nil &&
		!now.After(*j.broadcastEnd)
}

// StartBroadcast opens a broadcast: valid only from the NotStarted broadcast
// state with attempts remaining. Records the offered courier snapshot, sets
// the deadline to now plus the current duration and consumes one attempt.
func (j *Job) StartBroadcast(now time.Time, offeredCouriers []kernel.UUID) error {
	if err := j.ensureDispatchable("start broadcast"); err != nil {
		return err
	}

	if j.broadcastStatus != BroadcastNotStarted {
		return NewInvalidStateError("start broadcast", j.status, j.broadcastStatus)
	}
	if j.attempts >= j.maxAttempts {
		return NewInvalidStateError("start broadcast", j.status, j.broadcastStatus)
	}

	start := now.UTC()
	end := start.Add(time.Duration(j.durationSec) * time.Second)

	j.broadcastStart = &start
	j.broadcastEnd = &end
	j.attempts++
	j.offeredCouriers = append([]kernel.UUID(nil), offeredCouriers...)
	j.status = StatusBroadcasting
	j.broadcastStatus = BroadcastBroadcasting

	return nil
}

// Expire closes a broadcast whose deadline has passed: valid only from the
// Broadcasting state once now is past the deadline. The job drops back to
// StatusPending so a retry can pick it up.
func (j *Job) Expire(now time.Time) error {
	if err := j.ensureDispatchable("expire broadcast"); err != nil {
		return err
	}

	if j.broadcastStatus != BroadcastBroadcasting || j.broadcastEnd == nil {
		return NewInvalidStateError("expire broadcast", j.status, j.broadcastStatus)
	}
	if !now.After(*j.broadcastEnd) {
		return NewInvalidStateError("expire broadcast", j.status, j.broadcastStatus)
	}

	j.status = StatusPending
	j.broadcastStatus = BroadcastExpired
	j.offeredCouriers = nil

	return nil
}

// Retry escalates an expired broadcast for another attempt: radius widens by
// RadiusEscalationFactor and duration by DurationEscalationFactor, both
// capped. Valid only from the Expired state with attempts remaining; the job
// returns to NotStarted so the ready queue scanner re-broadcasts it.
func (j *Job) Retry() error {
	if err := j.ensureDispatchable("retry broadcast"); err != nil {
		return err
	}

	if j.broadcastStatus != BroadcastExpired {
		return NewInvalidStateError("retry broadcast", j.status, j.broadcastStatus)
	}
	if j.attempts >= j.maxAttempts {
		return NewInvalidStateError("retry broadcast", j.status, j.broadcastStatus)
	}

	j.radiusKm = escalateRadius(j.radiusKm)
	j.durationSec = escalateDuration(j.durationSec)
	j.broadcastStatus = BroadcastNotStarted

	return nil
}

// EscalateToManual moves a job whose attempt budget is exhausted to
// ManualAssignment, the terminal state for automated dispatch. Valid only
// from the Expired state with no attempts remaining. This is the designed
// end of escalation, not an error path.
func (j *Job) EscalateToManual() error {
	if err := j.ensureDispatchable("escalate to manual assignment"); err != nil {
		return err
	}

	if j.broadcastStatus != BroadcastExpired {
		return NewInvalidStateError("escalate to manual assignment", j.status, j.broadcastStatus)
	}
	if j.attempts < j.maxAttempts {
		return NewInvalidStateError("escalate to manual assignment", j.status, j.broadcastStatus)
	}

	j.broadcastStatus = BroadcastManualAssignment

	return nil
}

// Accept awards the job to a courier. Each precondition maps to a
// distinguishable failure: a courier already assigned yields
// ErrAlreadyAccepted, a non-broadcasting state yields InvalidStateError
// reporting the actual state, and a passed deadline yields
// ErrBroadcastExpired even when no scheduler tick has flipped the stored
// status yet.
//
// Accept mutates only the in-memory aggregate; the caller must persist it
// through the store's atomic conditional write, which is what resolves a
// concurrent acceptance race in favor of exactly one courier.
func (j *Job) Accept(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if err := j.ensureDispatchable("accept"); err != nil {
		return err
	}

	if j.assignedCourierID != nil {
		return ErrAlreadyAccepted
	}
	if j.broadcastStatus != BroadcastBroadcasting {
		return NewInvalidStateError("accept", j.status, j.broadcastStatus)
	}
	// Deadline check is independent of the stored status: a late scheduler
	// tick must not open a window where an expired broadcast is acceptable.
	if j.broadcastEnd == nil || now.After(*j.broadcastEnd) {
		return ErrBroadcastExpired
	}

	acceptedAt := now.UTC()
	j.assignedCourierID = &courierID
	j.assignedAt = &acceptedAt
	j.acceptedAt = &acceptedAt
	j.status = StatusAccepted
	j.broadcastStatus = BroadcastAccepted

	return nil
}

// AssignManually attaches a courier by admin decision, bypassing the
// broadcast flow. Valid from any state that has not already produced an
// assignment; the job never passes through Broadcasting on this path. Also
// used to resolve jobs that escalated to ManualAssignment.
func (j *Job) AssignManually(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if err := j.ensureDispatchable("assign manually"); err != nil {
		return err
	}

	if j.assignedCourierID != nil {
		return NewInvalidStateError("assign manually", j.status, j.broadcastStatus)
	}

	assignedAt := now.UTC()
	j.assignedCourierID = &courierID
	j.assignedAt = &assignedAt
	j.status = StatusAccepted
	j.broadcastStatus = BroadcastManualAssignment
	j.offeredCouriers = nil

	return nil
}

// Cancel marks the job cancelled, which refuses all further dispatch
// activity. The cancellation itself is owned by an external collaborator;
// dispatch only honors it.
func (j *Job) Cancel() error {
	if j.status.IsTerminal() {
		return NewInvalidStateError("cancel", j.status, j.broadcastStatus)
	}

	j.status = StatusCancelled

	return nil
}

// ensureDispatchable refuses dispatch transitions on terminal jobs.
func (j *Job) ensureDispatchable(operation string) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if j.status.IsTerminal() {
		return NewInvalidStateError(operation, j.status, j.broadcastStatus)
	}
	return nil
}

func (j *Job) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	j.id = id
	return nil
}

func (j *Job) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	j.pickup = pickup
	return nil
}

func (j *Job) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}
	j.dropoff = dropoff
	return nil
}

func (j *Job) setPickupAddress(address string) error {
	if address == "" {
		return ErrPickupAddressIsRequired
	}
	j.pickupAddress = address
	return nil
}

func (j *Job) setDropoffAddress(address string) error {
	if address == "" {
		return ErrDropoffAddressIsRequired
	}
	j.dropoffAddress = address
	return nil
}

func (j *Job) setFeeCents(feeCents int64) error {
	if feeCents < 0 {
		return ErrFeeIsInvalid
	}
	j.feeCents = feeCents
	return nil
}

func (j *Job) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	j.priority = priority
	return nil
}

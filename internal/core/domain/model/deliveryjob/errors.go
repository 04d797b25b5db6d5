package deliveryjob

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is the unwrap target of InvalidStateError. Returned when
	// a dispatch operation is attempted from a state that forbids it.
	ErrInvalidState = errors.New("operation is not allowed in the current state")

	// ErrAlreadyAccepted is returned when a courier loses the acceptance race:
	// another courier has already been awarded the job. Surfaced distinctly so
	// a client can explain "someone else got it".
	ErrAlreadyAccepted = errors.New("job has already been accepted by another courier")

	// ErrBroadcastExpired is returned when an acceptance arrives after the
	// broadcast deadline, regardless of whether a scheduler tick has already
	// flipped the stored status. Surfaced distinctly to prompt a refresh.
	ErrBroadcastExpired = errors.New("broadcast deadline has passed")
)

// InvalidStateError reports a forbidden state transition, carrying the
// operation attempted and the job's actual current states so the caller can
// see exactly why it was refused. Unwraps to ErrInvalidState.
type InvalidStateError struct {
	Operation       string
	Status          Status
	BroadcastStatus BroadcastStatus
}

// NewInvalidStateError creates an InvalidStateError for the given operation
// and the job's current states.
func NewInvalidStateError(operation string, status Status, broadcastStatus BroadcastStatus) InvalidStateError {
	return InvalidStateError{
		Operation:       operation,
		Status:          status,
		BroadcastStatus: broadcastStatus,
	}
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s while job status is %s and broadcast status is %s",
		ErrInvalidState, e.Operation, e.Status, e.BroadcastStatus)
}

func (e InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

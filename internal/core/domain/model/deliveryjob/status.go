package deliveryjob

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the overall lifecycle state of a delivery job.
// Most of the lifecycle (pickup, delivery, cancellation) is driven by
// collaborators outside the dispatch core; dispatch only moves jobs between
// Pending, Broadcasting and Accepted, and refuses to act on terminal jobs.
//
// State transitions owned by dispatch:
//
//	Pending ──> Broadcasting ──> Accepted
//	   ▲             │
//	   └─────────────┘
//	  (broadcast expired)
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending is the initial status of a job awaiting dispatch.
	StatusPending

	// StatusBroadcasting indicates the job is currently offered to couriers.
	StatusBroadcasting

	// StatusAccepted indicates a courier has been awarded the job.
	StatusAccepted

	// StatusPickedUp indicates the assigned courier collected the package.
	// Transition is owned by the courier app, not by dispatch.
	StatusPickedUp

	// StatusDelivered indicates the job completed successfully. Terminal.
	StatusDelivered

	// StatusCancelled indicates the job was cancelled. Terminal.
	StatusCancelled

	// StatusFailed indicates the delivery failed. Terminal.
	StatusFailed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:      "Unknown",
		StatusPending:      "Pending",
		StatusBroadcasting: "Broadcasting",
		StatusAccepted:     "Accepted",
		StatusPickedUp:     "PickedUp",
		StatusDelivered:    "Delivered",
		StatusCancelled:    "Cancelled",
		StatusFailed:       "Failed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:      "Pending",
		StatusBroadcasting: "Broadcasting",
		StatusAccepted:     "Accepted",
		StatusPickedUp:     "PickedUp",
		StatusDelivered:    "Delivered",
		StatusCancelled:    "Cancelled",
		StatusFailed:       "Failed",
	}
}

// Validate checks if the Status value is valid.
// StatusUnknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status permits no further dispatch activity.
// Every dispatch transition refuses to proceed on a terminal job.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

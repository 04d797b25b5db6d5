package deliveryjob

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// BroadcastStatus represents the state of a job within the broadcast state
// machine. It is orthogonal to Status: Status tracks the delivery lifecycle,
// BroadcastStatus tracks the automated matching lifecycle.
//
// State transitions:
//
//	NotStarted ──> Broadcasting ──┬──> Accepted
//	     ▲                        │
//	     │                        └──> Expired ──┬──> NotStarted (retry, escalated)
//	     └───────────────────────────────────────┘
//	                                             └──> ManualAssignment (attempts exhausted)
//
// ManualAssignment is terminal for automated dispatch; only an admin-directed
// assignment can still attach a courier afterwards.
type BroadcastStatus int

const (
	// BroadcastUnknown represents an invalid or undefined broadcast status.
	BroadcastUnknown BroadcastStatus = iota

	// BroadcastNotStarted means the job is waiting for the ready queue
	// scanner to open its first (or next, after a retry) broadcast.
	BroadcastNotStarted

	// BroadcastBroadcasting means the job is currently offered to eligible
	// couriers and can be accepted until the broadcast deadline.
	BroadcastBroadcasting

	// BroadcastAccepted means exactly one courier won the broadcast.
	BroadcastAccepted

	// BroadcastExpired means the broadcast deadline passed without an
	// acceptance. The expiry scheduler decides between retry and escalation.
	BroadcastExpired

	// BroadcastManualAssignment means automated matching gave up after
	// exhausting all attempts, or the caller opted out of automated dispatch.
	BroadcastManualAssignment
)

func getBroadcastStatusStrings() map[BroadcastStatus]string {
	return map[BroadcastStatus]string{
		BroadcastUnknown:          "Unknown",
		BroadcastNotStarted:       "NotStarted",
		BroadcastBroadcasting:     "Broadcasting",
		BroadcastAccepted:         "Accepted",
		BroadcastExpired:          "Expired",
		BroadcastManualAssignment: "ManualAssignment",
	}
}

func getValidBroadcastStatusStrings() map[BroadcastStatus]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[BroadcastStatus]string{
		BroadcastNotStarted:       "NotStarted",
		BroadcastBroadcasting:     "Broadcasting",
		BroadcastAccepted:         "Accepted",
		BroadcastExpired:          "Expired",
		BroadcastManualAssignment: "ManualAssignment",
	}
}

// Validate checks if the BroadcastStatus value is valid.
func (s BroadcastStatus) Validate() error {
	if _, ok := getValidBroadcastStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("broadcast status is invalid",
			fmt.Errorf("%d is not a valid broadcast status", s))
	}
	return nil
}

// String returns the human-readable name of the broadcast status.
// Implements fmt.Stringer and is safe on any value.
func (s BroadcastStatus) String() string {
	if str, ok := getBroadcastStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

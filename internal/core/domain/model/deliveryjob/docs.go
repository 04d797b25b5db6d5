// Package deliveryjob provides domain entities and business logic for the
// dispatch core. It implements the Job aggregate root with the time-boxed
// broadcast state machine that awards each job to at most one courier.
//
// The package includes:
//   - Job: The aggregate root managing job identity, broadcast configuration
//     and lifecycle
//   - Status: The delivery lifecycle state machine
//   - BroadcastStatus: The automated matching state machine
//   - BroadcastSettings: The clamped per-job broadcast configuration
//   - Priority: The ordered dispatch tier
//
// Key business rules:
//   - A broadcast is open for a bounded duration; acceptance after the
//     deadline is refused even before any scheduler tick
//   - At most one courier is ever assigned; a losing acceptance gets a
//     distinct ErrAlreadyAccepted
//   - Expired broadcasts retry with an escalated radius and duration until
//     the attempt budget runs out, then escalate to manual assignment
//   - No dispatch transition proceeds on a terminal job
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package deliveryjob

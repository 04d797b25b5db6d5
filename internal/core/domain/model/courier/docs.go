// Package courier provides the dispatch core's read model of couriers.
// Courier accounts live in a separate system; dispatch consumes a projection
// carrying only what broadcast targeting needs.
//
// The package includes:
//   - Courier: availability flags plus a position with a service area fallback
//
// Key business rules:
//   - A courier is eligible for offers only while active, online and not suspended
//   - Proximity ranking uses the last reported location, falling back to the
//     registered service area center when none exists
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package courier

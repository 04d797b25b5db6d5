// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, domain transition,
// and an atomic conditional write of the affected job record.
//
// No handler ever holds a lock or transaction spanning more than one job
// record; concurrency is resolved by the JobRepository's version-guarded
// Update, with the handler re-reading on a lost race.
package commands

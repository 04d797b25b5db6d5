package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateJobCommandIsNotConstructed = errors.New(
		"CreateJobCommand must be created via NewCreateJobCommand constructor",
	)
	ErrPickupAddressIsRequired  = errors.New("pickup address is required")
	ErrDropoffAddressIsRequired = errors.New("dropoff address is required")
	ErrFeeIsNegative            = errors.New("fee must not be negative")
)

// CreateJobCommand represents a request to register a new delivery job for
// dispatch. Broadcast overrides (radius, duration, attempts) are optional;
// zero selects the configured default and out-of-bounds values are clamped
// by the domain.
//
// Example:
//
//	pickup, _ := kernel.NewGeoPoint(35.1856, 33.3823)
//	dropoff, _ := kernel.NewGeoPoint(35.1700, 33.3600)
//	cmd, err := NewCreateJobCommand(kernel.NewUUID(), pickup, dropoff,
//	    "1 Ledra Street", "20 Onasagorou Street", 1250,
//	    deliveryjob.PriorityNormal, 0, 0, 0)
//	if err != nil {
//	    return fmt.Errorf("invalid job data: %w", err)
//	}
type CreateJobCommand struct { //nolint:recvcheck //using for validation
	jobID          kernel.UUID
	pickup         kernel.GeoPoint
	dropoff        kernel.GeoPoint
	pickupAddress  string
	dropoffAddress string
	feeCents       int64
	priority       deliveryjob.Priority
	radiusKm       float64
	durationSec    int
	maxAttempts    int

	guard guard.ConstructorGuard
}

// NewCreateJobCommand creates a command to register a new delivery job.
// Validates identity, coordinates, addresses, fee and priority; the
// broadcast overrides are passed through for the domain to clamp.
func NewCreateJobCommand(
	jobID kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	pickupAddress string,
	dropoffAddress string,
	feeCents int64,
	priority deliveryjob.Priority,
	radiusKm float64,
	durationSec int,
	maxAttempts int,
) (CreateJobCommand, error) {
	jobCommand := CreateJobCommand{
		radiusKm:    radiusKm,
		durationSec: durationSec,
		maxAttempts: maxAttempts,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		jobCommand.setJobID(jobID),
		jobCommand.setPickup(pickup),
		jobCommand.setDropoff(dropoff),
		jobCommand.setPickupAddress(pickupAddress),
		jobCommand.setDropoffAddress(dropoffAddress),
		jobCommand.setFeeCents(feeCents),
		jobCommand.setPriority(priority),
	); err != nil {
		return CreateJobCommand{}, err
	}

	return jobCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateJobCommandIsNotConstructed if validation fails.
func (c CreateJobCommand) Validate() error {
	return c.guard.Validate(ErrCreateJobCommandIsNotConstructed)
}

// JobID returns the unique identifier for the job.
func (c CreateJobCommand) JobID() kernel.UUID {
	return c.jobID
}

// Pickup returns the pickup coordinate, the broadcast origin.
func (c CreateJobCommand) Pickup() kernel.GeoPoint {
	return c.pickup
}

// Dropoff returns the delivery destination coordinate.
func (c CreateJobCommand) Dropoff() kernel.GeoPoint {
	return c.dropoff
}

// PickupAddress returns the human-readable pickup address.
func (c CreateJobCommand) PickupAddress() string {
	return c.pickupAddress
}

// DropoffAddress returns the human-readable dropoff address.
func (c CreateJobCommand) DropoffAddress() string {
	return c.dropoffAddress
}

// FeeCents returns the courier fee in minor currency units.
func (c CreateJobCommand) FeeCents() int64 {
	return c.feeCents
}

// Priority returns the dispatch tier for the job.
func (c CreateJobCommand) Priority() deliveryjob.Priority {
	return c.priority
}

// RadiusKm returns the broadcast radius override, zero for the default.
func (c CreateJobCommand) RadiusKm() float64 {
	return c.radiusKm
}

// DurationSec returns the broadcast duration override, zero for the default.
func (c CreateJobCommand) DurationSec() int {
	return c.durationSec
}

// MaxAttempts returns the attempt budget override, zero for the default.
func (c CreateJobCommand) MaxAttempts() int {
	return c.maxAttempts
}

func (c *CreateJobCommand) setJobID(jobID kernel.UUID) error {
	if err := jobID.Validate(); err != nil {
		return err
	}

	c.jobID = jobID
	return nil
}

func (c *CreateJobCommand) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}

	c.pickup = pickup
	return nil
}

func (c *CreateJobCommand) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}

	c.dropoff = dropoff
	return nil
}

func (c *CreateJobCommand) setPickupAddress(address string) error {
	if address == "" {
		return ErrPickupAddressIsRequired
	}

	c.pickupAddress = address
	return nil
}

func (c *CreateJobCommand) setDropoffAddress(address string) error {
	if address == "" {
		return ErrDropoffAddressIsRequired
	}

	c.dropoffAddress = address
	return nil
}

func (c *CreateJobCommand) setFeeCents(feeCents int64) error {
	if feeCents < 0 {
		return ErrFeeIsNegative
	}

	c.feeCents = feeCents
	return nil
}

func (c *CreateJobCommand) setPriority(priority deliveryjob.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}

	c.priority = priority
	return nil
}

package courier

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
)

// Courier is the dispatch core's read model of a courier. Courier accounts
// are owned elsewhere; dispatch only consumes a projection with the fields
// that drive broadcast targeting: availability flags and a position.
//
// A courier is a valid broadcast target when it is active, online, not
// suspended and has a usable position. Position falls back to the courier's
// service area center when no recent location report exists.
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is the human-readable name of the courier
	name string
	// active means the account is enabled for work
	active bool
	// online means the courier is currently on shift
	online bool
	// suspended means the account is temporarily barred from offers
	suspended bool
	// lastLocation is the most recent reported position, nil when stale or absent
	lastLocation *kernel.GeoPoint
	// serviceAreaCenter is the registered home area, the position fallback
	serviceAreaCenter kernel.GeoPoint
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a courier projection from the fields dispatch consumes.
// The service area center is required; the last reported location is
// optional and may be nil.
func NewCourier(
	id kernel.UUID,
	name string,
	active bool,
	online bool,
	suspended bool,
	lastLocation *kernel.GeoPoint,
	serviceAreaCenter kernel.GeoPoint,
) (*Courier, error) {
	courier := &Courier{
		active:    active,
		online:    online,
		suspended: suspended,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setLastLocation(lastLocation),
		courier.setServiceAreaCenter(serviceAreaCenter),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// Validate ensures the Courier was created through NewCourier.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's human-readable name.
func (c *Courier) Name() string {
	return c.name
}

// IsActive reports whether the account is enabled for work.
func (c *Courier) IsActive() bool {
	return c.active
}

// IsOnline reports whether the courier is currently on shift.
func (c *Courier) IsOnline() bool {
	return c.online
}

// IsSuspended reports whether the account is barred from receiving offers.
func (c *Courier) IsSuspended() bool {
	return c.suspended
}

// LastLocation returns the most recent reported position, nil when absent.
func (c *Courier) LastLocation() *kernel.GeoPoint {
	return c.lastLocation
}

// ServiceAreaCenter returns the courier's registered home area center.
func (c *Courier) ServiceAreaCenter() kernel.GeoPoint {
	return c.serviceAreaCenter
}

// IsEligible reports whether the courier is a valid broadcast target:
// active, online and not suspended. Position availability is guaranteed by
// construction through the service area fallback.
func (c *Courier) IsEligible() bool {
	return c.active && c.online && !c.suspended
}

// EffectiveLocation returns the position used for proximity ranking: the
// last reported location when present, otherwise the service area center.
func (c *Courier) EffectiveLocation() kernel.GeoPoint {
	if c.lastLocation != nil {
		return *c.lastLocation
	}
	return c.serviceAreaCenter
}

// DistanceKmTo returns the great-circle distance in kilometers from the
// courier's effective location to the given point. The error mirrors
// GeoPoint.DistanceKm and fires only when the given point is unconstructed.
func (c *Courier) DistanceKmTo(point kernel.GeoPoint) (float64, error) {
	return c.EffectiveLocation().DistanceKm(point)
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setLastLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	c.lastLocation = location
	return nil
}

func (c *Courier) setServiceAreaCenter(center kernel.GeoPoint) error {
	if err := center.Validate(); err != nil {
		return err
	}
	c.serviceAreaCenter = center
	return nil
}

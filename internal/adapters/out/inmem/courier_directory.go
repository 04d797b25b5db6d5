package inmem

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// CourierDirectory implements ports.CourierDirectory in memory.
type CourierDirectory struct {
	mu       sync.RWMutex
	couriers map[string]*courier.Courier
}

// NewCourierDirectory creates an empty in-memory courier directory.
func NewCourierDirectory() *CourierDirectory {
	return &CourierDirectory{couriers: make(map[string]*courier.Courier)}
}

// Save stores or replaces a courier projection.
func (d *CourierDirectory) Save(_ context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.couriers[c.ID().String()] = c
	return nil
}

// Get retrieves a courier projection by ID.
func (d *CourierDirectory) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	c, exists := d.couriers[id.String()]
	if !exists {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	return c, nil
}

// GetAvailable retrieves couriers that are active, online and not suspended.
func (d *CourierDirectory) GetAvailable(_ context.Context) ([]*courier.Courier, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	available := make([]*courier.Courier, 0, len(d.couriers))
	for _, c := range d.couriers {
		if c.IsEligible() {
			available = append(available, c)
		}
	}
	return available, nil
}

package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierDirectory provides read access to the courier projection consumed
// by dispatch. The projection is maintained by the courier account system;
// dispatch never writes to it.
type CourierDirectory interface {
	// Get retrieves a single courier projection by its unique identifier.
	// Returns an errs.ObjectNotFoundError when no such courier exists.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAvailable retrieves the couriers currently worth ranking for a
	// broadcast: active, online, not suspended. Eligibility is re-checked in
	// the domain; this is a coarse pre-filter to keep result sets small.
	GetAvailable(ctx context.Context) ([]*courier.Courier, error)
}

package services

import (
	"sort"
	"strings"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// RankedCourier pairs an eligible courier with its distance to the broadcast
// origin, as selected by the ProximityFinder.
type RankedCourier struct {
	Courier    *courier.Courier
	DistanceKm float64
}

// ProximityFinder is a domain service that selects the couriers a broadcast
// is offered to: eligible couriers within the search radius of the pickup
// point, nearest first.
//
// Business rules:
//   - Only eligible couriers (active, online, not suspended) are considered
//   - Distance is the great-circle distance from the courier's effective
//     location to the pickup point
//   - Couriers beyond the radius are excluded
//   - Results are ordered nearest first; equal distances order by courier ID
//     so repeated runs over the same inputs produce the same list
//   - A positive limit caps the result to the closest candidates
type ProximityFinder struct{}

// NewProximityFinder creates a new ProximityFinder instance.
func NewProximityFinder() ProximityFinder {
	return ProximityFinder{}
}

// FindWithinRadius returns the eligible couriers within radiusKm of the
// pickup point, nearest first. A limit of zero or less means no cap.
// An empty result is a valid outcome, not an error; the caller decides what
// an empty broadcast means.
func (f ProximityFinder) FindWithinRadius(
	pickup kernel.GeoPoint,
	couriers []*courier.Courier,
	radiusKm float64,
	limit int,
) ([]RankedCourier, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	ranked := make([]RankedCourier, 0, len(couriers))
	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		if !c.IsEligible() {
			continue
		}

		distance, err := c.DistanceKmTo(pickup)
		if err != nil {
			return nil, err
		}
		if distance > radiusKm {
			continue
		}

		ranked = append(ranked, RankedCourier{Courier: c, DistanceKm: distance})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return strings.Compare(ranked[i].Courier.ID().String(), ranked[j].Courier.ID().String()) < 0
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked, nil
}

// Package courierrepo provides data transfer objects and mapping functions
// for the courier projection dispatch reads. The projection rows are written
// by the courier account system's sync; dispatch treats them as read-only
// apart from the sync entry point itself.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for the courier projection.
// The availability flags are indexed together to serve the broadcast
// candidate scan.
type CourierDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Active    bool      `gorm:"index:idx_couriers_available"`
	Online    bool      `gorm:"index:idx_couriers_available"`
	Suspended bool      `gorm:"index:idx_couriers_available"`
	// Last reported position; both columns nil when no report exists.
	LastLat *float64
	LastLon *float64
	// Registered service area center, the position fallback.
	ServiceAreaLat float64
	ServiceAreaLon float64
	UpdatedAt      time.Time
}

// TableName specifies the database table name for courier projection rows.
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier projection to its database representation.
func fromDomain(c *courier.Courier) CourierDTO {
	dto := CourierDTO{
		ID:             c.ID().Bytes(),
		Name:           c.Name(),
		Active:         c.IsActive(),
		Online:         c.IsOnline(),
		Suspended:      c.IsSuspended(),
		ServiceAreaLat: c.ServiceAreaCenter().Lat(),
		ServiceAreaLon: c.ServiceAreaCenter().Lon(),
	}

	if last := c.LastLocation(); last != nil {
		lat, lon := last.Lat(), last.Lon()
		dto.LastLat = &lat
		dto.LastLon = &lon
	}

	return dto
}

// toDomain converts a database row to a courier projection.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var lastLocation *kernel.GeoPoint
	if dto.LastLat != nil && dto.LastLon != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.LastLat, *dto.LastLon)
		if pointErr != nil {
			return nil, pointErr
		}
		lastLocation = &point
	}

	serviceAreaCenter, err := kernel.NewGeoPoint(dto.ServiceAreaLat, dto.ServiceAreaLon)
	if err != nil {
		return nil, err
	}

	return courier.NewCourier(id, dto.Name, dto.Active, dto.Online, dto.Suspended,
		lastLocation, serviceAreaCenter)
}

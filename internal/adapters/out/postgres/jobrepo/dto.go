// Package jobrepo provides data transfer objects and mapping functions for
// delivery job persistence. This package implements the repository pattern
// for the job aggregate, handling the conversion between domain entities and
// database representations.
package jobrepo

import (
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO represents the database structure for persisting job aggregates.
// Indexed for the two scheduler scans (ready queue, overdue broadcasts) and
// for the per-courier active jobs lookup. The version column carries the
// optimistic concurrency token checked by the conditional update.
type JobDTO struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Pickup            GeoPointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff           GeoPointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	PickupAddress     string
	DropoffAddress    string
	FeeCents          int64
	Priority          int
	Status            int `gorm:"index:idx_jobs_ready"`
	BroadcastStatus   int `gorm:"index:idx_jobs_ready;index:idx_jobs_overdue"`
	BroadcastStart    *time.Time
	BroadcastEnd      *time.Time `gorm:"index:idx_jobs_overdue"`
	RadiusKm          float64
	DurationSec       int
	Attempts          int
	MaxAttempts       int
	OfferedCourierIDs []uuid.UUID `gorm:"serializer:json;type:jsonb"`
	AssignedCourierID *uuid.UUID  `gorm:"type:uuid;index"`
	AssignedAt        *time.Time
	AcceptedAt        *time.Time
	CreatedAt         time.Time
	Version           int64
}

// TableName specifies the database table name for job entities.
func (JobDTO) TableName() string {
	return "jobs"
}

// GeoPointDTO represents embedded WGS84 coordinates within the job table.
type GeoPointDTO struct {
	Lat float64
	Lon float64
}

// fromDomain converts a job domain aggregate to its database representation.
// The version column carries the aggregate's current token; the conditional
// update writes version+1 while matching on the current value.
func fromDomain(job *deliveryjob.Job) JobDTO {
	var assignedCourierID *uuid.UUID
	if id := job.AssignedCourier(); id != nil {
		raw := id.Bytes()
		assignedCourierID = &raw
	}

	offered := job.OfferedCouriers()
	offeredIDs := make([]uuid.UUID, 0, len(offered))
	for _, id := range offered {
		offeredIDs = append(offeredIDs, id.Bytes())
	}

	return JobDTO{
		ID:                job.ID().Bytes(),
		Pickup:            GeoPointDTO{Lat: job.Pickup().Lat(), Lon: job.Pickup().Lon()},
		Dropoff:           GeoPointDTO{Lat: job.Dropoff().Lat(), Lon: job.Dropoff().Lon()},
		PickupAddress:     job.PickupAddress(),
		DropoffAddress:    job.DropoffAddress(),
		FeeCents:          job.FeeCents(),
		Priority:          int(job.Priority()),
		Status:            int(job.Status()),
		BroadcastStatus:   int(job.BroadcastStatus()),
		BroadcastStart:    job.BroadcastStart(),
		BroadcastEnd:      job.BroadcastEnd(),
		RadiusKm:          job.RadiusKm(),
		DurationSec:       job.DurationSec(),
		Attempts:          job.Attempts(),
		MaxAttempts:       job.MaxAttempts(),
		OfferedCourierIDs: offeredIDs,
		AssignedCourierID: assignedCourierID,
		AssignedAt:        job.AssignedAt(),
		AcceptedAt:        job.AcceptedAt(),
		CreatedAt:         job.CreatedAt(),
		Version:           job.Version(),
	}
}

// toDomain converts a database DTO to a job domain aggregate using RestoreJob.
func toDomain(dto JobDTO) (*deliveryjob.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lon)
	if err != nil {
		return nil, err
	}

	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lon)
	if err != nil {
		return nil, err
	}

	offered := make([]kernel.UUID, 0, len(dto.OfferedCourierIDs))
	for _, raw := range dto.OfferedCourierIDs {
		courierID, idErr := kernel.UUIDFromBytes(raw[:])
		if idErr != nil {
			return nil, idErr
		}
		offered = append(offered, courierID)
	}

	var assignedCourierID *kernel.UUID
	if dto.AssignedCourierID != nil {
		courierID, idErr := kernel.UUIDFromBytes((*dto.AssignedCourierID)[:])
		if idErr != nil {
			return nil, idErr
		}
		assignedCourierID = &courierID
	}

	return deliveryjob.RestoreJob(
		id,
		pickup,
		dropoff,
		dto.PickupAddress,
		dto.DropoffAddress,
		dto.FeeCents,
		deliveryjob.Priority(dto.Priority),
		deliveryjob.Status(dto.Status),
		deliveryjob.BroadcastStatus(dto.BroadcastStatus),
		dto.BroadcastStart,
		dto.BroadcastEnd,
		dto.RadiusKm,
		dto.DurationSec,
		dto.Attempts,
		dto.MaxAttempts,
		offered,
		assignedCourierID,
		dto.AssignedAt,
		dto.AcceptedAt,
		dto.CreatedAt,
		dto.Version,
	)
}

package jobrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormJobRepository implements ports.JobRepository using GORM.
//
// Concurrency control is a single-row compare-and-swap: every Update matches
// on the version the aggregate was read with and bumps it on success. No
// transaction ever spans more than one job row.
type GormJobRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormJobRepository creates a new GORM job repository. The now function
// supplies the deadline cutoff for the overdue broadcast scan.
func NewGormJobRepository(db *gorm.DB, now func() time.Time) *GormJobRepository {
	return &GormJobRepository{
		db:  db,
		now: now,
	}
}

// Add saves a new job to the database.
func (r *GormJobRepository) Add(ctx context.Context, job *deliveryjob.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	dto := fromDomain(job)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update applies the aggregate's state as a conditional write:
//
//	UPDATE jobs SET ..., version = version+1
//	WHERE id = ? AND version = ? [AND assigned_courier_id IS NULL]
//
// The assignment guard is added whenever the write carries a courier, so two
// racing acceptances can never both land even if they read the same version.
// Zero affected rows means the row changed under us (or was deleted);
// ports.ErrConcurrentUpdate tells the caller to re-read and re-classify.
func (r *GormJobRepository) Update(ctx context.Context, job *deliveryjob.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	dto := fromDomain(job)
	dto.Version = job.Version() + 1

	query := r.db.WithContext(ctx).Model(&JobDTO{}).
		Where("id = ? AND version = ?", dto.ID, job.Version())
	if dto.AssignedCourierID != nil {
		query = query.Where("assigned_courier_id IS NULL")
	}

	result := query.Select("*").Omit("id", "created_at").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ports.ErrConcurrentUpdate
	}

	job.AdvanceVersion()
	return nil
}

// Get retrieves a job by ID.
func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryjob.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("job", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetReadyForBroadcast retrieves pending jobs awaiting a broadcast, highest
// priority first, oldest first within a tier.
func (r *GormJobRepository) GetReadyForBroadcast(ctx context.Context, limit int) ([]*deliveryjob.Job, error) {
	var dtos []JobDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND broadcast_status = ?",
			int(deliveryjob.StatusPending), int(deliveryjob.BroadcastNotStarted)).
		Order("priority DESC, created_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetExpiredBroadcasts retrieves jobs still marked Broadcasting whose
// deadline has passed, oldest deadline first.
func (r *GormJobRepository) GetExpiredBroadcasts(ctx context.Context, limit int) ([]*deliveryjob.Job, error) {
	var dtos []JobDTO
	err := r.db.WithContext(ctx).
		Where("broadcast_status = ? AND broadcast_end < ?",
			int(deliveryjob.BroadcastBroadcasting), r.now().UTC()).
		Order("broadcast_end ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []JobDTO) ([]*deliveryjob.Job, error) {
	jobs := make([]*deliveryjob.Job, 0, len(dtos))
	for _, dto := range dtos {
		job, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

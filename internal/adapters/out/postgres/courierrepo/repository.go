package courierrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCourierDirectory implements ports.CourierDirectory using GORM.
type GormCourierDirectory struct {
	db *gorm.DB
}

// NewGormCourierDirectory creates a new GORM courier directory.
func NewGormCourierDirectory(db *gorm.DB) *GormCourierDirectory {
	return &GormCourierDirectory{db: db}
}

// Get retrieves a courier projection by ID.
func (r *GormCourierDirectory) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAvailable retrieves couriers that are active, online and not suspended.
func (r *GormCourierDirectory) GetAvailable(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Where("active = ? AND online = ? AND suspended = ?", true, true, false).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}

// Save upserts a courier projection row. This is the sync entry point fed by
// the courier account system; it is deliberately not part of the
// CourierDirectory port the dispatch core sees.
func (r *GormCourierDirectory) Save(ctx context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dto := fromDomain(c)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

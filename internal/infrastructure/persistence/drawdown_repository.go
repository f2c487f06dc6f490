package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDrawdownRepository implements DrawdownRepository using GORM
type GormDrawdownRepository struct {
	db *gorm.DB
}

// NewGormDrawdownRepository creates a new GormDrawdownRepository
func NewGormDrawdownRepository(db *gorm.DB) *GormDrawdownRepository {
	return &GormDrawdownRepository{db: db}
}

// FindByID finds a drawdown by ID
func (r *GormDrawdownRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Drawdown, error) {
	var model models.DrawdownModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByFacility finds all drawdowns against a facility
func (r *GormDrawdownRepository) FindByFacility(ctx context.Context, facilityID uuid.UUID) ([]lending.Drawdown, error) {
	var drawdownModels []models.DrawdownModel
	if err := r.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("drawdown_date ASC").
		Find(&drawdownModels).Error; err != nil {
		return nil, err
	}
	drawdowns := make([]lending.Drawdown, len(drawdownModels))
	for i, model := range drawdownModels {
		drawdowns[i] = *model.ToDomain()
	}
	return drawdowns, nil
}

// FindAll finds drawdowns with filtering
func (r *GormDrawdownRepository) FindAll(ctx context.Context, filter lending.DrawdownFilter) ([]lending.Drawdown, error) {
	var drawdownModels []models.DrawdownModel
	query := applyDrawdownFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("drawdown_date DESC")

	if err := query.Find(&drawdownModels).Error; err != nil {
		return nil, err
	}
	drawdowns := make([]lending.Drawdown, len(drawdownModels))
	for i, model := range drawdownModels {
		drawdowns[i] = *model.ToDomain()
	}
	return drawdowns, nil
}

// CountByFacility counts drawdowns against a facility, optionally by status
func (r *GormDrawdownRepository) CountByFacility(ctx context.Context, facilityID uuid.UUID, status *lending.DrawdownStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.DrawdownModel{}).
		Where("facility_id = ?", facilityID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyDrawdownFilter(query *gorm.DB, filter lending.DrawdownFilter) *gorm.DB {
	if filter.FacilityID != nil {
		query = query.Where("facility_id = ?", *filter.FacilityID)
	}
	if filter.BorrowerID != nil {
		query = query.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("drawdown_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("drawdown_date <= ?", *filter.ToDate)
	}
	return query.Model(&models.DrawdownModel{})
}

// Save creates or updates a drawdown and its allocations
func (r *GormDrawdownRepository) Save(ctx context.Context, drawdown *lending.Drawdown) error {
	model := models.DrawdownModelFromDomain(drawdown)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDrawdownRepository) SaveWithLock(ctx context.Context, drawdown *lending.Drawdown, expectedVersion int) error {
	model := models.DrawdownModelFromDomain(drawdown)
	result := r.db.WithContext(ctx).
		Model(&models.DrawdownModel{}).
		Where("id = ? AND version = ?", drawdown.ID, expectedVersion).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a drawdown
func (r *GormDrawdownRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DrawdownModel{}, "id = ?", id).Error
}

// Ensure GormDrawdownRepository implements the interface
var _ lending.DrawdownRepository = (*GormDrawdownRepository)(nil)

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

// GormFacilityRepository implements FacilityRepository using GORM
type GormFacilityRepository struct {
	db *gorm.DB
}

// NewGormFacilityRepository creates a new GormFacilityRepository
func NewGormFacilityRepository(db *gorm.DB) *GormFacilityRepository {
	return &GormFacilityRepository{db: db}
}

// FindByID finds a facility by ID
func (r *GormFacilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Facility, error) {
	var model models.FacilityModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySyndicate finds all facilities of a syndicate
func (r *GormFacilityRepository) FindBySyndicate(ctx context.Context, syndicateID uuid.UUID) ([]lending.Facility, error) {
	var facilityModels []models.FacilityModel
	if err := r.db.WithContext(ctx).
		Where("syndicate_id = ?", syndicateID).
		Find(&facilityModels).Error; err != nil {
		return nil, err
	}
	facilities := make([]lending.Facility, len(facilityModels))
	for i, model := range facilityModels {
		facilities[i] = *model.ToDomain()
	}
	return facilities, nil
}

// FindAll finds facilities with filtering
func (r *GormFacilityRepository) FindAll(ctx context.Context, filter lending.FacilityFilter) ([]lending.Facility, error) {
	var facilityModels []models.FacilityModel
	query := applyFacilityFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("created_at DESC")

	if err := query.Find(&facilityModels).Error; err != nil {
		return nil, err
	}
	facilities := make([]lending.Facility, len(facilityModels))
	for i, model := range facilityModels {
		facilities[i] = *model.ToDomain()
	}
	return facilities, nil
}

// Count counts facilities matching the filter
func (r *GormFacilityRepository) Count(ctx context.Context, filter lending.FacilityFilter) (int64, error) {
	var count int64
	query := applyFacilityFilter(r.db.WithContext(ctx).Model(&models.FacilityModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyFacilityFilter(query *gorm.DB, filter lending.FacilityFilter) *gorm.DB {
	if filter.SyndicateID != nil {
		query = query.Where("syndicate_id = ?", *filter.SyndicateID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Currency != nil {
		query = query.Where("currency = ?", *filter.Currency)
	}
	return query.Model(&models.FacilityModel{})
}

// Save creates or updates a facility and its share pies
func (r *GormFacilityRepository) Save(ctx context.Context, facility *lending.Facility) error {
	model := models.FacilityModelFromDomain(facility)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The caller passes the version
// it loaded; a mismatch means someone else got there first.
func (r *GormFacilityRepository) SaveWithLock(ctx context.Context, facility *lending.Facility, expectedVersion int) error {
	model := models.FacilityModelFromDomain(facility)
	result := r.db.WithContext(ctx).
		Model(&models.FacilityModel{}).
		Where("id = ? AND version = ?", facility.ID, expectedVersion).
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

// Delete removes a facility
func (r *GormFacilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.FacilityModel{}, "id = ?", id).Error
}

// Ensure GormFacilityRepository implements the interface
var _ lending.FacilityRepository = (*GormFacilityRepository)(nil)

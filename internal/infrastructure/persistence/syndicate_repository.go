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

// GormSyndicateRepository implements SyndicateRepository using GORM
type GormSyndicateRepository struct {
	db *gorm.DB
}

// NewGormSyndicateRepository creates a new GormSyndicateRepository
func NewGormSyndicateRepository(db *gorm.DB) *GormSyndicateRepository {
	return &GormSyndicateRepository{db: db}
}

// FindByID finds a syndicate by ID
func (r *GormSyndicateRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Syndicate, error) {
	var model models.SyndicateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a syndicate by its unique name
func (r *GormSyndicateRepository) FindByName(ctx context.Context, name string) (*lending.Syndicate, error) {
	var model models.SyndicateModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds syndicates with filtering
func (r *GormSyndicateRepository) FindAll(ctx context.Context, filter lending.SyndicateFilter) ([]lending.Syndicate, error) {
	var syndicateModels []models.SyndicateModel
	query := applySyndicateFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("created_at DESC")

	if err := query.Find(&syndicateModels).Error; err != nil {
		return nil, err
	}
	syndicates := make([]lending.Syndicate, len(syndicateModels))
	for i, model := range syndicateModels {
		syndicates[i] = *model.ToDomain()
	}
	return syndicates, nil
}

// Count counts syndicates matching the filter
func (r *GormSyndicateRepository) Count(ctx context.Context, filter lending.SyndicateFilter) (int64, error) {
	var count int64
	query := applySyndicateFilter(r.db.WithContext(ctx), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applySyndicateFilter(query *gorm.DB, filter lending.SyndicateFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.LeadBankID != nil {
		query = query.Where("lead_bank_id = ?", *filter.LeadBankID)
	}
	if filter.BorrowerID != nil {
		query = query.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query.Model(&models.SyndicateModel{})
}

// Save creates or updates a syndicate
func (r *GormSyndicateRepository) Save(ctx context.Context, syndicate *lending.Syndicate) error {
	model := models.SyndicateModelFromDomain(syndicate)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSyndicateRepository) SaveWithLock(ctx context.Context, syndicate *lending.Syndicate, expectedVersion int) error {
	model := models.SyndicateModelFromDomain(syndicate)
	result := r.db.WithContext(ctx).
		Model(&models.SyndicateModel{}).
		Where("id = ? AND version = ?", syndicate.ID, expectedVersion).
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

// Delete removes a syndicate
func (r *GormSyndicateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SyndicateModel{}, "id = ?", id).Error
}

// Ensure GormSyndicateRepository implements the interface
var _ lending.SyndicateRepository = (*GormSyndicateRepository)(nil)

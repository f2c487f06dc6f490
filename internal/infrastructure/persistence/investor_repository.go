package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvestorRepository implements InvestorRepository using GORM
type GormInvestorRepository struct {
	db *gorm.DB
}

// NewGormInvestorRepository creates a new GormInvestorRepository
func NewGormInvestorRepository(db *gorm.DB) *GormInvestorRepository {
	return &GormInvestorRepository{db: db}
}

// FindByID finds an investor by ID
func (r *GormInvestorRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Investor, error) {
	var model models.InvestorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds all investors in the given ID set
func (r *GormInvestorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]party.Investor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var investorModels []models.InvestorModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&investorModels).Error; err != nil {
		return nil, err
	}
	investors := make([]party.Investor, len(investorModels))
	for i, model := range investorModels {
		investors[i] = *model.ToDomain()
	}
	return investors, nil
}

// FindByCompanyCode finds an investor by its unique company code
func (r *GormInvestorRepository) FindByCompanyCode(ctx context.Context, code string) (*party.Investor, error) {
	var model models.InvestorModel
	if err := r.db.WithContext(ctx).First(&model, "company_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds investors with filtering
func (r *GormInvestorRepository) FindAll(ctx context.Context, filter party.InvestorFilter) ([]party.Investor, error) {
	var investorModels []models.InvestorModel
	query := applyInvestorFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("name ASC")

	if err := query.Find(&investorModels).Error; err != nil {
		return nil, err
	}
	investors := make([]party.Investor, len(investorModels))
	for i, model := range investorModels {
		investors[i] = *model.ToDomain()
	}
	return investors, nil
}

// Count counts investors matching the filter
func (r *GormInvestorRepository) Count(ctx context.Context, filter party.InvestorFilter) (int64, error) {
	var count int64
	query := applyInvestorFilter(r.db.WithContext(ctx), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyInvestorFilter(query *gorm.DB, filter party.InvestorFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	return query.Model(&models.InvestorModel{})
}

// Save creates or updates an investor
func (r *GormInvestorRepository) Save(ctx context.Context, investor *party.Investor) error {
	model := models.InvestorModelFromDomain(investor)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvestorRepository) SaveWithLock(ctx context.Context, investor *party.Investor, expectedVersion int) error {
	model := models.InvestorModelFromDomain(investor)
	result := r.db.WithContext(ctx).
		Model(&models.InvestorModel{}).
		Where("id = ? AND version = ?", investor.ID, expectedVersion).
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

// Ensure GormInvestorRepository implements the interface
var _ party.InvestorRepository = (*GormInvestorRepository)(nil)

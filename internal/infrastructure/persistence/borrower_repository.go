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

// GormBorrowerRepository implements BorrowerRepository using GORM
type GormBorrowerRepository struct {
	db *gorm.DB
}

// NewGormBorrowerRepository creates a new GormBorrowerRepository
func NewGormBorrowerRepository(db *gorm.DB) *GormBorrowerRepository {
	return &GormBorrowerRepository{db: db}
}

// FindByID finds a borrower by ID
func (r *GormBorrowerRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Borrower, error) {
	var model models.BorrowerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCompanyCode finds a borrower by its unique company code
func (r *GormBorrowerRepository) FindByCompanyCode(ctx context.Context, code string) (*party.Borrower, error) {
	var model models.BorrowerModel
	if err := r.db.WithContext(ctx).First(&model, "company_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds borrowers with filtering
func (r *GormBorrowerRepository) FindAll(ctx context.Context, filter party.BorrowerFilter) ([]party.Borrower, error) {
	var borrowerModels []models.BorrowerModel
	query := applyBorrowerFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("name ASC")

	if err := query.Find(&borrowerModels).Error; err != nil {
		return nil, err
	}
	borrowers := make([]party.Borrower, len(borrowerModels))
	for i, model := range borrowerModels {
		borrowers[i] = *model.ToDomain()
	}
	return borrowers, nil
}

// Count counts borrowers matching the filter
func (r *GormBorrowerRepository) Count(ctx context.Context, filter party.BorrowerFilter) (int64, error) {
	var count int64
	query := applyBorrowerFilter(r.db.WithContext(ctx), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyBorrowerFilter(query *gorm.DB, filter party.BorrowerFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreditRating != nil {
		query = query.Where("credit_rating = ?", *filter.CreditRating)
	}
	if filter.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	return query.Model(&models.BorrowerModel{})
}

// Save creates or updates a borrower
func (r *GormBorrowerRepository) Save(ctx context.Context, borrower *party.Borrower) error {
	model := models.BorrowerModelFromDomain(borrower)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBorrowerRepository) SaveWithLock(ctx context.Context, borrower *party.Borrower, expectedVersion int) error {
	model := models.BorrowerModelFromDomain(borrower)
	result := r.db.WithContext(ctx).
		Model(&models.BorrowerModel{}).
		Where("id = ? AND version = ?", borrower.ID, expectedVersion).
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

// Ensure GormBorrowerRepository implements the interface
var _ party.BorrowerRepository = (*GormBorrowerRepository)(nil)

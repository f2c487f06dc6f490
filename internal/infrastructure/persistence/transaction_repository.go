package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a ledger entry by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds ledger entries with filtering
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter lending.TransactionFilter) ([]lending.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := applyTransactionFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("occurred_at DESC")

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	transactions := make([]lending.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, nil
}

// Count counts ledger entries matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter lending.TransactionFilter) (int64, error) {
	var count int64
	query := applyTransactionFilter(r.db.WithContext(ctx), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyTransactionFilter(query *gorm.DB, filter lending.TransactionFilter) *gorm.DB {
	if filter.FacilityID != nil {
		query = query.Where("facility_id = ?", *filter.FacilityID)
	}
	if filter.LoanID != nil {
		query = query.Where("loan_id = ?", *filter.LoanID)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("occurred_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("occurred_at <= ?", *filter.ToDate)
	}
	return query.Model(&models.TransactionModel{})
}

// Save appends a ledger entry
func (r *GormTransactionRepository) Save(ctx context.Context, tx *lending.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteByLoan removes ledger entries referencing a loan
func (r *GormTransactionRepository) DeleteByLoan(ctx context.Context, loanID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Delete(&models.TransactionModel{}).Error
}

// Ensure GormTransactionRepository implements the interface
var _ lending.TransactionRepository = (*GormTransactionRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoanRepository implements LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

func preloadSchedule(db *gorm.DB) *gorm.DB {
	return db.Preload("Schedule", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_number ASC")
	})
}

// FindByID finds a loan by ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := preloadSchedule(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDrawdown finds the loan created by a drawdown
func (r *GormLoanRepository) FindByDrawdown(ctx context.Context, drawdownID uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := preloadSchedule(r.db.WithContext(ctx)).First(&model, "drawdown_id = ?", drawdownID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentDetail finds the loan owning a schedule entry
func (r *GormLoanRepository) FindByPaymentDetail(ctx context.Context, paymentDetailID uuid.UUID) (*lending.Loan, error) {
	sub := r.db.Model(&models.PaymentDetailModel{}).
		Select("loan_id").
		Where("id = ?", paymentDetailID)

	var model models.LoanModel
	if err := preloadSchedule(r.db.WithContext(ctx)).First(&model, "id = (?)", sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByFacility finds all loans under a facility
func (r *GormLoanRepository) FindByFacility(ctx context.Context, facilityID uuid.UUID) ([]lending.Loan, error) {
	var loanModels []models.LoanModel
	if err := preloadSchedule(r.db.WithContext(ctx)).
		Where("facility_id = ?", facilityID).
		Order("created_at ASC").
		Find(&loanModels).Error; err != nil {
		return nil, err
	}
	loans := make([]lending.Loan, len(loanModels))
	for i, model := range loanModels {
		loans[i] = *model.ToDomain()
	}
	return loans, nil
}

// FindAll finds loans with filtering
func (r *GormLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	var loanModels []models.LoanModel
	query := applyLoanFilter(r.db.WithContext(ctx), filter)
	query = preloadSchedule(query).Limit(filter.Limit()).Offset(filter.Offset()).Order("created_at DESC")

	if err := query.Find(&loanModels).Error; err != nil {
		return nil, err
	}
	loans := make([]lending.Loan, len(loanModels))
	for i, model := range loanModels {
		loans[i] = *model.ToDomain()
	}
	return loans, nil
}

// CountOutstandingByFacility counts a facility's loans not yet completed
func (r *GormLoanRepository) CountOutstandingByFacility(ctx context.Context, facilityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LoanModel{}).
		Where("facility_id = ? AND status <> ?", facilityID, lending.LoanStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDue finds active loans whose next unpaid installment is past due
func (r *GormLoanRepository) FindDue(ctx context.Context, asOf time.Time) ([]lending.Loan, error) {
	sub := r.db.Model(&models.PaymentDetailModel{}).
		Select("loan_id").
		Where("paid = ? AND due_date < ?", false, asOf)

	var loanModels []models.LoanModel
	if err := preloadSchedule(r.db.WithContext(ctx)).
		Where("status = ? AND id IN (?)", lending.LoanStatusActive, sub).
		Find(&loanModels).Error; err != nil {
		return nil, err
	}
	loans := make([]lending.Loan, len(loanModels))
	for i, model := range loanModels {
		loans[i] = *model.ToDomain()
	}
	return loans, nil
}

func applyLoanFilter(query *gorm.DB, filter lending.LoanFilter) *gorm.DB {
	if filter.FacilityID != nil {
		query = query.Where("facility_id = ?", *filter.FacilityID)
	}
	if filter.BorrowerID != nil {
		query = query.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query.Model(&models.LoanModel{})
}

// Save creates or updates a loan and its schedule
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(model).Error
}

// SaveWithLock saves with optimistic locking. The loan row carries the
// version; schedule rows are upserted once the lock holds.
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan, expectedVersion int) error {
	model := models.LoanModelFromDomain(loan)
	result := r.db.WithContext(ctx).
		Model(&models.LoanModel{}).
		Where("id = ? AND version = ?", loan.ID, expectedVersion).
		Select("*").
		Omit("Schedule").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	if len(model.Schedule) > 0 {
		if err := r.db.WithContext(ctx).Save(&model.Schedule).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a loan and its schedule
func (r *GormLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", id).
		Delete(&models.PaymentDetailModel{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.LoanModel{}, "id = ?", id).Error
}

// Ensure GormLoanRepository implements the interface
var _ lending.LoanRepository = (*GormLoanRepository)(nil)

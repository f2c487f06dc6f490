package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLoan finds all payments recorded against a loan
func (r *GormPaymentRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]lending.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]lending.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// FindAll finds payments with filtering
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter lending.PaymentFilter) ([]lending.Payment, error) {
	var paymentModels []models.PaymentModel
	query := applyPaymentFilter(r.db.WithContext(ctx), filter)
	query = query.Limit(filter.Limit()).Offset(filter.Offset()).Order("payment_date DESC")

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]lending.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// CountByLoan counts payments recorded against a loan
func (r *GormPaymentRepository) CountByLoan(ctx context.Context, loanID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("loan_id = ?", loanID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyPaymentFilter(query *gorm.DB, filter lending.PaymentFilter) *gorm.DB {
	if filter.LoanID != nil {
		query = query.Where("loan_id = ?", *filter.LoanID)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	return query.Model(&models.PaymentModel{})
}

// Save persists a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *lending.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormPaymentRepository implements the interface
var _ lending.PaymentRepository = (*GormPaymentRepository)(nil)

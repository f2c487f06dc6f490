package persistence

import (
	"context"

	"github.com/loanbook/backend/internal/domain/uow"
	"gorm.io/gorm"
)

// GormUnitOfWork implements uow.UnitOfWork on a GORM transaction. Each
// WithinTx call binds a fresh set of repositories to one *gorm.DB tx, so
// every write inside fn commits or rolls back together.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx runs fn inside a single database transaction
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(uow.Repos{
			Facilities:   NewGormFacilityRepository(tx),
			Syndicates:   NewGormSyndicateRepository(tx),
			Drawdowns:    NewGormDrawdownRepository(tx),
			Loans:        NewGormLoanRepository(tx),
			Payments:     NewGormPaymentRepository(tx),
			Transactions: NewGormTransactionRepository(tx),
			Borrowers:    NewGormBorrowerRepository(tx),
			Investors:    NewGormInvestorRepository(tx),
		})
	})
}

// Ensure GormUnitOfWork implements the interface
var _ uow.UnitOfWork = (*GormUnitOfWork)(nil)

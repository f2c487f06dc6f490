package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
)

// FacilityFilter defines filtering options for facility queries
type FacilityFilter struct {
	shared.Filter
	SyndicateID *uuid.UUID      // Filter by syndicate
	Status      *FacilityStatus // Filter by status
	Currency    *string         // Filter by settlement currency
}

// FacilityRepository defines the interface for facility persistence
type FacilityRepository interface {
	// FindByID finds a facility by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Facility, error)

	// FindBySyndicate finds all facilities of a syndicate
	FindBySyndicate(ctx context.Context, syndicateID uuid.UUID) ([]Facility, error)

	// FindAll finds facilities with filtering
	FindAll(ctx context.Context, filter FacilityFilter) ([]Facility, error)

	// Count counts facilities matching the filter
	Count(ctx context.Context, filter FacilityFilter) (int64, error)

	// Save creates or updates a facility and its share pies
	Save(ctx context.Context, facility *Facility) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, facility *Facility, expectedVersion int) error

	// Delete removes a facility
	Delete(ctx context.Context, id uuid.UUID) error
}

// SyndicateFilter defines filtering options for syndicate queries
type SyndicateFilter struct {
	shared.Filter
	Status     *SyndicateStatus // Filter by status
	LeadBankID *uuid.UUID       // Filter by lead bank
	BorrowerID *uuid.UUID       // Filter by borrower
	Name       *string          // Filter by exact name
}

// SyndicateRepository defines the interface for syndicate persistence
type SyndicateRepository interface {
	// FindByID finds a syndicate by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Syndicate, error)

	// FindByName finds a syndicate by its unique name
	FindByName(ctx context.Context, name string) (*Syndicate, error)

	// FindAll finds syndicates with filtering
	FindAll(ctx context.Context, filter SyndicateFilter) ([]Syndicate, error)

	// Count counts syndicates matching the filter
	Count(ctx context.Context, filter SyndicateFilter) (int64, error)

	// Save creates or updates a syndicate
	Save(ctx context.Context, syndicate *Syndicate) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, syndicate *Syndicate, expectedVersion int) error

	// Delete removes a syndicate
	Delete(ctx context.Context, id uuid.UUID) error
}

// DrawdownFilter defines filtering options for drawdown queries
type DrawdownFilter struct {
	shared.Filter
	FacilityID *uuid.UUID      // Filter by facility
	BorrowerID *uuid.UUID      // Filter by borrower
	Status     *DrawdownStatus // Filter by status
	FromDate   *time.Time      // Filter by drawdown date range start
	ToDate     *time.Time      // Filter by drawdown date range end
}

// DrawdownRepository defines the interface for drawdown persistence
type DrawdownRepository interface {
	// FindByID finds a drawdown by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Drawdown, error)

	// FindByFacility finds all drawdowns against a facility
	FindByFacility(ctx context.Context, facilityID uuid.UUID) ([]Drawdown, error)

	// FindAll finds drawdowns with filtering
	FindAll(ctx context.Context, filter DrawdownFilter) ([]Drawdown, error)

	// CountByFacility counts drawdowns against a facility, optionally by status
	CountByFacility(ctx context.Context, facilityID uuid.UUID, status *DrawdownStatus) (int64, error)

	// Save creates or updates a drawdown and its allocations
	Save(ctx context.Context, drawdown *Drawdown) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, drawdown *Drawdown, expectedVersion int) error

	// Delete removes a drawdown
	Delete(ctx context.Context, id uuid.UUID) error
}

// LoanFilter defines filtering options for loan queries
type LoanFilter struct {
	shared.Filter
	FacilityID *uuid.UUID  // Filter by facility
	BorrowerID *uuid.UUID  // Filter by borrower
	Status     *LoanStatus // Filter by status
}

// LoanRepository defines the interface for loan persistence
type LoanRepository interface {
	// FindByID finds a loan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// FindByDrawdown finds the loan created by a drawdown
	FindByDrawdown(ctx context.Context, drawdownID uuid.UUID) (*Loan, error)

	// FindByPaymentDetail finds the loan owning a schedule entry
	FindByPaymentDetail(ctx context.Context, paymentDetailID uuid.UUID) (*Loan, error)

	// FindByFacility finds all loans under a facility
	FindByFacility(ctx context.Context, facilityID uuid.UUID) ([]Loan, error)

	// FindAll finds loans with filtering
	FindAll(ctx context.Context, filter LoanFilter) ([]Loan, error)

	// CountOutstandingByFacility counts a facility's loans not yet completed
	CountOutstandingByFacility(ctx context.Context, facilityID uuid.UUID) (int64, error)

	// FindDue finds active loans whose next unpaid installment is past due
	FindDue(ctx context.Context, asOf time.Time) ([]Loan, error)

	// Save creates or updates a loan and its schedule
	Save(ctx context.Context, loan *Loan) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, loan *Loan, expectedVersion int) error

	// Delete removes a loan and its schedule
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	LoanID   *uuid.UUID // Filter by loan
	FromDate *time.Time // Filter by payment date range start
	ToDate   *time.Time // Filter by payment date range end
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByLoan finds all payments recorded against a loan
	FindByLoan(ctx context.Context, loanID uuid.UUID) ([]Payment, error)

	// FindAll finds payments with filtering
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// CountByLoan counts payments recorded against a loan
	CountByLoan(ctx context.Context, loanID uuid.UUID) (int64, error)

	// Save persists a payment record
	Save(ctx context.Context, payment *Payment) error
}

// TransactionFilter defines filtering options for ledger queries
type TransactionFilter struct {
	shared.Filter
	FacilityID *uuid.UUID       // Filter by facility
	LoanID     *uuid.UUID       // Filter by loan
	PartyID    *uuid.UUID       // Filter by party
	Type       *TransactionType // Filter by entry type
	FromDate   *time.Time       // Filter by occurrence range start
	ToDate     *time.Time       // Filter by occurrence range end
}

// TransactionRepository defines the interface for ledger persistence
type TransactionRepository interface {
	// FindByID finds a ledger entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindAll finds ledger entries with filtering
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, error)

	// Count counts ledger entries matching the filter
	Count(ctx context.Context, filter TransactionFilter) (int64, error)

	// Save appends a ledger entry
	Save(ctx context.Context, tx *Transaction) error

	// DeleteByLoan removes ledger entries referencing a loan
	DeleteByLoan(ctx context.Context, loanID uuid.UUID) error
}

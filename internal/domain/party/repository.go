package party

import (
	"context"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
)

// BorrowerFilter defines filtering options for borrower queries
type BorrowerFilter struct {
	shared.Filter
	Status       *PartyStatus  // Filter by status
	CreditRating *CreditRating // Filter by rating
	Name         *string       // Filter by name substring
}

// BorrowerRepository defines the interface for borrower persistence
type BorrowerRepository interface {
	// FindByID finds a borrower by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Borrower, error)

	// FindByCompanyCode finds a borrower by its unique company code
	FindByCompanyCode(ctx context.Context, code string) (*Borrower, error)

	// FindAll finds borrowers with filtering
	FindAll(ctx context.Context, filter BorrowerFilter) ([]Borrower, error)

	// Count counts borrowers matching the filter
	Count(ctx context.Context, filter BorrowerFilter) (int64, error)

	// Save creates or updates a borrower
	Save(ctx context.Context, borrower *Borrower) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, borrower *Borrower, expectedVersion int) error
}

// InvestorFilter defines filtering options for investor queries
type InvestorFilter struct {
	shared.Filter
	Status *PartyStatus  // Filter by status
	Type   *InvestorType // Filter by investor type
	Name   *string       // Filter by name substring
}

// InvestorRepository defines the interface for investor persistence
type InvestorRepository interface {
	// FindByID finds an investor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Investor, error)

	// FindByIDs finds all investors in the given ID set
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Investor, error)

	// FindByCompanyCode finds an investor by its unique company code
	FindByCompanyCode(ctx context.Context, code string) (*Investor, error)

	// FindAll finds investors with filtering
	FindAll(ctx context.Context, filter InvestorFilter) ([]Investor, error)

	// Count counts investors matching the filter
	Count(ctx context.Context, filter InvestorFilter) (int64, error)

	// Save creates or updates an investor
	Save(ctx context.Context, investor *Investor) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, investor *Investor, expectedVersion int) error
}

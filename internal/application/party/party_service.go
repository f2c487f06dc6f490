package party

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PartyService manages borrower and investor registration and maintenance.
// Identity fields freeze once a party is restricted by facility
// participation; only the lifecycle transitions keep working after that.
type PartyService struct {
	borrowerRepo   party.BorrowerRepository
	investorRepo   party.InvestorRepository
	eventPublisher shared.EventPublisher
}

// NewPartyService creates a new PartyService. The event publisher is
// optional; pass nil to disable domain event publishing.
func NewPartyService(borrowerRepo party.BorrowerRepository, investorRepo party.InvestorRepository,
	eventPublisher shared.EventPublisher) *PartyService {
	return &PartyService{
		borrowerRepo:   borrowerRepo,
		investorRepo:   investorRepo,
		eventPublisher: eventPublisher,
	}
}

// BorrowerRequest carries the inputs for registering or updating a borrower
type BorrowerRequest struct {
	Name         string
	CompanyCode  string
	CreditRating string
	CreditLimit  decimal.Decimal
	Currency     string
}

// RegisterBorrower registers a new borrower with a unique company code
func (s *PartyService) RegisterBorrower(ctx context.Context, req BorrowerRequest) (*party.Borrower, error) {
	creditLimit, err := valueobject.NewMoney(req.CreditLimit, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	borrower, err := party.NewBorrower(req.Name, req.CompanyCode,
		party.CreditRating(req.CreditRating), creditLimit)
	if err != nil {
		return nil, err
	}

	existing, err := s.borrowerRepo.FindByCompanyCode(ctx, borrower.CompanyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check company code: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("borrower with company code %s already exists", borrower.CompanyCode))
	}

	if err := s.borrowerRepo.Save(ctx, borrower); err != nil {
		return nil, fmt.Errorf("failed to save borrower: %w", err)
	}
	publishDomainEvents(ctx, s.eventPublisher, borrower)
	return borrower, nil
}

// UpdateBorrower updates a borrower's mutable fields. The company code is
// permanent and restricted borrowers reject identity changes.
func (s *PartyService) UpdateBorrower(ctx context.Context, id uuid.UUID, req BorrowerRequest, expectedVersion int) (*party.Borrower, error) {
	creditLimit, err := valueobject.NewMoney(req.CreditLimit, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	borrower, err := s.borrowerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrower: %w", err)
	}
	if borrower == nil {
		return nil, shared.ErrNotFound
	}
	if err := borrower.CheckVersion(expectedVersion); err != nil {
		return nil, err
	}

	if err := borrower.Update(req.Name, party.CreditRating(req.CreditRating), creditLimit); err != nil {
		return nil, err
	}
	if err := s.borrowerRepo.SaveWithLock(ctx, borrower, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save borrower: %w", err)
	}
	return borrower, nil
}

// GetBorrower returns a borrower by ID
func (s *PartyService) GetBorrower(ctx context.Context, id uuid.UUID) (*party.Borrower, error) {
	borrower, err := s.borrowerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrower: %w", err)
	}
	if borrower == nil {
		return nil, shared.ErrNotFound
	}
	return borrower, nil
}

// ListBorrowers returns borrowers matching the filter with a total count
func (s *PartyService) ListBorrowers(ctx context.Context, filter party.BorrowerFilter) (*shared.Paginated[party.Borrower], error) {
	borrowers, err := s.borrowerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowers: %w", err)
	}
	total, err := s.borrowerRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count borrowers: %w", err)
	}
	result := shared.NewPaginated(borrowers, total, filter.Page, filter.Limit())
	return &result, nil
}

// InvestorRequest carries the inputs for registering or updating an investor
type InvestorRequest struct {
	Name               string
	CompanyCode        string
	Type               string
	InvestmentCapacity decimal.Decimal
	Currency           string
}

// RegisterInvestor registers a new investor with a unique company code
func (s *PartyService) RegisterInvestor(ctx context.Context, req InvestorRequest) (*party.Investor, error) {
	capacity, err := valueobject.NewMoney(req.InvestmentCapacity, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	investor, err := party.NewInvestor(req.Name, req.CompanyCode,
		party.InvestorType(req.Type), capacity)
	if err != nil {
		return nil, err
	}

	existing, err := s.investorRepo.FindByCompanyCode(ctx, investor.CompanyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check company code: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("investor with company code %s already exists", investor.CompanyCode))
	}

	if err := s.investorRepo.Save(ctx, investor); err != nil {
		return nil, fmt.Errorf("failed to save investor: %w", err)
	}
	publishDomainEvents(ctx, s.eventPublisher, investor)
	return investor, nil
}

// UpdateInvestor updates an investor's mutable fields
func (s *PartyService) UpdateInvestor(ctx context.Context, id uuid.UUID, req InvestorRequest, expectedVersion int) (*party.Investor, error) {
	capacity, err := valueobject.NewMoney(req.InvestmentCapacity, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	investor, err := s.investorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load investor: %w", err)
	}
	if investor == nil {
		return nil, shared.ErrNotFound
	}
	if err := investor.CheckVersion(expectedVersion); err != nil {
		return nil, err
	}

	if err := investor.Update(req.Name, party.InvestorType(req.Type), capacity); err != nil {
		return nil, err
	}
	if err := s.investorRepo.SaveWithLock(ctx, investor, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save investor: %w", err)
	}
	return investor, nil
}

// GetInvestor returns an investor by ID
func (s *PartyService) GetInvestor(ctx context.Context, id uuid.UUID) (*party.Investor, error) {
	investor, err := s.investorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load investor: %w", err)
	}
	if investor == nil {
		return nil, shared.ErrNotFound
	}
	return investor, nil
}

// ListInvestors returns investors matching the filter with a total count
func (s *PartyService) ListInvestors(ctx context.Context, filter party.InvestorFilter) (*shared.Paginated[party.Investor], error) {
	investors, err := s.investorRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	total, err := s.investorRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count investors: %w", err)
	}
	result := shared.NewPaginated(investors, total, filter.Page, filter.Limit())
	return &result, nil
}

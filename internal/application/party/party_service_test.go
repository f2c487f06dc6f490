package party

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockBorrowerRepository is a mock implementation of party.BorrowerRepository
type MockBorrowerRepository struct {
	mock.Mock
}

func (m *MockBorrowerRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Borrower, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Borrower), args.Error(1)
}

func (m *MockBorrowerRepository) FindByCompanyCode(ctx context.Context, code string) (*party.Borrower, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Borrower), args.Error(1)
}

func (m *MockBorrowerRepository) FindAll(ctx context.Context, filter party.BorrowerFilter) ([]party.Borrower, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]party.Borrower), args.Error(1)
}

func (m *MockBorrowerRepository) Count(ctx context.Context, filter party.BorrowerFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBorrowerRepository) Save(ctx context.Context, borrower *party.Borrower) error {
	args := m.Called(ctx, borrower)
	return args.Error(0)
}

func (m *MockBorrowerRepository) SaveWithLock(ctx context.Context, borrower *party.Borrower, expectedVersion int) error {
	args := m.Called(ctx, borrower, expectedVersion)
	return args.Error(0)
}

// MockInvestorRepository is a mock implementation of party.InvestorRepository
type MockInvestorRepository struct {
	mock.Mock
}

func (m *MockInvestorRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Investor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Investor), args.Error(1)
}

func (m *MockInvestorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]party.Investor, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]party.Investor), args.Error(1)
}

func (m *MockInvestorRepository) FindByCompanyCode(ctx context.Context, code string) (*party.Investor, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Investor), args.Error(1)
}

func (m *MockInvestorRepository) FindAll(ctx context.Context, filter party.InvestorFilter) ([]party.Investor, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]party.Investor), args.Error(1)
}

func (m *MockInvestorRepository) Count(ctx context.Context, filter party.InvestorFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvestorRepository) Save(ctx context.Context, investor *party.Investor) error {
	args := m.Called(ctx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) SaveWithLock(ctx context.Context, investor *party.Investor, expectedVersion int) error {
	args := m.Called(ctx, investor, expectedVersion)
	return args.Error(0)
}

// =============================================================================
// Borrower Tests
// =============================================================================

func TestPartyService_RegisterBorrower_Success(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	borrowerRepo.On("FindByCompanyCode", ctx, "MGR-001").Return(nil, nil)
	borrowerRepo.On("Save", ctx, mock.AnythingOfType("*party.Borrower")).Return(nil)

	borrower, err := service.RegisterBorrower(ctx, BorrowerRequest{
		Name:         "Meguru Logistics",
		CompanyCode:  "mgr-001",
		CreditRating: "BBB",
		CreditLimit:  decimal.NewFromInt(50_000_000),
		Currency:     "JPY",
	})
	require.NoError(t, err)

	assert.Equal(t, "MGR-001", borrower.CompanyCode)
	assert.Equal(t, party.PartyStatusActive, borrower.Status)
	borrowerRepo.AssertExpectations(t)
}

func TestPartyService_RegisterBorrower_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	existing, err := party.NewBorrower("Meguru Logistics", "MGR-001",
		party.CreditRatingBBB, valueobject.NewMoneyJPYFromInt(50_000_000))
	require.NoError(t, err)
	borrowerRepo.On("FindByCompanyCode", ctx, "MGR-001").Return(existing, nil)

	_, err = service.RegisterBorrower(ctx, BorrowerRequest{
		Name:         "Another Meguru",
		CompanyCode:  "MGR-001",
		CreditRating: "A",
		CreditLimit:  decimal.NewFromInt(1_000_000),
		Currency:     "JPY",
	})

	assert.Equal(t, shared.CodeAlreadyExists, shared.CodeOf(err))
	borrowerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPartyService_RegisterBorrower_InvalidRating(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	_, err := service.RegisterBorrower(ctx, BorrowerRequest{
		Name:         "Meguru Logistics",
		CompanyCode:  "MGR-001",
		CreditRating: "ZZZ",
		CreditLimit:  decimal.NewFromInt(1_000_000),
		Currency:     "JPY",
	})

	assert.True(t, shared.IsValidationError(err))
}

func TestPartyService_UpdateBorrower_Success(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	borrower, err := party.NewBorrower("Meguru Logistics", "MGR-001",
		party.CreditRatingBBB, valueobject.NewMoneyJPYFromInt(50_000_000))
	require.NoError(t, err)

	borrowerRepo.On("FindByID", ctx, borrower.ID).Return(borrower, nil)
	borrowerRepo.On("SaveWithLock", ctx, borrower, borrower.Version).Return(nil)

	updated, err := service.UpdateBorrower(ctx, borrower.ID, BorrowerRequest{
		Name:         "Meguru Logistics KK",
		CreditRating: "A",
		CreditLimit:  decimal.NewFromInt(80_000_000),
		Currency:     "JPY",
	}, borrower.Version)
	require.NoError(t, err)

	assert.Equal(t, "Meguru Logistics KK", updated.Name)
	assert.Equal(t, party.CreditRatingA, updated.CreditRating)
}

func TestPartyService_UpdateBorrower_RestrictedRejectsChanges(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	borrower, err := party.NewBorrower("Meguru Logistics", "MGR-001",
		party.CreditRatingBBB, valueobject.NewMoneyJPYFromInt(50_000_000))
	require.NoError(t, err)
	require.NoError(t, borrower.Restrict())

	borrowerRepo.On("FindByID", ctx, borrower.ID).Return(borrower, nil)

	_, err = service.UpdateBorrower(ctx, borrower.ID, BorrowerRequest{
		Name:         "Renamed",
		CreditRating: "A",
		CreditLimit:  decimal.NewFromInt(1),
		Currency:     "JPY",
	}, borrower.Version)

	assert.Equal(t, shared.CodeImmutableField, shared.CodeOf(err))
	borrowerRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPartyService_UpdateBorrower_VersionConflict(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	borrower, err := party.NewBorrower("Meguru Logistics", "MGR-001",
		party.CreditRatingBBB, valueobject.NewMoneyJPYFromInt(50_000_000))
	require.NoError(t, err)

	borrowerRepo.On("FindByID", ctx, borrower.ID).Return(borrower, nil)

	_, err = service.UpdateBorrower(ctx, borrower.ID, BorrowerRequest{
		Name:         "Renamed",
		CreditRating: "A",
		CreditLimit:  decimal.NewFromInt(1),
		Currency:     "JPY",
	}, borrower.Version+5)

	assert.True(t, shared.IsOptimisticLockConflict(err))
}

// =============================================================================
// Investor Tests
// =============================================================================

func TestPartyService_RegisterInvestor_Success(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	investorRepo.On("FindByCompanyCode", ctx, "MZH-001").Return(nil, nil)
	investorRepo.On("Save", ctx, mock.AnythingOfType("*party.Investor")).Return(nil)

	investor, err := service.RegisterInvestor(ctx, InvestorRequest{
		Name:               "Mizuho",
		CompanyCode:        "mzh-001",
		Type:               "LEAD_BANK",
		InvestmentCapacity: decimal.NewFromInt(10_000_000),
		Currency:           "JPY",
	})
	require.NoError(t, err)

	assert.Equal(t, "MZH-001", investor.CompanyCode)
	assert.True(t, investor.IsQualifiedLeadBank())
	assert.True(t, investor.CurrentInvestmentAmount.IsZero())
	investorRepo.AssertExpectations(t)
}

func TestPartyService_RegisterInvestor_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	existing, err := party.NewInvestor("Mizuho", "MZH-001",
		party.InvestorTypeLeadBank, valueobject.NewMoneyJPYFromInt(10_000_000))
	require.NoError(t, err)
	investorRepo.On("FindByCompanyCode", ctx, "MZH-001").Return(existing, nil)

	_, err = service.RegisterInvestor(ctx, InvestorRequest{
		Name:               "Another Mizuho",
		CompanyCode:        "MZH-001",
		Type:               "BANK",
		InvestmentCapacity: decimal.NewFromInt(1_000_000),
		Currency:           "JPY",
	})

	assert.Equal(t, shared.CodeAlreadyExists, shared.CodeOf(err))
	investorRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPartyService_UpdateInvestor_RestrictedRejectsChanges(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	investor, err := party.NewInvestor("Mizuho", "MZH-001",
		party.InvestorTypeLeadBank, valueobject.NewMoneyJPYFromInt(10_000_000))
	require.NoError(t, err)
	require.NoError(t, investor.Restrict())

	investorRepo.On("FindByID", ctx, investor.ID).Return(investor, nil)

	_, err = service.UpdateInvestor(ctx, investor.ID, InvestorRequest{
		Name:               "Renamed",
		Type:               "BANK",
		InvestmentCapacity: decimal.NewFromInt(1),
		Currency:           "JPY",
	}, investor.Version)

	assert.Equal(t, shared.CodeImmutableField, shared.CodeOf(err))
	investorRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPartyService_ListInvestors(t *testing.T) {
	ctx := context.Background()
	borrowerRepo := new(MockBorrowerRepository)
	investorRepo := new(MockInvestorRepository)
	service := NewPartyService(borrowerRepo, investorRepo, nil)

	investor, err := party.NewInvestor("Mizuho", "MZH-001",
		party.InvestorTypeLeadBank, valueobject.NewMoneyJPYFromInt(10_000_000))
	require.NoError(t, err)

	filter := party.InvestorFilter{}
	investorRepo.On("FindAll", ctx, filter).Return([]party.Investor{*investor}, nil)
	investorRepo.On("Count", ctx, filter).Return(int64(1), nil)

	page, err := service.ListInvestors(ctx, filter)
	require.NoError(t, err)

	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
}

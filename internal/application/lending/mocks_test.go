package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/loanbook/backend/internal/domain/uow"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockFacilityRepository is a mock implementation of lending.FacilityRepository
type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Facility), args.Error(1)
}

func (m *MockFacilityRepository) FindBySyndicate(ctx context.Context, syndicateID uuid.UUID) ([]lending.Facility, error) {
	args := m.Called(ctx, syndicateID)
	return args.Get(0).([]lending.Facility), args.Error(1)
}

func (m *MockFacilityRepository) FindAll(ctx context.Context, filter lending.FacilityFilter) ([]lending.Facility, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Facility), args.Error(1)
}

func (m *MockFacilityRepository) Count(ctx context.Context, filter lending.FacilityFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFacilityRepository) Save(ctx context.Context, facility *lending.Facility) error {
	args := m.Called(ctx, facility)
	return args.Error(0)
}

func (m *MockFacilityRepository) SaveWithLock(ctx context.Context, facility *lending.Facility, expectedVersion int) error {
	args := m.Called(ctx, facility, expectedVersion)
	return args.Error(0)
}

func (m *MockFacilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSyndicateRepository is a mock implementation of lending.SyndicateRepository
type MockSyndicateRepository struct {
	mock.Mock
}

func (m *MockSyndicateRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Syndicate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Syndicate), args.Error(1)
}

func (m *MockSyndicateRepository) FindByName(ctx context.Context, name string) (*lending.Syndicate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Syndicate), args.Error(1)
}

func (m *MockSyndicateRepository) FindAll(ctx context.Context, filter lending.SyndicateFilter) ([]lending.Syndicate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Syndicate), args.Error(1)
}

func (m *MockSyndicateRepository) Count(ctx context.Context, filter lending.SyndicateFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSyndicateRepository) Save(ctx context.Context, syndicate *lending.Syndicate) error {
	args := m.Called(ctx, syndicate)
	return args.Error(0)
}

func (m *MockSyndicateRepository) SaveWithLock(ctx context.Context, syndicate *lending.Syndicate, expectedVersion int) error {
	args := m.Called(ctx, syndicate, expectedVersion)
	return args.Error(0)
}

func (m *MockSyndicateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDrawdownRepository is a mock implementation of lending.DrawdownRepository
type MockDrawdownRepository struct {
	mock.Mock
}

func (m *MockDrawdownRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Drawdown, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Drawdown), args.Error(1)
}

func (m *MockDrawdownRepository) FindByFacility(ctx context.Context, facilityID uuid.UUID) ([]lending.Drawdown, error) {
	args := m.Called(ctx, facilityID)
	return args.Get(0).([]lending.Drawdown), args.Error(1)
}

func (m *MockDrawdownRepository) FindAll(ctx context.Context, filter lending.DrawdownFilter) ([]lending.Drawdown, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Drawdown), args.Error(1)
}

func (m *MockDrawdownRepository) CountByFacility(ctx context.Context, facilityID uuid.UUID, status *lending.DrawdownStatus) (int64, error) {
	args := m.Called(ctx, facilityID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDrawdownRepository) Save(ctx context.Context, drawdown *lending.Drawdown) error {
	args := m.Called(ctx, drawdown)
	return args.Error(0)
}

func (m *MockDrawdownRepository) SaveWithLock(ctx context.Context, drawdown *lending.Drawdown, expectedVersion int) error {
	args := m.Called(ctx, drawdown, expectedVersion)
	return args.Error(0)
}

func (m *MockDrawdownRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoanRepository is a mock implementation of lending.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByDrawdown(ctx context.Context, drawdownID uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, drawdownID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByPaymentDetail(ctx context.Context, paymentDetailID uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, paymentDetailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByFacility(ctx context.Context, facilityID uuid.UUID) ([]lending.Loan, error) {
	args := m.Called(ctx, facilityID)
	return args.Get(0).([]lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) CountOutstandingByFacility(ctx context.Context, facilityID uuid.UUID) (int64, error) {
	args := m.Called(ctx, facilityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) FindDue(ctx context.Context, asOf time.Time) ([]lending.Loan, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan, expectedVersion int) error {
	args := m.Called(ctx, loan, expectedVersion)
	return args.Error(0)
}

func (m *MockLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of lending.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByLoan(ctx context.Context, loanID uuid.UUID) ([]lending.Payment, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).([]lending.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter lending.PaymentFilter) ([]lending.Payment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByLoan(ctx context.Context, loanID uuid.UUID) (int64, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *lending.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of lending.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter lending.TransactionFilter) ([]lending.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]lending.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter lending.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *lending.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteByLoan(ctx context.Context, loanID uuid.UUID) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

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
// Fake Unit of Work
// =============================================================================

// testRepos bundles every mock into one place so tests can wire the same
// instances into both the service constructor and the fake unit of work
type testRepos struct {
	facilities   *MockFacilityRepository
	syndicates   *MockSyndicateRepository
	drawdowns    *MockDrawdownRepository
	loans        *MockLoanRepository
	payments     *MockPaymentRepository
	transactions *MockTransactionRepository
	borrowers    *MockBorrowerRepository
	investors    *MockInvestorRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		facilities:   new(MockFacilityRepository),
		syndicates:   new(MockSyndicateRepository),
		drawdowns:    new(MockDrawdownRepository),
		loans:        new(MockLoanRepository),
		payments:     new(MockPaymentRepository),
		transactions: new(MockTransactionRepository),
		borrowers:    new(MockBorrowerRepository),
		investors:    new(MockInvestorRepository),
	}
}

func (tr *testRepos) repos() uow.Repos {
	return uow.Repos{
		Facilities:   tr.facilities,
		Syndicates:   tr.syndicates,
		Drawdowns:    tr.drawdowns,
		Loans:        tr.loans,
		Payments:     tr.payments,
		Transactions: tr.transactions,
		Borrowers:    tr.borrowers,
		Investors:    tr.investors,
	}
}

// fakeUnitOfWork runs the transactional function against the mocks directly;
// there is no rollback, tests assert on the error instead
type fakeUnitOfWork struct {
	repos uow.Repos
}

func newFakeUnitOfWork(tr *testRepos) *fakeUnitOfWork {
	return &fakeUnitOfWork{repos: tr.repos()}
}

func (f *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return fn(f.repos)
}

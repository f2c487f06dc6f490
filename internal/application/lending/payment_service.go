package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/loanbook/backend/internal/domain/uow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records loan repayments. Every payment distributes its
// principal across the drawdown's investor allocations pro-rata, reduces
// the loan outstanding, and appends an immutable ledger entry; the final
// payment of a facility's last loan completes the facility.
type PaymentService struct {
	uow            uow.UnitOfWork
	paymentRepo    lending.PaymentRepository
	loanRepo       lending.LoanRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService. The event publisher is
// optional; pass nil to disable domain event publishing.
func NewPaymentService(
	unitOfWork uow.UnitOfWork,
	paymentRepo lending.PaymentRepository,
	loanRepo lending.LoanRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		uow:            unitOfWork,
		paymentRepo:    paymentRepo,
		loanRepo:       loanRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// PaymentRequest carries the inputs for an ad-hoc repayment
type PaymentRequest struct {
	LoanID      uuid.UUID
	PaymentDate time.Time
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Currency    string
}

// ProcessPayment records an ad-hoc repayment against a loan. The whole
// payment is accepted or rejected: an overdraw leaves the loan untouched.
func (s *PaymentService) ProcessPayment(ctx context.Context, req PaymentRequest) (*lending.Payment, error) {
	currency := valueobject.Currency(req.Currency)
	principal, err := valueobject.NewMoney(req.Principal, currency)
	if err != nil {
		return nil, err
	}
	interest, err := valueobject.NewMoney(req.Interest, currency)
	if err != nil {
		return nil, err
	}
	if principal.IsNegative() || interest.IsNegative() {
		return nil, shared.NewValidationError("payment amounts must not be negative")
	}

	var payment *lending.Payment
	var loan *lending.Loan
	err = s.uow.WithinTx(ctx, func(r uow.Repos) error {
		payment, loan, err = s.recordPayment(ctx, r, req.LoanID, nil, req.PaymentDate, principal, interest)
		return err
	})
	if err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, loan)

	s.logger.Info("payment recorded",
		zap.String("loan_id", req.LoanID.String()),
		zap.String("principal", principal.String()),
		zap.String("interest", interest.String()))
	return payment, nil
}

// ScheduledPaymentRequest settles one schedule entry
type ScheduledPaymentRequest struct {
	PaymentDetailID uuid.UUID
	PaymentDate     time.Time
}

// ProcessScheduledPayment settles an amortization schedule entry with its
// precomputed principal and interest, and marks the entry paid.
func (s *PaymentService) ProcessScheduledPayment(ctx context.Context, req ScheduledPaymentRequest) (*lending.Payment, error) {
	var payment *lending.Payment
	var settled *lending.Loan
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		loan, err := r.Loans.FindByPaymentDetail(ctx, req.PaymentDetailID)
		if err != nil {
			return fmt.Errorf("failed to load loan: %w", err)
		}
		if loan == nil {
			return shared.ErrNotFound
		}

		var detail *lending.PaymentDetail
		for i := range loan.Schedule {
			if loan.Schedule[i].ID == req.PaymentDetailID {
				detail = &loan.Schedule[i]
				break
			}
		}
		if detail == nil {
			return shared.ErrNotFound
		}
		if detail.Paid {
			return shared.NewBusinessRuleViolation(
				fmt.Sprintf("installment %d has already been settled", detail.PaymentNumber))
		}

		payment, err = s.recordScheduled(ctx, r, loan, detail, req.PaymentDate)
		settled = loan
		return err
	})
	if err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, settled)

	s.logger.Info("scheduled payment recorded",
		zap.String("loan_id", payment.LoanID.String()),
		zap.String("payment_detail_id", req.PaymentDetailID.String()))
	return payment, nil
}

// recordScheduled applies one schedule entry through the shared payment path
func (s *PaymentService) recordScheduled(ctx context.Context, r uow.Repos,
	loan *lending.Loan, detail *lending.PaymentDetail, paymentDate time.Time) (*lending.Payment, error) {

	if err := loan.MarkScheduleEntryPaid(detail.PaymentNumber); err != nil {
		return nil, err
	}
	detailID := detail.ID
	return s.applyToLoan(ctx, r, loan, &detailID, paymentDate, detail.Principal, detail.Interest)
}

// recordPayment loads the loan and applies an ad-hoc payment to it
func (s *PaymentService) recordPayment(ctx context.Context, r uow.Repos,
	loanID uuid.UUID, paymentDetailID *uuid.UUID, paymentDate time.Time,
	principal, interest valueobject.Money) (*lending.Payment, *lending.Loan, error) {

	loan, err := r.Loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load loan: %w", err)
	}
	if loan == nil {
		return nil, nil, shared.ErrNotFound
	}
	payment, err := s.applyToLoan(ctx, r, loan, paymentDetailID, paymentDate, principal, interest)
	return payment, loan, err
}

// applyToLoan is the shared repayment path: apply principal to the loan,
// distribute it across the drawdown allocations, return investor funds,
// persist the payment and ledger entry, and cascade completion.
func (s *PaymentService) applyToLoan(ctx context.Context, r uow.Repos,
	loan *lending.Loan, paymentDetailID *uuid.UUID, paymentDate time.Time,
	principal, interest valueobject.Money) (*lending.Payment, error) {

	drawdown, err := r.Drawdowns.FindByID(ctx, loan.DrawdownID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawdown: %w", err)
	}
	if drawdown == nil {
		return nil, shared.ErrNotFound
	}

	var distribution lending.AmountPies
	if principal.IsPositive() {
		distribution, err = lending.DistributeByAmountPies(principal, drawdown.Allocations)
		if err != nil {
			return nil, err
		}
	}

	expected := loan.Version
	if err := loan.ApplyPayment(principal); err != nil {
		return nil, err
	}
	if err := r.Loans.SaveWithLock(ctx, loan, expected); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	// repaid principal flows back to the investors pro-rata; small payments
	// can round an investor's slice down to zero, which leaves them untouched
	for _, pie := range distribution {
		if !pie.Amount.IsPositive() {
			continue
		}
		investor, err := r.Investors.FindByID(ctx, pie.InvestorID)
		if err != nil {
			return nil, fmt.Errorf("failed to load investor %s: %w", pie.InvestorID, err)
		}
		if investor == nil {
			return nil, shared.ErrNotFound
		}
		investorVersion := investor.Version
		if err := investor.DecreaseInvestment(pie.Amount); err != nil {
			return nil, err
		}
		if err := r.Investors.SaveWithLock(ctx, investor, investorVersion); err != nil {
			return nil, fmt.Errorf("failed to save investor %s: %w", pie.InvestorID, err)
		}
	}

	var payment *lending.Payment
	if paymentDetailID != nil {
		payment, err = lending.NewScheduledPayment(loan.ID, *paymentDetailID, paymentDate, principal, interest, distribution)
	} else {
		payment, err = lending.NewPayment(loan.ID, paymentDate, principal, interest, distribution)
	}
	if err != nil {
		return nil, err
	}
	if err := r.Payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	loanID := loan.ID
	entry, err := lending.NewTransaction(lending.TransactionTypePayment,
		loan.FacilityID, loan.BorrowerID, &loanID, payment.Total(), paymentDate)
	if err != nil {
		return nil, err
	}
	if err := r.Transactions.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	if loan.Status == lending.LoanStatusCompleted {
		if err := s.cascadeCompletion(ctx, r, loan.FacilityID); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// cascadeCompletion completes the facility once its last loan is repaid
func (s *PaymentService) cascadeCompletion(ctx context.Context, r uow.Repos, facilityID uuid.UUID) error {
	outstanding, err := r.Loans.CountOutstandingByFacility(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("failed to count outstanding loans: %w", err)
	}
	if outstanding != 0 {
		return nil
	}
	facility, err := r.Facilities.FindByID(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("failed to load facility: %w", err)
	}
	if facility == nil {
		return shared.ErrNotFound
	}
	return completeFacility(ctx, r, facility)
}

// MarkLoanOverdue moves a single active loan to OVERDUE when its next
// unpaid installment is past due as of the given date
func (s *PaymentService) MarkLoanOverdue(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*lending.Loan, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan: %w", err)
	}
	if loan == nil {
		return nil, shared.ErrNotFound
	}
	expected := loan.Version
	if err := loan.MarkOverdue(asOf); err != nil {
		return nil, err
	}
	if err := s.loanRepo.SaveWithLock(ctx, loan, expected); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	publishDomainEvents(ctx, s.eventPublisher, loan)
	return loan, nil
}

// SweepOverdueLoans marks every active loan with a past-due installment as
// OVERDUE. Loans that cannot be transitioned are logged and skipped so one
// bad loan does not block the sweep.
func (s *PaymentService) SweepOverdueLoans(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.loanRepo.FindDue(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to find due loans: %w", err)
	}

	marked := 0
	for i := range due {
		loan := &due[i]
		expected := loan.Version
		if err := loan.MarkOverdue(asOf); err != nil {
			s.logger.Warn("skipping loan in overdue sweep",
				zap.String("loan_id", loan.ID.String()), zap.Error(err))
			continue
		}
		if err := s.loanRepo.SaveWithLock(ctx, loan, expected); err != nil {
			s.logger.Warn("failed to save loan in overdue sweep",
				zap.String("loan_id", loan.ID.String()), zap.Error(err))
			continue
		}
		publishDomainEvents(ctx, s.eventPublisher, loan)
		marked++
	}
	return marked, nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*lending.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

// ListPayments returns payments matching the filter with a total count
func (s *PaymentService) ListPayments(ctx context.Context, filter lending.PaymentFilter) (*shared.Paginated[lending.Payment], error) {
	payments, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	var total int64
	if filter.LoanID != nil {
		total, err = s.paymentRepo.CountByLoan(ctx, *filter.LoanID)
		if err != nil {
			return nil, fmt.Errorf("failed to count payments: %w", err)
		}
	} else {
		total = int64(len(payments))
	}
	result := shared.NewPaginated(payments, total, filter.Page, filter.Limit())
	return &result, nil
}

// GetLoan returns a loan with its schedule by ID
func (s *PaymentService) GetLoan(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	loan, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan: %w", err)
	}
	if loan == nil {
		return nil, shared.ErrNotFound
	}
	return loan, nil
}

// ListLoans returns loans matching the filter with a total count
func (s *PaymentService) ListLoans(ctx context.Context, filter lending.LoanFilter) (*shared.Paginated[lending.Loan], error) {
	loans, err := s.loanRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	result := shared.NewPaginated(loans, int64(len(loans)), filter.Page, filter.Limit())
	return &result, nil
}

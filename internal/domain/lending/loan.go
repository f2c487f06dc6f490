package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// LoanStatus represents the loan lifecycle status
type LoanStatus string

const (
	LoanStatusDraft     LoanStatus = "DRAFT"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusOverdue   LoanStatus = "OVERDUE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
)

// IsValid checks if the status is valid
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusDraft, LoanStatusActive, LoanStatusOverdue, LoanStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the loan can accept further payments
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusCompleted
}

func (s LoanStatus) String() string {
	return string(s)
}

// LoanLifecycleEvent is a trigger for loan status transitions
type LoanLifecycleEvent string

const (
	LoanEventFirstPayment    LoanLifecycleEvent = "FIRST_PAYMENT"
	LoanEventPaymentOverdue  LoanLifecycleEvent = "PAYMENT_OVERDUE"
	LoanEventOverdueResolved LoanLifecycleEvent = "OVERDUE_RESOLVED"
	LoanEventFinalPayment    LoanLifecycleEvent = "FINAL_PAYMENT"
)

// nextLoanStatus is the loan transition table. Undefined pairs are rejected.
func nextLoanStatus(current LoanStatus, event LoanLifecycleEvent) (LoanStatus, error) {
	switch {
	case current == LoanStatusDraft && event == LoanEventFirstPayment:
		return LoanStatusActive, nil
	case current == LoanStatusActive && event == LoanEventPaymentOverdue:
		return LoanStatusOverdue, nil
	case current == LoanStatusOverdue && event == LoanEventOverdueResolved:
		return LoanStatusActive, nil
	case (current == LoanStatusActive || current == LoanStatusOverdue) && event == LoanEventFinalPayment:
		return LoanStatusCompleted, nil
	}
	return current, shared.NewDomainError(
		shared.CodeInvalidState,
		fmt.Sprintf("loan in status %s cannot accept event %s", current, event))
}

// Loan is the repayment obligation created by an executed drawdown. It owns
// the materialized amortization schedule and the running outstanding balance.
type Loan struct {
	shared.BaseAggregateRoot
	FacilityID      uuid.UUID              `json:"facility_id"`
	DrawdownID      uuid.UUID              `json:"drawdown_id"`
	BorrowerID      uuid.UUID              `json:"borrower_id"`
	Principal       valueobject.Money      `json:"principal"`
	Outstanding     valueobject.Money      `json:"outstanding"`
	AnnualRate      valueobject.Percentage `json:"annual_rate"`
	DrawdownDate    time.Time              `json:"drawdown_date"`
	RepaymentMonths int                    `json:"repayment_months"`
	Cycle           RepaymentCycle         `json:"repayment_cycle"`
	Method          RepaymentMethod        `json:"repayment_method"`
	SharePies       SharePies              `json:"share_pies"`
	Schedule        []PaymentDetail        `json:"schedule"`
	Status          LoanStatus             `json:"status"`
}

// NewLoan creates a loan in DRAFT with its schedule generated up front.
// The schedule is fixed at creation and never regenerated.
func NewLoan(facilityID, drawdownID, borrowerID uuid.UUID, principal valueobject.Money,
	rate valueobject.Percentage, drawdownDate time.Time, repaymentMonths int,
	cycle RepaymentCycle, method RepaymentMethod, pies SharePies) (*Loan, error) {

	if facilityID == uuid.Nil {
		return nil, shared.NewValidationError("facility ID is required")
	}
	if drawdownID == uuid.Nil {
		return nil, shared.NewValidationError("drawdown ID is required")
	}
	if borrowerID == uuid.Nil {
		return nil, shared.NewValidationError("borrower ID is required")
	}
	if err := pies.Validate(); err != nil {
		return nil, err
	}

	schedule, err := GenerateSchedule(ScheduleSpec{
		Principal:       principal,
		AnnualRate:      rate,
		DrawdownDate:    drawdownDate,
		RepaymentMonths: repaymentMonths,
		Cycle:           cycle,
		Method:          method,
	})
	if err != nil {
		return nil, err
	}

	loan := &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FacilityID:        facilityID,
		DrawdownID:        drawdownID,
		BorrowerID:        borrowerID,
		Principal:         principal,
		Outstanding:       principal,
		AnnualRate:        rate,
		DrawdownDate:      drawdownDate,
		RepaymentMonths:   repaymentMonths,
		Cycle:             cycle,
		Method:            method,
		SharePies:         pies,
		Schedule:          schedule,
		Status:            LoanStatusDraft,
	}
	for i := range loan.Schedule {
		loan.Schedule[i].LoanID = loan.ID
	}
	loan.AddDomainEvent(NewLoanCreatedEvent(loan))
	return loan, nil
}

// Currency returns the loan's settlement currency
func (l *Loan) Currency() valueobject.Currency {
	return l.Principal.Currency()
}

// ApplyPayment reduces the outstanding balance by the principal portion of a
// payment. The first recorded payment moves the loan DRAFT to ACTIVE; when
// the balance reaches exactly zero the loan completes. A payment exceeding
// the outstanding balance is rejected whole, never clamped.
//
// Any payment against an OVERDUE loan returns it to ACTIVE provisionally.
// Ad-hoc payments do not settle schedule entries, so the overdue sweep
// re-marks the loan on its next run if an installment is still past due.
func (l *Loan) ApplyPayment(principal valueobject.Money) error {
	if l.Status == LoanStatusCompleted {
		return shared.NewDomainError(
			shared.CodeInvalidState, "completed loan cannot accept payments")
	}
	if principal.IsNegative() {
		return shared.NewValidationError("payment principal cannot be negative")
	}
	exceeds, err := principal.GreaterThan(l.Outstanding)
	if err != nil {
		return shared.NewDomainError(shared.CodeCurrencyMismatch, err.Error())
	}
	if exceeds {
		return shared.NewDomainError(
			shared.CodeExceedsOutstanding,
			fmt.Sprintf("payment principal %s exceeds outstanding balance %s", principal, l.Outstanding))
	}

	if l.Status == LoanStatusDraft {
		next, err := nextLoanStatus(l.Status, LoanEventFirstPayment)
		if err != nil {
			return err
		}
		l.Status = next
		l.AddDomainEvent(NewLoanActivatedEvent(l))
	}

	l.Outstanding = l.Outstanding.MustSubtract(principal)

	if l.Outstanding.IsZero() {
		next, err := nextLoanStatus(l.Status, LoanEventFinalPayment)
		if err != nil {
			return err
		}
		l.Status = next
		l.AddDomainEvent(NewLoanCompletedEvent(l))
	} else if l.Status == LoanStatusOverdue {
		next, err := nextLoanStatus(l.Status, LoanEventOverdueResolved)
		if err != nil {
			return err
		}
		l.Status = next
	}

	l.Touch()
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanPaymentAppliedEvent(l, principal))
	return nil
}

// MarkScheduleEntryPaid flags an installment as settled. Only scheduled
// repayments touch schedule state; ad-hoc payments leave it untouched.
func (l *Loan) MarkScheduleEntryPaid(paymentNumber int) error {
	for i := range l.Schedule {
		if l.Schedule[i].PaymentNumber == paymentNumber {
			if l.Schedule[i].Paid {
				return shared.NewDomainError(
					shared.CodeInvalidState,
					fmt.Sprintf("installment %d is already paid", paymentNumber))
			}
			l.Schedule[i].Paid = true
			return nil
		}
	}
	return shared.ErrNotFound
}

// NextUnpaidInstallment returns the earliest unpaid schedule entry
func (l *Loan) NextUnpaidInstallment() (PaymentDetail, bool) {
	for _, d := range l.Schedule {
		if !d.Paid {
			return d, true
		}
	}
	return PaymentDetail{}, false
}

// MarkOverdue transitions an ACTIVE loan with a past-due unpaid installment
// to OVERDUE. Marking is idempotent for loans already overdue.
func (l *Loan) MarkOverdue(asOf time.Time) error {
	if l.Status == LoanStatusOverdue {
		return nil
	}
	next, err := nextLoanStatus(l.Status, LoanEventPaymentOverdue)
	if err != nil {
		return err
	}
	detail, ok := l.NextUnpaidInstallment()
	if !ok || !detail.DueDate.Before(asOf) {
		return shared.NewDomainError(
			shared.CodeInvalidState, "loan has no past-due installment")
	}
	l.Status = next
	l.Touch()
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanOverdueEvent(l))
	return nil
}

// CheckVersion compares the caller's expected version with the aggregate's
func (l *Loan) CheckVersion(expected int) error {
	if l.Version != expected {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

package lending

import (
	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LoanCreatedEvent is raised when a drawdown creates a loan in DRAFT
type LoanCreatedEvent struct {
	shared.BaseDomainEvent
	LoanID       uuid.UUID       `json:"loan_id"`
	FacilityID   uuid.UUID       `json:"facility_id"`
	DrawdownID   uuid.UUID       `json:"drawdown_id"`
	BorrowerID   uuid.UUID       `json:"borrower_id"`
	Principal    decimal.Decimal `json:"principal"`
	Currency     string          `json:"currency"`
	Installments int             `json:"installments"`
}

// EventType returns the event type name
func (e *LoanCreatedEvent) EventType() string {
	return "LoanCreated"
}

// NewLoanCreatedEvent creates a new LoanCreatedEvent
func NewLoanCreatedEvent(l *Loan) *LoanCreatedEvent {
	return &LoanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanCreated", "Loan", l.ID),
		LoanID:          l.ID,
		FacilityID:      l.FacilityID,
		DrawdownID:      l.DrawdownID,
		BorrowerID:      l.BorrowerID,
		Principal:       l.Principal.Amount(),
		Currency:        string(l.Currency()),
		Installments:    len(l.Schedule),
	}
}

// LoanActivatedEvent is raised when the first recorded payment moves a loan
// out of DRAFT
type LoanActivatedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	FacilityID uuid.UUID `json:"facility_id"`
}

// EventType returns the event type name
func (e *LoanActivatedEvent) EventType() string {
	return "LoanActivated"
}

// NewLoanActivatedEvent creates a new LoanActivatedEvent
func NewLoanActivatedEvent(l *Loan) *LoanActivatedEvent {
	return &LoanActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanActivated", "Loan", l.ID),
		LoanID:          l.ID,
		FacilityID:      l.FacilityID,
	}
}

// LoanPaymentAppliedEvent is raised when a payment reduces the outstanding
// balance of a loan
type LoanPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	LoanID      uuid.UUID       `json:"loan_id"`
	Principal   decimal.Decimal `json:"principal"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// EventType returns the event type name
func (e *LoanPaymentAppliedEvent) EventType() string {
	return "LoanPaymentApplied"
}

// NewLoanPaymentAppliedEvent creates a new LoanPaymentAppliedEvent
func NewLoanPaymentAppliedEvent(l *Loan, principal valueobject.Money) *LoanPaymentAppliedEvent {
	return &LoanPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanPaymentApplied", "Loan", l.ID),
		LoanID:          l.ID,
		Principal:       principal.Amount(),
		Outstanding:     l.Outstanding.Amount(),
	}
}

// LoanOverdueEvent is raised when a loan with a past-due installment is
// marked OVERDUE
type LoanOverdueEvent struct {
	shared.BaseDomainEvent
	LoanID      uuid.UUID       `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// EventType returns the event type name
func (e *LoanOverdueEvent) EventType() string {
	return "LoanOverdue"
}

// NewLoanOverdueEvent creates a new LoanOverdueEvent
func NewLoanOverdueEvent(l *Loan) *LoanOverdueEvent {
	return &LoanOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanOverdue", "Loan", l.ID),
		LoanID:          l.ID,
		Outstanding:     l.Outstanding.Amount(),
	}
}

// LoanCompletedEvent is raised when the outstanding balance reaches zero
type LoanCompletedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	FacilityID uuid.UUID `json:"facility_id"`
}

// EventType returns the event type name
func (e *LoanCompletedEvent) EventType() string {
	return "LoanCompleted"
}

// NewLoanCompletedEvent creates a new LoanCompletedEvent
func NewLoanCompletedEvent(l *Loan) *LoanCompletedEvent {
	return &LoanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanCompleted", "Loan", l.ID),
		LoanID:          l.ID,
		FacilityID:      l.FacilityID,
	}
}

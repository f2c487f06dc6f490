package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// FacilityStatus represents the lifecycle state of a facility
type FacilityStatus string

const (
	FacilityStatusDraft     FacilityStatus = "DRAFT"     // Structure still editable, no drawdowns yet
	FacilityStatusActive    FacilityStatus = "ACTIVE"    // First drawdown executed, structure frozen
	FacilityStatusCompleted FacilityStatus = "COMPLETED" // All loans fully repaid, terminal
)

// IsValid checks if the status is a valid FacilityStatus
func (s FacilityStatus) IsValid() bool {
	switch s {
	case FacilityStatusDraft, FacilityStatusActive, FacilityStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of FacilityStatus
func (s FacilityStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the facility is in a terminal state
func (s FacilityStatus) IsTerminal() bool {
	return s == FacilityStatusCompleted
}

// FacilityLifecycleEvent is an event driving the facility state machine
type FacilityLifecycleEvent string

const (
	FacilityEventDrawdownExecuted FacilityLifecycleEvent = "DRAWDOWN_EXECUTED"
	FacilityEventRevertToDraft    FacilityLifecycleEvent = "REVERT_TO_DRAFT"
	FacilityEventAllLoansRepaid   FacilityLifecycleEvent = "ALL_LOANS_REPAID"
)

// nextFacilityStatus is the facility transition table. Every (state, event)
// pair outside it is rejected; there are no silent default transitions.
func nextFacilityStatus(current FacilityStatus, event FacilityLifecycleEvent) (FacilityStatus, error) {
	switch {
	case current == FacilityStatusDraft && event == FacilityEventDrawdownExecuted:
		return FacilityStatusActive, nil
	case current == FacilityStatusActive && event == FacilityEventRevertToDraft:
		return FacilityStatusDraft, nil
	case current == FacilityStatusActive && event == FacilityEventAllLoansRepaid:
		return FacilityStatusCompleted, nil
	default:
		return current, shared.NewBusinessRuleViolation(
			fmt.Sprintf("facility in %s cannot accept event %s", current, event))
	}
}

// InterestTerms holds the interest conditions of a facility or drawdown
type InterestTerms struct {
	AnnualRate  valueobject.Percentage `json:"annual_rate"`
	PenaltyRate valueobject.Percentage `json:"penalty_rate"`
}

// Facility is a committed pool of capital underwritten by a syndicate of
// investors, from which a borrower may draw funds. It exclusively owns its
// share pies and its drawdowns.
//
// Structure (commitment, share pies, dates) is editable only in DRAFT; the
// first executed drawdown freezes it.
type Facility struct {
	shared.BaseAggregateRoot
	SyndicateID   uuid.UUID         `json:"syndicate_id"`
	Commitment    valueobject.Money `json:"commitment"`
	StartDate     time.Time         `json:"start_date"`
	EndDate       time.Time         `json:"end_date"`
	InterestTerms InterestTerms     `json:"interest_terms"`
	SharePies     SharePies         `json:"share_pies"`
	Status        FacilityStatus    `json:"status"`
}

// NewFacility creates a facility in DRAFT. The share pies must sum to
// exactly 100%.
func NewFacility(
	syndicateID uuid.UUID,
	commitment valueobject.Money,
	startDate, endDate time.Time,
	interestTerms InterestTerms,
	pies SharePies,
) (*Facility, error) {
	if syndicateID == uuid.Nil {
		return nil, shared.NewValidationError("syndicate ID cannot be empty")
	}
	if !commitment.IsPositive() {
		return nil, shared.NewValidationError("facility commitment must be positive")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewValidationError("facility end date must be after start date")
	}
	if err := pies.Validate(); err != nil {
		return nil, err
	}

	f := &Facility{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SyndicateID:       syndicateID,
		Commitment:        commitment,
		StartDate:         startDate,
		EndDate:           endDate,
		InterestTerms:     interestTerms,
		SharePies:         pies,
		Status:            FacilityStatusDraft,
	}

	f.AddDomainEvent(NewFacilityCreatedEvent(f))

	return f, nil
}

// Currency returns the facility's commitment currency
func (f *Facility) Currency() valueobject.Currency {
	return f.Commitment.Currency()
}

// MarkDrawdownExecuted fires DRAWDOWN_EXECUTED. Only a DRAFT facility
// accepts it, which is what rejects a second drawdown at the facility level.
func (f *Facility) MarkDrawdownExecuted() error {
	next, err := nextFacilityStatus(f.Status, FacilityEventDrawdownExecuted)
	if err != nil {
		return err
	}

	f.Status = next
	f.Touch()
	f.IncrementVersion()
	f.AddDomainEvent(NewFacilityActivatedEvent(f))

	return nil
}

// RevertToDraft fires REVERT_TO_DRAFT. The guard requires that zero
// drawdowns remain attached; the caller passes the current count.
func (f *Facility) RevertToDraft(attachedDrawdowns int64) error {
	if attachedDrawdowns != 0 {
		return shared.NewBusinessRuleViolation(
			fmt.Sprintf("cannot revert facility to draft with %d drawdowns attached", attachedDrawdowns))
	}

	next, err := nextFacilityStatus(f.Status, FacilityEventRevertToDraft)
	if err != nil {
		return err
	}

	f.Status = next
	f.Touch()
	f.IncrementVersion()
	f.AddDomainEvent(NewFacilityRevertedToDraftEvent(f))

	return nil
}

// Complete fires ALL_LOANS_REPAID. The guard requires that no loan under
// the facility still carries an outstanding balance; the caller passes the
// count of such loans.
func (f *Facility) Complete(outstandingLoans int64) error {
	if outstandingLoans != 0 {
		return shared.NewBusinessRuleViolation(
			fmt.Sprintf("cannot complete facility with %d loans outstanding", outstandingLoans))
	}

	next, err := nextFacilityStatus(f.Status, FacilityEventAllLoansRepaid)
	if err != nil {
		return err
	}

	f.Status = next
	f.Touch()
	f.IncrementVersion()
	f.AddDomainEvent(NewFacilityCompletedEvent(f))

	return nil
}

// UpdateStructure replaces the structural fields. Permitted only in DRAFT;
// an ACTIVE facility's commitment, share pies and dates are immutable.
func (f *Facility) UpdateStructure(
	commitment valueobject.Money,
	startDate, endDate time.Time,
	interestTerms InterestTerms,
	pies SharePies,
) error {
	if f.Status != FacilityStatusDraft {
		return shared.NewDomainError(shared.CodeImmutableField,
			fmt.Sprintf("facility structure is immutable in %s status", f.Status))
	}
	if !commitment.IsPositive() {
		return shared.NewValidationError("facility commitment must be positive")
	}
	if !endDate.After(startDate) {
		return shared.NewValidationError("facility end date must be after start date")
	}
	if err := pies.Validate(); err != nil {
		return err
	}

	f.Commitment = commitment
	f.StartDate = startDate
	f.EndDate = endDate
	f.InterestTerms = interestTerms
	f.SharePies = pies
	f.Touch()
	f.IncrementVersion()

	return nil
}

// CheckVersion validates the caller's last-seen version for optimistic
// concurrency before a mutating operation is applied.
func (f *Facility) CheckVersion(expected int) error {
	if f.Version != expected {
		return shared.NewDomainError(shared.CodeOptimisticLock,
			fmt.Sprintf("facility version is %d, caller expected %d", f.Version, expected))
	}
	return nil
}

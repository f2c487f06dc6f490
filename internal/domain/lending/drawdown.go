package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// DrawdownStatus represents the drawdown lifecycle status
type DrawdownStatus string

const (
	DrawdownStatusPending  DrawdownStatus = "PENDING"
	DrawdownStatusExecuted DrawdownStatus = "EXECUTED"
	DrawdownStatusFailed   DrawdownStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s DrawdownStatus) IsValid() bool {
	switch s {
	case DrawdownStatusPending, DrawdownStatusExecuted, DrawdownStatusFailed:
		return true
	}
	return false
}

func (s DrawdownStatus) String() string {
	return string(s)
}

// Drawdown is a borrower's request to draw funds against a facility. It is
// staged in PENDING, then executed atomically against the facility, loan,
// transaction and investor aggregates. A failed execution records the reason
// and leaves the request editable for retry.
type Drawdown struct {
	shared.BaseAggregateRoot
	FacilityID      uuid.UUID              `json:"facility_id"`
	BorrowerID      uuid.UUID              `json:"borrower_id"`
	LoanID          uuid.UUID              `json:"loan_id,omitempty"`
	Amount          valueobject.Money      `json:"amount"`
	Purpose         string                 `json:"purpose"`
	AnnualRate      valueobject.Percentage `json:"annual_rate"`
	DrawdownDate    time.Time              `json:"drawdown_date"`
	RepaymentMonths int                    `json:"repayment_months"`
	Cycle           RepaymentCycle         `json:"repayment_cycle"`
	Method          RepaymentMethod        `json:"repayment_method"`
	Allocations     AmountPies             `json:"allocations,omitempty"`
	Status          DrawdownStatus         `json:"status"`
	FailureReason   string                 `json:"failure_reason,omitempty"`
	ExecutedAt      *time.Time             `json:"executed_at,omitempty"`
}

// NewDrawdown stages a drawdown request in PENDING
func NewDrawdown(facilityID, borrowerID uuid.UUID, amount valueobject.Money,
	purpose string, rate valueobject.Percentage, drawdownDate time.Time,
	repaymentMonths int, cycle RepaymentCycle, method RepaymentMethod) (*Drawdown, error) {

	if facilityID == uuid.Nil {
		return nil, shared.NewValidationError("facility ID is required")
	}
	if borrowerID == uuid.Nil {
		return nil, shared.NewValidationError("borrower ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("drawdown amount must be positive")
	}
	if repaymentMonths <= 0 {
		return nil, shared.NewValidationError("repayment period must be at least one month")
	}
	if !cycle.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid repayment cycle: %s", cycle))
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid repayment method: %s", method))
	}
	if drawdownDate.IsZero() {
		drawdownDate = time.Now()
	}

	d := &Drawdown{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FacilityID:        facilityID,
		BorrowerID:        borrowerID,
		Amount:            amount,
		Purpose:           purpose,
		AnnualRate:        rate,
		DrawdownDate:      drawdownDate,
		RepaymentMonths:   repaymentMonths,
		Cycle:             cycle,
		Method:            method,
		Status:            DrawdownStatusPending,
	}
	d.AddDomainEvent(NewDrawdownRequestedEvent(d))
	return d, nil
}

// Currency returns the drawdown's settlement currency
func (d *Drawdown) Currency() valueobject.Currency {
	return d.Amount.Currency()
}

// Execute records a successful execution: the investor allocations that
// funded it and the loan it created. Allocations must reconstruct the
// drawdown amount exactly.
func (d *Drawdown) Execute(allocations AmountPies, loanID uuid.UUID) error {
	if d.Status == DrawdownStatusExecuted {
		return shared.NewDomainError(
			shared.CodeInvalidState, "drawdown has already been executed")
	}
	if loanID == uuid.Nil {
		return shared.NewValidationError("loan ID is required")
	}
	if err := allocations.ValidateAgainst(d.Amount); err != nil {
		return err
	}

	now := time.Now()
	d.Allocations = allocations
	d.LoanID = loanID
	d.Status = DrawdownStatusExecuted
	d.FailureReason = ""
	d.ExecutedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(NewDrawdownExecutedEvent(d))
	return nil
}

// MarkFailed records why execution was rejected. The request stays editable
// so the borrower can amend and retry.
func (d *Drawdown) MarkFailed(reason string) error {
	if d.Status == DrawdownStatusExecuted {
		return shared.NewDomainError(
			shared.CodeInvalidState, "executed drawdown cannot be marked failed")
	}
	d.Status = DrawdownStatusFailed
	d.FailureReason = reason
	d.Touch()
	d.IncrementVersion()
	d.AddDomainEvent(NewDrawdownFailedEvent(d))
	return nil
}

// Update amends a staged request. Only PENDING and FAILED drawdowns are
// mutable; amending a failed request returns it to PENDING.
func (d *Drawdown) Update(amount valueobject.Money, purpose string,
	rate valueobject.Percentage, drawdownDate time.Time,
	repaymentMonths int, cycle RepaymentCycle, method RepaymentMethod) error {

	if d.Status == DrawdownStatusExecuted {
		return shared.NewDomainError(
			shared.CodeImmutableField, "executed drawdown cannot be modified")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("drawdown amount must be positive")
	}
	if repaymentMonths <= 0 {
		return shared.NewValidationError("repayment period must be at least one month")
	}
	if !cycle.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("invalid repayment cycle: %s", cycle))
	}
	if !method.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("invalid repayment method: %s", method))
	}

	d.Amount = amount
	d.Purpose = purpose
	d.AnnualRate = rate
	if !drawdownDate.IsZero() {
		d.DrawdownDate = drawdownDate
	}
	d.RepaymentMonths = repaymentMonths
	d.Cycle = cycle
	d.Method = method
	d.Status = DrawdownStatusPending
	d.FailureReason = ""
	d.Touch()
	d.IncrementVersion()
	return nil
}

// CheckVersion compares the caller's expected version with the aggregate's
func (d *Drawdown) CheckVersion(expected int) error {
	if d.Version != expected {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

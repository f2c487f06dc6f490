package lending

import (
	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DrawdownRequestedEvent is raised when a drawdown request is staged
type DrawdownRequestedEvent struct {
	shared.BaseDomainEvent
	DrawdownID uuid.UUID       `json:"drawdown_id"`
	FacilityID uuid.UUID       `json:"facility_id"`
	BorrowerID uuid.UUID       `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// EventType returns the event type name
func (e *DrawdownRequestedEvent) EventType() string {
	return "DrawdownRequested"
}

// NewDrawdownRequestedEvent creates a new DrawdownRequestedEvent
func NewDrawdownRequestedEvent(d *Drawdown) *DrawdownRequestedEvent {
	return &DrawdownRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DrawdownRequested", "Drawdown", d.ID),
		DrawdownID:      d.ID,
		FacilityID:      d.FacilityID,
		BorrowerID:      d.BorrowerID,
		Amount:          d.Amount.Amount(),
		Currency:        string(d.Currency()),
	}
}

// DrawdownExecutedEvent is raised when a drawdown executes and its loan is
// created
type DrawdownExecutedEvent struct {
	shared.BaseDomainEvent
	DrawdownID uuid.UUID       `json:"drawdown_id"`
	FacilityID uuid.UUID       `json:"facility_id"`
	LoanID     uuid.UUID       `json:"loan_id"`
	Amount     decimal.Decimal `json:"amount"`
	Investors  int             `json:"investors"`
}

// EventType returns the event type name
func (e *DrawdownExecutedEvent) EventType() string {
	return "DrawdownExecuted"
}

// NewDrawdownExecutedEvent creates a new DrawdownExecutedEvent
func NewDrawdownExecutedEvent(d *Drawdown) *DrawdownExecutedEvent {
	return &DrawdownExecutedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DrawdownExecuted", "Drawdown", d.ID),
		DrawdownID:      d.ID,
		FacilityID:      d.FacilityID,
		LoanID:          d.LoanID,
		Amount:          d.Amount.Amount(),
		Investors:       len(d.Allocations),
	}
}

// DrawdownFailedEvent is raised when drawdown execution is rejected
type DrawdownFailedEvent struct {
	shared.BaseDomainEvent
	DrawdownID uuid.UUID `json:"drawdown_id"`
	FacilityID uuid.UUID `json:"facility_id"`
	Reason     string    `json:"reason"`
}

// EventType returns the event type name
func (e *DrawdownFailedEvent) EventType() string {
	return "DrawdownFailed"
}

// NewDrawdownFailedEvent creates a new DrawdownFailedEvent
func NewDrawdownFailedEvent(d *Drawdown) *DrawdownFailedEvent {
	return &DrawdownFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DrawdownFailed", "Drawdown", d.ID),
		DrawdownID:      d.ID,
		FacilityID:      d.FacilityID,
		Reason:          d.FailureReason,
	}
}

package party

import (
	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BorrowerRegisteredEvent is raised when a borrower is registered
type BorrowerRegisteredEvent struct {
	shared.BaseDomainEvent
	BorrowerID   uuid.UUID `json:"borrower_id"`
	Name         string    `json:"name"`
	CreditRating string    `json:"credit_rating"`
}

// EventType returns the event type name
func (e *BorrowerRegisteredEvent) EventType() string {
	return "BorrowerRegistered"
}

// NewBorrowerRegisteredEvent creates a new BorrowerRegisteredEvent
func NewBorrowerRegisteredEvent(b *Borrower) *BorrowerRegisteredEvent {
	return &BorrowerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BorrowerRegistered", "Borrower", b.ID),
		BorrowerID:      b.ID,
		Name:            b.Name,
		CreditRating:    string(b.CreditRating),
	}
}

// InvestorRegisteredEvent is raised when an investor is registered
type InvestorRegisteredEvent struct {
	shared.BaseDomainEvent
	InvestorID uuid.UUID       `json:"investor_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Capacity   decimal.Decimal `json:"capacity"`
	Currency   string          `json:"currency"`
}

// EventType returns the event type name
func (e *InvestorRegisteredEvent) EventType() string {
	return "InvestorRegistered"
}

// NewInvestorRegisteredEvent creates a new InvestorRegisteredEvent
func NewInvestorRegisteredEvent(i *Investor) *InvestorRegisteredEvent {
	return &InvestorRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvestorRegistered", "Investor", i.ID),
		InvestorID:      i.ID,
		Name:            i.Name,
		Type:            string(i.Type),
		Capacity:        i.InvestmentCapacity.Amount(),
		Currency:        string(i.InvestmentCapacity.Currency()),
	}
}

// PartyRestrictedEvent is raised on a party's first facility participation
type PartyRestrictedEvent struct {
	shared.BaseDomainEvent
	PartyID   uuid.UUID `json:"party_id"`
	PartyKind string    `json:"party_kind"`
}

// EventType returns the event type name
func (e *PartyRestrictedEvent) EventType() string {
	return "PartyRestricted"
}

// NewPartyRestrictedEvent creates a new PartyRestrictedEvent
func NewPartyRestrictedEvent(kind string, partyID uuid.UUID) *PartyRestrictedEvent {
	return &PartyRestrictedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PartyRestricted", kind, partyID),
		PartyID:         partyID,
		PartyKind:       kind,
	}
}

// InvestmentChangedEvent is raised when an investor's running investment
// amount moves (positive delta on drawdown, negative on distribution)
type InvestmentChangedEvent struct {
	shared.BaseDomainEvent
	InvestorID uuid.UUID       `json:"investor_id"`
	Delta      decimal.Decimal `json:"delta"`
	Current    decimal.Decimal `json:"current"`
}

// EventType returns the event type name
func (e *InvestmentChangedEvent) EventType() string {
	return "InvestmentChanged"
}

// NewInvestmentChangedEvent creates a new InvestmentChangedEvent
func NewInvestmentChangedEvent(i *Investor, delta valueobject.Money) *InvestmentChangedEvent {
	return &InvestmentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvestmentChanged", "Investor", i.ID),
		InvestorID:      i.ID,
		Delta:           delta.Amount(),
		Current:         i.CurrentInvestmentAmount.Amount(),
	}
}

package lending

import (
	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FacilityCreatedEvent is raised when a new facility is created in DRAFT
type FacilityCreatedEvent struct {
	shared.BaseDomainEvent
	FacilityID  uuid.UUID       `json:"facility_id"`
	SyndicateID uuid.UUID       `json:"syndicate_id"`
	Commitment  decimal.Decimal `json:"commitment"`
	Currency    string          `json:"currency"`
	Investors   int             `json:"investors"`
}

// EventType returns the event type name
func (e *FacilityCreatedEvent) EventType() string {
	return "FacilityCreated"
}

// NewFacilityCreatedEvent creates a new FacilityCreatedEvent
func NewFacilityCreatedEvent(f *Facility) *FacilityCreatedEvent {
	return &FacilityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FacilityCreated", "Facility", f.ID),
		FacilityID:      f.ID,
		SyndicateID:     f.SyndicateID,
		Commitment:      f.Commitment.Amount(),
		Currency:        string(f.Currency()),
		Investors:       len(f.SharePies),
	}
}

// FacilityActivatedEvent is raised when the first drawdown moves a facility
// from DRAFT to ACTIVE
type FacilityActivatedEvent struct {
	shared.BaseDomainEvent
	FacilityID  uuid.UUID `json:"facility_id"`
	SyndicateID uuid.UUID `json:"syndicate_id"`
}

// EventType returns the event type name
func (e *FacilityActivatedEvent) EventType() string {
	return "FacilityActivated"
}

// NewFacilityActivatedEvent creates a new FacilityActivatedEvent
func NewFacilityActivatedEvent(f *Facility) *FacilityActivatedEvent {
	return &FacilityActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FacilityActivated", "Facility", f.ID),
		FacilityID:      f.ID,
		SyndicateID:     f.SyndicateID,
	}
}

// FacilityRevertedToDraftEvent is raised when a facility with no remaining
// drawdowns reverts from ACTIVE back to DRAFT
type FacilityRevertedToDraftEvent struct {
	shared.BaseDomainEvent
	FacilityID  uuid.UUID `json:"facility_id"`
	SyndicateID uuid.UUID `json:"syndicate_id"`
}

// EventType returns the event type name
func (e *FacilityRevertedToDraftEvent) EventType() string {
	return "FacilityRevertedToDraft"
}

// NewFacilityRevertedToDraftEvent creates a new FacilityRevertedToDraftEvent
func NewFacilityRevertedToDraftEvent(f *Facility) *FacilityRevertedToDraftEvent {
	return &FacilityRevertedToDraftEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FacilityRevertedToDraft", "Facility", f.ID),
		FacilityID:      f.ID,
		SyndicateID:     f.SyndicateID,
	}
}

// FacilityCompletedEvent is raised when all loans under a facility are
// fully repaid
type FacilityCompletedEvent struct {
	shared.BaseDomainEvent
	FacilityID  uuid.UUID `json:"facility_id"`
	SyndicateID uuid.UUID `json:"syndicate_id"`
}

// EventType returns the event type name
func (e *FacilityCompletedEvent) EventType() string {
	return "FacilityCompleted"
}

// NewFacilityCompletedEvent creates a new FacilityCompletedEvent
func NewFacilityCompletedEvent(f *Facility) *FacilityCompletedEvent {
	return &FacilityCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FacilityCompleted", "Facility", f.ID),
		FacilityID:      f.ID,
		SyndicateID:     f.SyndicateID,
	}
}

package lending

import (
	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
)

// SyndicateCreatedEvent is raised when a new syndicate is created in DRAFT
type SyndicateCreatedEvent struct {
	shared.BaseDomainEvent
	SyndicateID uuid.UUID `json:"syndicate_id"`
	Name        string    `json:"name"`
	LeadBankID  uuid.UUID `json:"lead_bank_id"`
	BorrowerID  uuid.UUID `json:"borrower_id"`
}

// EventType returns the event type name
func (e *SyndicateCreatedEvent) EventType() string {
	return "SyndicateCreated"
}

// NewSyndicateCreatedEvent creates a new SyndicateCreatedEvent
func NewSyndicateCreatedEvent(s *Syndicate) *SyndicateCreatedEvent {
	return &SyndicateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SyndicateCreated", "Syndicate", s.ID),
		SyndicateID:     s.ID,
		Name:            s.Name,
		LeadBankID:      s.LeadBankID,
		BorrowerID:      s.BorrowerID,
	}
}

// SyndicateActivatedEvent is raised when the syndicate's facility is created
type SyndicateActivatedEvent struct {
	shared.BaseDomainEvent
	SyndicateID uuid.UUID `json:"syndicate_id"`
	Name        string    `json:"name"`
}

// EventType returns the event type name
func (e *SyndicateActivatedEvent) EventType() string {
	return "SyndicateActivated"
}

// NewSyndicateActivatedEvent creates a new SyndicateActivatedEvent
func NewSyndicateActivatedEvent(s *Syndicate) *SyndicateActivatedEvent {
	return &SyndicateActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SyndicateActivated", "Syndicate", s.ID),
		SyndicateID:     s.ID,
		Name:            s.Name,
	}
}

// SyndicateRevertedToDraftEvent is raised when the syndicate's facility is
// deleted and the syndicate reverts to DRAFT
type SyndicateRevertedToDraftEvent struct {
	shared.BaseDomainEvent
	SyndicateID uuid.UUID `json:"syndicate_id"`
	Name        string    `json:"name"`
}

// EventType returns the event type name
func (e *SyndicateRevertedToDraftEvent) EventType() string {
	return "SyndicateRevertedToDraft"
}

// NewSyndicateRevertedToDraftEvent creates a new SyndicateRevertedToDraftEvent
func NewSyndicateRevertedToDraftEvent(s *Syndicate) *SyndicateRevertedToDraftEvent {
	return &SyndicateRevertedToDraftEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SyndicateRevertedToDraft", "Syndicate", s.ID),
		SyndicateID:     s.ID,
		Name:            s.Name,
	}
}

// SyndicateCompletedEvent is raised when the syndicate's facility completes
type SyndicateCompletedEvent struct {
	shared.BaseDomainEvent
	SyndicateID uuid.UUID `json:"syndicate_id"`
	Name        string    `json:"name"`
}

// EventType returns the event type name
func (e *SyndicateCompletedEvent) EventType() string {
	return "SyndicateCompleted"
}

// NewSyndicateCompletedEvent creates a new SyndicateCompletedEvent
func NewSyndicateCompletedEvent(s *Syndicate) *SyndicateCompletedEvent {
	return &SyndicateCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SyndicateCompleted", "Syndicate", s.ID),
		SyndicateID:     s.ID,
		Name:            s.Name,
	}
}

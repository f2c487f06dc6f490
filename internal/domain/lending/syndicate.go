package lending

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
)

// SyndicateStatus represents the lifecycle state of a syndicate
type SyndicateStatus string

const (
	SyndicateStatusDraft     SyndicateStatus = "DRAFT"     // No facility created yet, structure editable
	SyndicateStatusActive    SyndicateStatus = "ACTIVE"    // Its single facility exists
	SyndicateStatusCompleted SyndicateStatus = "COMPLETED" // Facility completed, terminal
)

// IsValid checks if the status is a valid SyndicateStatus
func (s SyndicateStatus) IsValid() bool {
	switch s {
	case SyndicateStatusDraft, SyndicateStatusActive, SyndicateStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of SyndicateStatus
func (s SyndicateStatus) String() string {
	return string(s)
}

// SyndicateLifecycleEvent is an event driving the syndicate state machine
type SyndicateLifecycleEvent string

const (
	SyndicateEventFacilityCreated   SyndicateLifecycleEvent = "FACILITY_CREATED"
	SyndicateEventFacilityDeleted   SyndicateLifecycleEvent = "FACILITY_DELETED"
	SyndicateEventFacilityCompleted SyndicateLifecycleEvent = "FACILITY_COMPLETED"
)

// nextSyndicateStatus is the syndicate transition table. FACILITY_CREATED is
// accepted only in DRAFT, which enforces exactly one facility per syndicate.
func nextSyndicateStatus(current SyndicateStatus, event SyndicateLifecycleEvent) (SyndicateStatus, error) {
	switch {
	case current == SyndicateStatusDraft && event == SyndicateEventFacilityCreated:
		return SyndicateStatusActive, nil
	case current == SyndicateStatusActive && event == SyndicateEventFacilityDeleted:
		return SyndicateStatusDraft, nil
	case current == SyndicateStatusActive && event == SyndicateEventFacilityCompleted:
		return SyndicateStatusCompleted, nil
	default:
		return current, shared.NewBusinessRuleViolation(
			fmt.Sprintf("syndicate in %s cannot accept event %s", current, event))
	}
}

// UUIDList is a slice of UUIDs stored as a JSONB column
type UUIDList []uuid.UUID

// Value implements driver.Valuer for JSONB storage
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *UUIDList) Scan(value any) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan UUIDList: unsupported type")
	}

	if len(bytes) == 0 {
		*l = UUIDList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Contains reports whether the list holds the given ID
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Syndicate is the named group of investors, with one qualified lead bank
// and a borrower, formed to back exactly one facility.
type Syndicate struct {
	shared.BaseAggregateRoot
	Name       string          `json:"name"`
	LeadBankID uuid.UUID       `json:"lead_bank_id"`
	BorrowerID uuid.UUID       `json:"borrower_id"`
	MemberIDs  UUIDList        `json:"member_ids"`
	Status     SyndicateStatus `json:"status"`
}

// NewSyndicate creates a syndicate in DRAFT. Lead-bank qualification is a
// directory concern checked by the application layer before calling this.
func NewSyndicate(name string, leadBankID, borrowerID uuid.UUID, memberIDs []uuid.UUID) (*Syndicate, error) {
	if name == "" {
		return nil, shared.NewValidationError("syndicate name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("syndicate name cannot exceed 100 characters")
	}
	if leadBankID == uuid.Nil {
		return nil, shared.NewValidationError("lead bank ID cannot be empty")
	}
	if borrowerID == uuid.Nil {
		return nil, shared.NewValidationError("borrower ID cannot be empty")
	}

	members := UUIDList(memberIDs)
	if !members.Contains(leadBankID) {
		members = append(members, leadBankID)
	}

	s := &Syndicate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		LeadBankID:        leadBankID,
		BorrowerID:        borrowerID,
		MemberIDs:         members,
		Status:            SyndicateStatusDraft,
	}

	s.AddDomainEvent(NewSyndicateCreatedEvent(s))

	return s, nil
}

// MarkFacilityCreated fires FACILITY_CREATED. Rejected once ACTIVE, so a
// second facility can never be attached.
func (s *Syndicate) MarkFacilityCreated() error {
	next, err := nextSyndicateStatus(s.Status, SyndicateEventFacilityCreated)
	if err != nil {
		return err
	}

	s.Status = next
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSyndicateActivatedEvent(s))

	return nil
}

// MarkFacilityDeleted fires FACILITY_DELETED, reverting to DRAFT when the
// syndicate's single facility is removed.
func (s *Syndicate) MarkFacilityDeleted() error {
	next, err := nextSyndicateStatus(s.Status, SyndicateEventFacilityDeleted)
	if err != nil {
		return err
	}

	s.Status = next
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSyndicateRevertedToDraftEvent(s))

	return nil
}

// MarkFacilityCompleted fires FACILITY_COMPLETED
func (s *Syndicate) MarkFacilityCompleted() error {
	next, err := nextSyndicateStatus(s.Status, SyndicateEventFacilityCompleted)
	if err != nil {
		return err
	}

	s.Status = next
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSyndicateCompletedEvent(s))

	return nil
}

// UpdateDetails replaces the structural fields. Permitted only in DRAFT;
// once the facility exists the syndicate's composition is immutable.
func (s *Syndicate) UpdateDetails(name string, leadBankID, borrowerID uuid.UUID, memberIDs []uuid.UUID) error {
	if s.Status != SyndicateStatusDraft {
		return shared.NewDomainError(shared.CodeImmutableField,
			fmt.Sprintf("syndicate structure is immutable in %s status", s.Status))
	}
	if name == "" {
		return shared.NewValidationError("syndicate name cannot be empty")
	}
	if leadBankID == uuid.Nil {
		return shared.NewValidationError("lead bank ID cannot be empty")
	}
	if borrowerID == uuid.Nil {
		return shared.NewValidationError("borrower ID cannot be empty")
	}

	members := UUIDList(memberIDs)
	if !members.Contains(leadBankID) {
		members = append(members, leadBankID)
	}

	s.Name = name
	s.LeadBankID = leadBankID
	s.BorrowerID = borrowerID
	s.MemberIDs = members
	s.Touch()
	s.IncrementVersion()

	return nil
}

// CheckVersion validates the caller's last-seen version for optimistic
// concurrency before a mutating operation is applied.
func (s *Syndicate) CheckVersion(expected int) error {
	if s.Version != expected {
		return shared.NewDomainError(shared.CodeOptimisticLock,
			fmt.Sprintf("syndicate version is %d, caller expected %d", s.Version, expected))
	}
	return nil
}

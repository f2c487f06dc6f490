package party

import (
	"fmt"
	"strings"

	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// PartyStatus represents the participation status of a borrower or investor
type PartyStatus string

const (
	// PartyStatusActive parties may still have identity and limit fields
	// edited.
	PartyStatusActive PartyStatus = "ACTIVE"
	// PartyStatusRestricted is entered on first facility participation.
	// Identity and limit fields freeze; restriction is permanent.
	PartyStatusRestricted PartyStatus = "RESTRICTED"
)

// IsValid checks if the status is valid
func (s PartyStatus) IsValid() bool {
	return s == PartyStatusActive || s == PartyStatusRestricted
}

func (s PartyStatus) String() string {
	return string(s)
}

// PartyLifecycleEvent is a trigger for party status transitions
type PartyLifecycleEvent string

const (
	PartyEventFacilityParticipation PartyLifecycleEvent = "FACILITY_PARTICIPATION"
)

// nextPartyStatus is the shared borrower/investor transition table. The only
// defined transition is ACTIVE -> RESTRICTED; there is no way back.
func nextPartyStatus(current PartyStatus, event PartyLifecycleEvent) (PartyStatus, error) {
	if current == PartyStatusActive && event == PartyEventFacilityParticipation {
		return PartyStatusRestricted, nil
	}
	return current, shared.NewDomainError(
		shared.CodeInvalidState,
		fmt.Sprintf("party in status %s cannot accept event %s", current, event))
}

// CreditRating is an external agency-style rating attached to a borrower
type CreditRating string

const (
	CreditRatingAAA CreditRating = "AAA"
	CreditRatingAA  CreditRating = "AA"
	CreditRatingA   CreditRating = "A"
	CreditRatingBBB CreditRating = "BBB"
	CreditRatingBB  CreditRating = "BB"
	CreditRatingB   CreditRating = "B"
	CreditRatingCCC CreditRating = "CCC"
)

// IsValid checks if the rating is valid
func (r CreditRating) IsValid() bool {
	switch r {
	case CreditRatingAAA, CreditRatingAA, CreditRatingA, CreditRatingBBB,
		CreditRatingBB, CreditRatingB, CreditRatingCCC:
		return true
	}
	return false
}

// Borrower is a company that draws funds against facilities
type Borrower struct {
	shared.BaseAggregateRoot
	Name         string            `json:"name"`
	CompanyCode  string            `json:"company_code"`
	CreditRating CreditRating      `json:"credit_rating"`
	CreditLimit  valueobject.Money `json:"credit_limit"`
	Status       PartyStatus       `json:"status"`
}

// NewBorrower registers a borrower in ACTIVE
func NewBorrower(name, companyCode string, rating CreditRating, creditLimit valueobject.Money) (*Borrower, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("borrower name is required")
	}
	if strings.TrimSpace(companyCode) == "" {
		return nil, shared.NewValidationError("company code is required")
	}
	if !rating.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid credit rating: %s", rating))
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewValidationError("credit limit cannot be negative")
	}

	b := &Borrower{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CompanyCode:       strings.ToUpper(strings.TrimSpace(companyCode)),
		CreditRating:      rating,
		CreditLimit:       creditLimit,
		Status:            PartyStatusActive,
	}
	b.AddDomainEvent(NewBorrowerRegisteredEvent(b))
	return b, nil
}

// Update edits identity and limit fields. Rejected once RESTRICTED.
func (b *Borrower) Update(name string, rating CreditRating, creditLimit valueobject.Money) error {
	if b.Status == PartyStatusRestricted {
		return shared.NewDomainError(
			shared.CodeImmutableField,
			"borrower participating in a facility cannot change identity or limit fields")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("borrower name is required")
	}
	if !rating.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("invalid credit rating: %s", rating))
	}
	if creditLimit.IsNegative() {
		return shared.NewValidationError("credit limit cannot be negative")
	}

	b.Name = name
	b.CreditRating = rating
	b.CreditLimit = creditLimit
	b.Touch()
	b.IncrementVersion()
	return nil
}

// Restrict fires FACILITY_PARTICIPATION. Idempotent for parties already
// restricted, since a party can join many facilities.
func (b *Borrower) Restrict() error {
	if b.Status == PartyStatusRestricted {
		return nil
	}
	next, err := nextPartyStatus(b.Status, PartyEventFacilityParticipation)
	if err != nil {
		return err
	}
	b.Status = next
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewPartyRestrictedEvent("Borrower", b.ID))
	return nil
}

// CheckVersion compares the caller's expected version with the aggregate's
func (b *Borrower) CheckVersion(expected int) error {
	if b.Version != expected {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// InvestorType classifies syndicate members; only lead banks may lead
type InvestorType string

const (
	InvestorTypeLeadBank    InvestorType = "LEAD_BANK"
	InvestorTypeBank        InvestorType = "BANK"
	InvestorTypeInstitution InvestorType = "INSTITUTION"
	InvestorTypeFund        InvestorType = "FUND"
)

// IsValid checks if the investor type is valid
func (t InvestorType) IsValid() bool {
	switch t {
	case InvestorTypeLeadBank, InvestorTypeBank, InvestorTypeInstitution, InvestorTypeFund:
		return true
	}
	return false
}

// Investor is a syndicate member funding drawdowns and receiving repayment
// distributions. CurrentInvestmentAmount tracks money at work and stays
// mutable after restriction; capacity and type do not.
type Investor struct {
	shared.BaseAggregateRoot
	Name                    string            `json:"name"`
	CompanyCode             string            `json:"company_code"`
	Type                    InvestorType      `json:"type"`
	InvestmentCapacity      valueobject.Money `json:"investment_capacity"`
	CurrentInvestmentAmount valueobject.Money `json:"current_investment_amount"`
	Status                  PartyStatus       `json:"status"`
}

// NewInvestor registers an investor in ACTIVE with nothing invested
func NewInvestor(name, companyCode string, investorType InvestorType, capacity valueobject.Money) (*Investor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("investor name is required")
	}
	if strings.TrimSpace(companyCode) == "" {
		return nil, shared.NewValidationError("company code is required")
	}
	if !investorType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid investor type: %s", investorType))
	}
	if !capacity.IsPositive() {
		return nil, shared.NewValidationError("investment capacity must be positive")
	}

	inv := &Investor{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		Name:                    name,
		CompanyCode:             strings.ToUpper(strings.TrimSpace(companyCode)),
		Type:                    investorType,
		InvestmentCapacity:      capacity,
		CurrentInvestmentAmount: valueobject.Zero(capacity.Currency()),
		Status:                  PartyStatusActive,
	}
	inv.AddDomainEvent(NewInvestorRegisteredEvent(inv))
	return inv, nil
}

// IsQualifiedLeadBank reports whether the investor may lead a syndicate
func (i *Investor) IsQualifiedLeadBank() bool {
	return i.Type == InvestorTypeLeadBank
}

// Update edits identity and capacity fields. Rejected once RESTRICTED.
func (i *Investor) Update(name string, investorType InvestorType, capacity valueobject.Money) error {
	if i.Status == PartyStatusRestricted {
		return shared.NewDomainError(
			shared.CodeImmutableField,
			"investor participating in a facility cannot change identity or capacity fields")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("investor name is required")
	}
	if !investorType.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("invalid investor type: %s", investorType))
	}
	if !capacity.IsPositive() {
		return shared.NewValidationError("investment capacity must be positive")
	}

	i.Name = name
	i.Type = investorType
	i.InvestmentCapacity = capacity
	i.Touch()
	i.IncrementVersion()
	return nil
}

// Restrict fires FACILITY_PARTICIPATION. Idempotent for investors already
// restricted.
func (i *Investor) Restrict() error {
	if i.Status == PartyStatusRestricted {
		return nil
	}
	next, err := nextPartyStatus(i.Status, PartyEventFacilityParticipation)
	if err != nil {
		return err
	}
	i.Status = next
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewPartyRestrictedEvent("Investor", i.ID))
	return nil
}

// IncreaseInvestment records a drawdown allocation funding by this investor.
// Allowed under RESTRICTED; the restriction covers identity and capacity
// fields only.
func (i *Investor) IncreaseInvestment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("investment increase must be positive")
	}
	updated, err := i.CurrentInvestmentAmount.Add(amount)
	if err != nil {
		return shared.NewDomainError(shared.CodeCurrencyMismatch, err.Error())
	}
	i.CurrentInvestmentAmount = updated
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewInvestmentChangedEvent(i, amount))
	return nil
}

// DecreaseInvestment records a principal repayment distribution. The running
// amount must never go negative.
func (i *Investor) DecreaseInvestment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("investment decrease must be positive")
	}
	updated, err := i.CurrentInvestmentAmount.Subtract(amount)
	if err != nil {
		return shared.NewDomainError(shared.CodeCurrencyMismatch, err.Error())
	}
	if updated.IsNegative() {
		return shared.NewDomainError(
			shared.CodeInsufficientFunds,
			fmt.Sprintf("distribution %s exceeds investor's current investment %s", amount, i.CurrentInvestmentAmount))
	}
	i.CurrentInvestmentAmount = updated
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewInvestmentChangedEvent(i, amount.Negate()))
	return nil
}

// CheckVersion compares the caller's expected version with the aggregate's
func (i *Investor) CheckVersion(expected int) error {
	if i.Version != expected {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// money rebuilds a Money value from its stored amount and currency columns.
// Values coming out of the database were validated on the way in.
func money(amount decimal.Decimal, currency string) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, valueobject.Currency(currency))
	return m
}

// percent rebuilds a Percentage from its stored decimal column
func percent(value decimal.Decimal) valueobject.Percentage {
	p, _ := valueobject.NewPercentage(value)
	return p
}

// SyndicateModel is the persistence model for the Syndicate aggregate root.
type SyndicateModel struct {
	AggregateModel
	Name       string                  `gorm:"type:varchar(200);not null;uniqueIndex"`
	LeadBankID uuid.UUID               `gorm:"type:uuid;not null;index"`
	BorrowerID uuid.UUID               `gorm:"type:uuid;not null;index"`
	MemberIDs  lending.UUIDList        `gorm:"type:jsonb;default:'[]'"`
	Status     lending.SyndicateStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
}

// TableName returns the table name for GORM
func (SyndicateModel) TableName() string {
	return "syndicates"
}

// ToDomain converts the persistence model to a domain Syndicate entity.
func (m *SyndicateModel) ToDomain() *lending.Syndicate {
	return &lending.Syndicate{
		BaseAggregateRoot: m.toAggregateRoot(),
		Name:              m.Name,
		LeadBankID:        m.LeadBankID,
		BorrowerID:        m.BorrowerID,
		MemberIDs:         m.MemberIDs,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Syndicate entity.
func (m *SyndicateModel) FromDomain(s *lending.Syndicate) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.LeadBankID = s.LeadBankID
	m.BorrowerID = s.BorrowerID
	m.MemberIDs = s.MemberIDs
	m.Status = s.Status
}

// SyndicateModelFromDomain creates a new persistence model from a domain Syndicate.
func SyndicateModelFromDomain(s *lending.Syndicate) *SyndicateModel {
	m := &SyndicateModel{}
	m.FromDomain(s)
	return m
}

// FacilityModel is the persistence model for the Facility aggregate root.
// Share pies are stored inline as JSONB; they live and die with the facility.
type FacilityModel struct {
	AggregateModel
	SyndicateID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	CommitmentAmount decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Currency         string                 `gorm:"type:varchar(3);not null"`
	StartDate        time.Time              `gorm:"not null"`
	EndDate          time.Time              `gorm:"not null"`
	AnnualRate       valueobject.Percentage `gorm:"type:decimal(9,6);not null"`
	PenaltyRate      valueobject.Percentage `gorm:"type:decimal(9,6);not null"`
	SharePies        lending.SharePies      `gorm:"type:jsonb;default:'[]'"`
	Status           lending.FacilityStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
}

// TableName returns the table name for GORM
func (FacilityModel) TableName() string {
	return "facilities"
}

// ToDomain converts the persistence model to a domain Facility entity.
func (m *FacilityModel) ToDomain() *lending.Facility {
	return &lending.Facility{
		BaseAggregateRoot: m.toAggregateRoot(),
		SyndicateID:       m.SyndicateID,
		Commitment:        money(m.CommitmentAmount, m.Currency),
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		InterestTerms: lending.InterestTerms{
			AnnualRate:  m.AnnualRate,
			PenaltyRate: m.PenaltyRate,
		},
		SharePies: m.SharePies,
		Status:    m.Status,
	}
}

// FromDomain populates the persistence model from a domain Facility entity.
func (m *FacilityModel) FromDomain(f *lending.Facility) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.SyndicateID = f.SyndicateID
	m.CommitmentAmount = f.Commitment.Amount()
	m.Currency = string(f.Commitment.Currency())
	m.StartDate = f.StartDate
	m.EndDate = f.EndDate
	m.AnnualRate = f.InterestTerms.AnnualRate
	m.PenaltyRate = f.InterestTerms.PenaltyRate
	m.SharePies = f.SharePies
	m.Status = f.Status
}

// FacilityModelFromDomain creates a new persistence model from a domain Facility.
func FacilityModelFromDomain(f *lending.Facility) *FacilityModel {
	m := &FacilityModel{}
	m.FromDomain(f)
	return m
}

// DrawdownModel is the persistence model for the Drawdown aggregate root.
type DrawdownModel struct {
	AggregateModel
	FacilityID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	BorrowerID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	LoanID          *uuid.UUID              `gorm:"type:uuid;index"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Currency        string                  `gorm:"type:varchar(3);not null"`
	Purpose         string                  `gorm:"type:varchar(500)"`
	AnnualRate      valueobject.Percentage  `gorm:"type:decimal(9,6);not null"`
	DrawdownDate    time.Time               `gorm:"not null;index"`
	RepaymentMonths int                     `gorm:"not null"`
	Cycle           lending.RepaymentCycle  `gorm:"type:varchar(20);not null"`
	Method          lending.RepaymentMethod `gorm:"type:varchar(30);not null"`
	Allocations     lending.AmountPies      `gorm:"type:jsonb;default:'[]'"`
	Status          lending.DrawdownStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	FailureReason   string                  `gorm:"type:varchar(500)"`
	ExecutedAt      *time.Time
}

// TableName returns the table name for GORM
func (DrawdownModel) TableName() string {
	return "drawdowns"
}

// ToDomain converts the persistence model to a domain Drawdown entity.
func (m *DrawdownModel) ToDomain() *lending.Drawdown {
	d := &lending.Drawdown{
		BaseAggregateRoot: m.toAggregateRoot(),
		FacilityID:        m.FacilityID,
		BorrowerID:        m.BorrowerID,
		Amount:            money(m.Amount, m.Currency),
		Purpose:           m.Purpose,
		AnnualRate:        m.AnnualRate,
		DrawdownDate:      m.DrawdownDate,
		RepaymentMonths:   m.RepaymentMonths,
		Cycle:             m.Cycle,
		Method:            m.Method,
		Allocations:       m.Allocations,
		Status:            m.Status,
		FailureReason:     m.FailureReason,
		ExecutedAt:        m.ExecutedAt,
	}
	if m.LoanID != nil {
		d.LoanID = *m.LoanID
	}
	return d
}

// FromDomain populates the persistence model from a domain Drawdown entity.
func (m *DrawdownModel) FromDomain(d *lending.Drawdown) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.FacilityID = d.FacilityID
	m.BorrowerID = d.BorrowerID
	if d.LoanID != uuid.Nil {
		loanID := d.LoanID
		m.LoanID = &loanID
	} else {
		m.LoanID = nil
	}
	m.Amount = d.Amount.Amount()
	m.Currency = string(d.Amount.Currency())
	m.Purpose = d.Purpose
	m.AnnualRate = d.AnnualRate
	m.DrawdownDate = d.DrawdownDate
	m.RepaymentMonths = d.RepaymentMonths
	m.Cycle = d.Cycle
	m.Method = d.Method
	m.Allocations = d.Allocations
	m.Status = d.Status
	m.FailureReason = d.FailureReason
	m.ExecutedAt = d.ExecutedAt
}

// DrawdownModelFromDomain creates a new persistence model from a domain Drawdown.
func DrawdownModelFromDomain(d *lending.Drawdown) *DrawdownModel {
	m := &DrawdownModel{}
	m.FromDomain(d)
	return m
}

// LoanModel is the persistence model for the Loan aggregate root. The
// schedule lives in its own table so installments can be looked up and
// queried for due dates directly.
type LoanModel struct {
	AggregateModel
	FacilityID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	DrawdownID        uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	BorrowerID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	PrincipalAmount   decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Currency          string                 `gorm:"type:varchar(3);not null"`
	AnnualRate        valueobject.Percentage `gorm:"type:decimal(9,6);not null"`
	DrawdownDate      time.Time              `gorm:"not null"`
	RepaymentMonths   int                    `gorm:"not null"`
	Cycle             lending.RepaymentCycle  `gorm:"type:varchar(20);not null"`
	Method            lending.RepaymentMethod `gorm:"type:varchar(30);not null"`
	SharePies         lending.SharePies       `gorm:"type:jsonb;default:'[]'"`
	Schedule          []PaymentDetailModel    `gorm:"foreignKey:LoanID;references:ID"`
	Status            lending.LoanStatus      `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan entity.
func (m *LoanModel) ToDomain() *lending.Loan {
	schedule := make([]lending.PaymentDetail, len(m.Schedule))
	for i, d := range m.Schedule {
		schedule[i] = d.ToDomain()
	}
	return &lending.Loan{
		BaseAggregateRoot: m.toAggregateRoot(),
		FacilityID:        m.FacilityID,
		DrawdownID:        m.DrawdownID,
		BorrowerID:        m.BorrowerID,
		Principal:         money(m.PrincipalAmount, m.Currency),
		Outstanding:       money(m.OutstandingAmount, m.Currency),
		AnnualRate:        m.AnnualRate,
		DrawdownDate:      m.DrawdownDate,
		RepaymentMonths:   m.RepaymentMonths,
		Cycle:             m.Cycle,
		Method:            m.Method,
		SharePies:         m.SharePies,
		Schedule:          schedule,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Loan entity.
func (m *LoanModel) FromDomain(l *lending.Loan) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.FacilityID = l.FacilityID
	m.DrawdownID = l.DrawdownID
	m.BorrowerID = l.BorrowerID
	m.PrincipalAmount = l.Principal.Amount()
	m.OutstandingAmount = l.Outstanding.Amount()
	m.Currency = string(l.Principal.Currency())
	m.AnnualRate = l.AnnualRate
	m.DrawdownDate = l.DrawdownDate
	m.RepaymentMonths = l.RepaymentMonths
	m.Cycle = l.Cycle
	m.Method = l.Method
	m.SharePies = l.SharePies
	m.Status = l.Status
	m.Schedule = make([]PaymentDetailModel, len(l.Schedule))
	for i, d := range l.Schedule {
		m.Schedule[i].FromDomain(d, m.Currency)
	}
}

// LoanModelFromDomain creates a new persistence model from a domain Loan.
func LoanModelFromDomain(l *lending.Loan) *LoanModel {
	m := &LoanModel{}
	m.FromDomain(l)
	return m
}

// PaymentDetailModel is one row of a loan's amortization schedule.
type PaymentDetailModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	LoanID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentNumber   int             `gorm:"not null"`
	DueDate         time.Time       `gorm:"not null;index"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InterestAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Outstanding     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Paid            bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (PaymentDetailModel) TableName() string {
	return "payment_details"
}

// ToDomain converts the persistence model to a domain PaymentDetail.
func (m *PaymentDetailModel) ToDomain() lending.PaymentDetail {
	return lending.PaymentDetail{
		ID:            m.ID,
		LoanID:        m.LoanID,
		PaymentNumber: m.PaymentNumber,
		DueDate:       m.DueDate,
		Principal:     money(m.PrincipalAmount, m.Currency),
		Interest:      money(m.InterestAmount, m.Currency),
		Outstanding:   money(m.Outstanding, m.Currency),
		Paid:          m.Paid,
	}
}

// FromDomain populates the persistence model from a domain PaymentDetail.
func (m *PaymentDetailModel) FromDomain(d lending.PaymentDetail, currency string) {
	m.ID = d.ID
	m.LoanID = d.LoanID
	m.PaymentNumber = d.PaymentNumber
	m.DueDate = d.DueDate
	m.PrincipalAmount = d.Principal.Amount()
	m.InterestAmount = d.Interest.Amount()
	m.Outstanding = d.Outstanding.Amount()
	m.Currency = currency
	m.Paid = d.Paid
}

// PaymentModel is the persistence model for the immutable Payment record.
type PaymentModel struct {
	BaseModel
	LoanID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	PaymentDetailID *uuid.UUID          `gorm:"type:uuid;index"`
	Kind            lending.PaymentKind `gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time           `gorm:"not null;index"`
	PrincipalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	InterestAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Currency        string              `gorm:"type:varchar(3);not null"`
	Distribution    lending.AmountPies  `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment record.
func (m *PaymentModel) ToDomain() *lending.Payment {
	return &lending.Payment{
		BaseEntity:      m.ToDomainBase(),
		LoanID:          m.LoanID,
		PaymentDetailID: m.PaymentDetailID,
		Kind:            m.Kind,
		PaymentDate:     m.PaymentDate,
		Principal:       money(m.PrincipalAmount, m.Currency),
		Interest:        money(m.InterestAmount, m.Currency),
		Distribution:    m.Distribution,
	}
}

// FromDomain populates the persistence model from a domain Payment record.
func (m *PaymentModel) FromDomain(p *lending.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.LoanID = p.LoanID
	m.PaymentDetailID = p.PaymentDetailID
	m.Kind = p.Kind
	m.PaymentDate = p.PaymentDate
	m.PrincipalAmount = p.Principal.Amount()
	m.InterestAmount = p.Interest.Amount()
	m.Currency = string(p.Principal.Currency())
	m.Distribution = p.Distribution
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *lending.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// TransactionModel is the persistence model for ledger entries.
type TransactionModel struct {
	AggregateModel
	Type       lending.TransactionType   `gorm:"type:varchar(30);not null;index"`
	FacilityID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	LoanID     *uuid.UUID                `gorm:"type:uuid;index"`
	PartyID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Currency   string                    `gorm:"type:varchar(3);not null"`
	Status     lending.TransactionStatus `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	OccurredAt time.Time                 `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entry.
func (m *TransactionModel) ToDomain() *lending.Transaction {
	return &lending.Transaction{
		BaseAggregateRoot: m.toAggregateRoot(),
		Type:              m.Type,
		FacilityID:        m.FacilityID,
		LoanID:            m.LoanID,
		PartyID:           m.PartyID,
		Amount:            money(m.Amount, m.Currency),
		Status:            m.Status,
		OccurredAt:        m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction entry.
func (m *TransactionModel) FromDomain(t *lending.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Type = t.Type
	m.FacilityID = t.FacilityID
	m.LoanID = t.LoanID
	m.PartyID = t.PartyID
	m.Amount = t.Amount.Amount()
	m.Currency = string(t.Amount.Currency())
	m.Status = t.Status
	m.OccurredAt = t.OccurredAt
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *lending.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

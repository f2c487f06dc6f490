package models

import (
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/shopspring/decimal"
)

// BorrowerModel is the persistence model for the Borrower aggregate root.
type BorrowerModel struct {
	AggregateModel
	Name         string             `gorm:"type:varchar(200);not null"`
	CompanyCode  string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	CreditRating party.CreditRating `gorm:"type:varchar(5);not null"`
	CreditLimit  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency     string             `gorm:"type:varchar(3);not null"`
	Status       party.PartyStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (BorrowerModel) TableName() string {
	return "borrowers"
}

// ToDomain converts the persistence model to a domain Borrower entity.
func (m *BorrowerModel) ToDomain() *party.Borrower {
	return &party.Borrower{
		BaseAggregateRoot: m.toAggregateRoot(),
		Name:              m.Name,
		CompanyCode:       m.CompanyCode,
		CreditRating:      m.CreditRating,
		CreditLimit:       money(m.CreditLimit, m.Currency),
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Borrower entity.
func (m *BorrowerModel) FromDomain(b *party.Borrower) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.CompanyCode = b.CompanyCode
	m.CreditRating = b.CreditRating
	m.CreditLimit = b.CreditLimit.Amount()
	m.Currency = string(b.CreditLimit.Currency())
	m.Status = b.Status
}

// BorrowerModelFromDomain creates a new persistence model from a domain Borrower.
func BorrowerModelFromDomain(b *party.Borrower) *BorrowerModel {
	m := &BorrowerModel{}
	m.FromDomain(b)
	return m
}

// InvestorModel is the persistence model for the Investor aggregate root.
type InvestorModel struct {
	AggregateModel
	Name               string             `gorm:"type:varchar(200);not null"`
	CompanyCode        string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type               party.InvestorType `gorm:"type:varchar(20);not null;index"`
	InvestmentCapacity decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	CurrentInvestment  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency           string             `gorm:"type:varchar(3);not null"`
	Status             party.PartyStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (InvestorModel) TableName() string {
	return "investors"
}

// ToDomain converts the persistence model to a domain Investor entity.
func (m *InvestorModel) ToDomain() *party.Investor {
	return &party.Investor{
		BaseAggregateRoot:       m.toAggregateRoot(),
		Name:                    m.Name,
		CompanyCode:             m.CompanyCode,
		Type:                    m.Type,
		InvestmentCapacity:      money(m.InvestmentCapacity, m.Currency),
		CurrentInvestmentAmount: money(m.CurrentInvestment, m.Currency),
		Status:                  m.Status,
	}
}

// FromDomain populates the persistence model from a domain Investor entity.
func (m *InvestorModel) FromDomain(i *party.Investor) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.Name = i.Name
	m.CompanyCode = i.CompanyCode
	m.Type = i.Type
	m.InvestmentCapacity = i.InvestmentCapacity.Amount()
	m.CurrentInvestment = i.CurrentInvestmentAmount.Amount()
	m.Currency = string(i.InvestmentCapacity.Currency())
	m.Status = i.Status
}

// InvestorModelFromDomain creates a new persistence model from a domain Investor.
func InvestorModelFromDomain(i *party.Investor) *InvestorModel {
	m := &InvestorModel{}
	m.FromDomain(i)
	return m
}

package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// PaymentKind distinguishes ad-hoc payments from scheduled installments
type PaymentKind string

const (
	PaymentKindAdHoc     PaymentKind = "AD_HOC"
	PaymentKindScheduled PaymentKind = "SCHEDULED"
)

// Payment is an immutable record of a settled repayment against a loan,
// including how its principal was distributed back to investors. Payments are
// append-only; corrections are new compensating records, never edits.
type Payment struct {
	shared.BaseEntity
	LoanID          uuid.UUID         `json:"loan_id"`
	PaymentDetailID *uuid.UUID        `json:"payment_detail_id,omitempty"`
	Kind            PaymentKind       `json:"kind"`
	PaymentDate     time.Time         `json:"payment_date"`
	Principal       valueobject.Money `json:"principal"`
	Interest        valueobject.Money `json:"interest"`
	Distribution    AmountPies        `json:"distribution"`
}

// NewPayment records an ad-hoc payment against a loan
func NewPayment(loanID uuid.UUID, paymentDate time.Time,
	principal, interest valueobject.Money, distribution AmountPies) (*Payment, error) {
	return newPayment(loanID, nil, PaymentKindAdHoc, paymentDate, principal, interest, distribution)
}

// NewScheduledPayment records the settlement of a specific installment
func NewScheduledPayment(loanID, paymentDetailID uuid.UUID, paymentDate time.Time,
	principal, interest valueobject.Money, distribution AmountPies) (*Payment, error) {
	if paymentDetailID == uuid.Nil {
		return nil, shared.NewValidationError("payment detail ID is required")
	}
	return newPayment(loanID, &paymentDetailID, PaymentKindScheduled, paymentDate, principal, interest, distribution)
}

func newPayment(loanID uuid.UUID, paymentDetailID *uuid.UUID, kind PaymentKind,
	paymentDate time.Time, principal, interest valueobject.Money,
	distribution AmountPies) (*Payment, error) {

	if loanID == uuid.Nil {
		return nil, shared.NewValidationError("loan ID is required")
	}
	if principal.IsNegative() {
		return nil, shared.NewValidationError("payment principal cannot be negative")
	}
	if interest.IsNegative() {
		return nil, shared.NewValidationError("payment interest cannot be negative")
	}
	if principal.Currency() != interest.Currency() {
		return nil, shared.NewValidationError("principal and interest currencies must match")
	}
	if principal.IsZero() && interest.IsZero() {
		return nil, shared.NewValidationError("payment must carry a positive principal or interest amount")
	}
	if principal.IsPositive() {
		if err := distribution.ValidateAgainst(principal); err != nil {
			return nil, err
		}
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		LoanID:          loanID,
		PaymentDetailID: paymentDetailID,
		Kind:            kind,
		PaymentDate:     paymentDate,
		Principal:       principal,
		Interest:        interest,
		Distribution:    distribution,
	}, nil
}

// Total returns principal + interest
func (p *Payment) Total() valueobject.Money {
	return p.Principal.MustAdd(p.Interest)
}

// Currency returns the payment's settlement currency
func (p *Payment) Currency() valueobject.Currency {
	return p.Principal.Currency()
}

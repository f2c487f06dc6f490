package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RepaymentMethod determines how principal is amortized over the schedule
type RepaymentMethod string

const (
	// RepaymentMethodEqualInstallment keeps each installment's total payment
	// constant; the final installment absorbs all rounding residue.
	RepaymentMethodEqualInstallment RepaymentMethod = "EQUAL_INSTALLMENT"
	// RepaymentMethodBullet pays interest only until the final installment,
	// which additionally repays the full principal.
	RepaymentMethodBullet RepaymentMethod = "BULLET"
)

// IsValid checks if the repayment method is valid
func (m RepaymentMethod) IsValid() bool {
	return m == RepaymentMethodEqualInstallment || m == RepaymentMethodBullet
}

// RepaymentCycle determines the interval between installments
type RepaymentCycle string

const (
	RepaymentCycleMonthly   RepaymentCycle = "MONTHLY"
	RepaymentCycleQuarterly RepaymentCycle = "QUARTERLY"
)

// IsValid checks if the repayment cycle is valid
func (c RepaymentCycle) IsValid() bool {
	return c == RepaymentCycleMonthly || c == RepaymentCycleQuarterly
}

// Months returns the number of months in one cycle
func (c RepaymentCycle) Months() int {
	if c == RepaymentCycleQuarterly {
		return 3
	}
	return 1
}

// PaymentDetail is one scheduled installment of a loan's amortization
// schedule: due date, scheduled principal and interest, and the outstanding
// balance remaining after the installment is paid.
type PaymentDetail struct {
	ID            uuid.UUID         `json:"id"`
	LoanID        uuid.UUID         `json:"loan_id"`
	PaymentNumber int               `json:"payment_number"`
	DueDate       time.Time         `json:"due_date"`
	Principal     valueobject.Money `json:"principal"`
	Interest      valueobject.Money `json:"interest"`
	Outstanding   valueobject.Money `json:"outstanding"`
	Paid          bool              `json:"paid"`
}

// TotalPayment returns the installment total (principal + interest)
func (d PaymentDetail) TotalPayment() valueobject.Money {
	return d.Principal.MustAdd(d.Interest)
}

// ScheduleSpec are the inputs to schedule generation
type ScheduleSpec struct {
	Principal       valueobject.Money
	AnnualRate      valueobject.Percentage
	DrawdownDate    time.Time
	RepaymentMonths int
	Cycle           RepaymentCycle
	Method          RepaymentMethod
}

// GenerateSchedule produces the ordered, finite amortization schedule for a
// loan. It is a pure function of its inputs: the same spec always yields the
// same materialized schedule. The sum of scheduled principal across all
// installments equals the original principal exactly, and the final
// installment's outstanding-after is exactly zero.
func GenerateSchedule(spec ScheduleSpec) ([]PaymentDetail, error) {
	if !spec.Principal.IsPositive() {
		return nil, shared.NewValidationError("schedule principal must be positive")
	}
	if !spec.Method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid repayment method: %s", spec.Method))
	}
	if !spec.Cycle.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid repayment cycle: %s", spec.Cycle))
	}
	if spec.RepaymentMonths <= 0 {
		return nil, shared.NewValidationError("repayment period must be at least one month")
	}
	cycleMonths := spec.Cycle.Months()
	if spec.RepaymentMonths%cycleMonths != 0 {
		return nil, shared.NewValidationError(
			fmt.Sprintf("repayment period of %d months does not divide into %s cycles", spec.RepaymentMonths, spec.Cycle))
	}

	periods := spec.RepaymentMonths / cycleMonths
	// periodic rate as a fraction, e.g. 12% annual monthly -> 0.01
	periodicRate := spec.AnnualRate.Decimal().
		Mul(decimal.NewFromInt(int64(cycleMonths))).
		Div(decimal.NewFromInt(12)).
		Div(oneHundred)

	switch spec.Method {
	case RepaymentMethodBullet:
		return generateBulletSchedule(spec, periods, cycleMonths, periodicRate)
	default:
		return generateEqualInstallmentSchedule(spec, periods, cycleMonths, periodicRate)
	}
}

// generateEqualInstallmentSchedule builds an annuity schedule: constant
// installment total, interest on the declining balance, principal as the
// difference. The final installment's principal is forced to the remaining
// outstanding so the schedule sums exactly.
func generateEqualInstallmentSchedule(spec ScheduleSpec, periods, cycleMonths int, periodicRate decimal.Decimal) ([]PaymentDetail, error) {
	currency := spec.Principal.Currency()
	installment := annuityInstallment(spec.Principal, periods, periodicRate)

	details := make([]PaymentDetail, 0, periods)
	outstanding := spec.Principal

	for n := 1; n <= periods; n++ {
		interest := interestOn(outstanding, periodicRate)

		var principalPart valueobject.Money
		if n == periods {
			// final installment absorbs all rounding residue
			principalPart = outstanding
		} else {
			var err error
			principalPart, err = installment.Subtract(interest)
			if err != nil {
				return nil, err
			}
			if principalPart.IsNegative() {
				principalPart = valueobject.Zero(currency)
			}
			if greater, _ := principalPart.GreaterThan(outstanding); greater {
				principalPart = outstanding
			}
		}

		outstanding = outstanding.MustSubtract(principalPart)
		details = append(details, PaymentDetail{
			ID:            uuid.New(),
			PaymentNumber: n,
			DueDate:       spec.DrawdownDate.AddDate(0, cycleMonths*n, 0),
			Principal:     principalPart,
			Interest:      interest,
			Outstanding:   outstanding,
		})
	}

	return details, nil
}

// generateBulletSchedule builds an interest-only schedule whose final
// installment repays the full principal.
func generateBulletSchedule(spec ScheduleSpec, periods, cycleMonths int, periodicRate decimal.Decimal) ([]PaymentDetail, error) {
	currency := spec.Principal.Currency()
	interest := interestOn(spec.Principal, periodicRate)

	details := make([]PaymentDetail, 0, periods)
	for n := 1; n <= periods; n++ {
		principalPart := valueobject.Zero(currency)
		outstanding := spec.Principal
		if n == periods {
			principalPart = spec.Principal
			outstanding = valueobject.Zero(currency)
		}
		details = append(details, PaymentDetail{
			ID:            uuid.New(),
			PaymentNumber: n,
			DueDate:       spec.DrawdownDate.AddDate(0, cycleMonths*n, 0),
			Principal:     principalPart,
			Interest:      interest,
			Outstanding:   outstanding,
		})
	}

	return details, nil
}

// annuityInstallment computes the constant installment total
// P * r * (1+r)^n / ((1+r)^n - 1), rounded half-up to the minor unit.
// A zero rate degenerates to straight-line principal.
func annuityInstallment(principal valueobject.Money, periods int, periodicRate decimal.Decimal) valueobject.Money {
	currency := principal.Currency()
	n := decimal.NewFromInt(int64(periods))

	if periodicRate.IsZero() {
		flat := principal.Amount().Div(n).Round(currency.MinorUnitPlaces())
		m, _ := valueobject.NewMoney(flat, currency)
		return m
	}

	compound := decimal.NewFromInt(1).Add(periodicRate).Pow(n)
	raw := principal.Amount().
		Mul(periodicRate).
		Mul(compound).
		Div(compound.Sub(decimal.NewFromInt(1)))
	m, _ := valueobject.NewMoney(raw.Round(currency.MinorUnitPlaces()), currency)
	return m
}

// interestOn computes one period's interest on the outstanding balance,
// rounded half-up to the minor unit.
func interestOn(outstanding valueobject.Money, periodicRate decimal.Decimal) valueobject.Money {
	currency := outstanding.Currency()
	raw := outstanding.Amount().Mul(periodicRate)
	m, _ := valueobject.NewMoney(raw.Round(currency.MinorUnitPlaces()), currency)
	return m
}

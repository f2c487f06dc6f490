package lending

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoan(t *testing.T, principal valueobject.Money) *Loan {
	t.Helper()
	l, err := NewLoan(
		uuid.New(), uuid.New(), uuid.New(),
		principal,
		mustPct(t, "12"),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		12,
		RepaymentCycleMonthly,
		RepaymentMethodEqualInstallment,
		testSharePies(t),
	)
	require.NoError(t, err)
	return l
}

func TestNewLoan(t *testing.T) {
	principal := valueobject.NewMoneyJPYFromInt(120000)
	l := newTestLoan(t, principal)

	assert.Equal(t, LoanStatusDraft, l.Status)
	assert.True(t, l.Outstanding.Equals(principal))
	require.Len(t, l.Schedule, 12)
	for _, d := range l.Schedule {
		assert.Equal(t, l.ID, d.LoanID)
		assert.False(t, d.Paid)
	}

	// schedule principal sums exactly to the loan principal
	assert.True(t, sumPrincipal(t, l.Schedule, valueobject.JPY).Equals(principal))
}

func TestLoan_FirstPaymentActivates(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))

	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(10000)))
	assert.Equal(t, LoanStatusActive, l.Status)
	assert.True(t, l.Outstanding.Equals(valueobject.NewMoneyJPYFromInt(110000)))
}

func TestLoan_TwelvePaymentsComplete(t *testing.T) {
	// paying every scheduled principal in order leaves exactly zero
	// outstanding after the 12th payment, and completes the loan then
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))

	for i, d := range l.Schedule {
		require.NoError(t, l.ApplyPayment(d.Principal), "installment %d", i+1)
		require.NoError(t, l.MarkScheduleEntryPaid(d.PaymentNumber))

		if i < len(l.Schedule)-1 {
			assert.Equal(t, LoanStatusActive, l.Status)
			assert.False(t, l.Outstanding.IsZero())
		}
	}

	assert.Equal(t, LoanStatusCompleted, l.Status)
	assert.True(t, l.Outstanding.IsZero())

	_, unpaid := l.NextUnpaidInstallment()
	assert.False(t, unpaid)
}

func TestLoan_OverdrawRejectedWhole(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(100000)))

	before := l.Outstanding
	err := l.ApplyPayment(valueobject.NewMoneyJPYFromInt(20001))
	require.Error(t, err)
	assert.Equal(t, shared.CodeExceedsOutstanding, shared.CodeOf(err))
	// no partial application
	assert.True(t, l.Outstanding.Equals(before))
	assert.Equal(t, LoanStatusActive, l.Status)
}

func TestLoan_CompletedRejectsPayments(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(1000))
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(1000)))
	require.Equal(t, LoanStatusCompleted, l.Status)

	err := l.ApplyPayment(valueobject.NewMoneyJPYFromInt(1))
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))
}

func TestLoan_OverdueAndResolution(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(100)))

	// nothing past due yet
	beforeDue := l.Schedule[0].DueDate.AddDate(0, 0, -1)
	require.Error(t, l.MarkOverdue(beforeDue))
	assert.Equal(t, LoanStatusActive, l.Status)

	pastDue := l.Schedule[0].DueDate.AddDate(0, 0, 1)
	require.NoError(t, l.MarkOverdue(pastDue))
	assert.Equal(t, LoanStatusOverdue, l.Status)

	// idempotent
	require.NoError(t, l.MarkOverdue(pastDue))

	// a payment on an OVERDUE loan resolves it back to ACTIVE
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(10000)))
	assert.Equal(t, LoanStatusActive, l.Status)
}

func TestLoan_ResolutionIsProvisionalUntilInstallmentSettled(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(100)))

	pastDue := l.Schedule[0].DueDate.AddDate(0, 0, 1)
	require.NoError(t, l.MarkOverdue(pastDue))

	// an ad-hoc payment resolves the loan but settles no schedule entry,
	// so the next sweep run marks it overdue again
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(500)))
	require.Equal(t, LoanStatusActive, l.Status)

	require.NoError(t, l.MarkOverdue(pastDue))
	assert.Equal(t, LoanStatusOverdue, l.Status)

	// once the past-due installment is settled the sweep finds nothing
	require.NoError(t, l.ApplyPayment(l.Schedule[0].Principal))
	require.NoError(t, l.MarkScheduleEntryPaid(l.Schedule[0].PaymentNumber))
	require.Equal(t, LoanStatusActive, l.Status)

	err := l.MarkOverdue(pastDue)
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))
	assert.Equal(t, LoanStatusActive, l.Status)
}

func TestLoan_MarkOverdueRequiresFirstPayment(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))

	// DRAFT -> OVERDUE is not a defined transition
	pastDue := l.Schedule[0].DueDate.AddDate(0, 0, 1)
	err := l.MarkOverdue(pastDue)
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))
}

func TestLoan_MarkScheduleEntryPaid(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(120000))

	require.NoError(t, l.MarkScheduleEntryPaid(1))
	err := l.MarkScheduleEntryPaid(1)
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))

	assert.ErrorIs(t, l.MarkScheduleEntryPaid(99), shared.ErrNotFound)

	next, ok := l.NextUnpaidInstallment()
	require.True(t, ok)
	assert.Equal(t, 2, next.PaymentNumber)
}

func TestLoanTransitionTable(t *testing.T) {
	events := []LoanLifecycleEvent{
		LoanEventFirstPayment,
		LoanEventPaymentOverdue,
		LoanEventOverdueResolved,
		LoanEventFinalPayment,
	}
	allowed := map[LoanStatus]map[LoanLifecycleEvent]LoanStatus{
		LoanStatusDraft: {
			LoanEventFirstPayment: LoanStatusActive,
		},
		LoanStatusActive: {
			LoanEventPaymentOverdue: LoanStatusOverdue,
			LoanEventFinalPayment:   LoanStatusCompleted,
		},
		LoanStatusOverdue: {
			LoanEventOverdueResolved: LoanStatusActive,
			LoanEventFinalPayment:    LoanStatusCompleted,
		},
		LoanStatusCompleted: {},
	}

	for from, table := range allowed {
		for _, event := range events {
			next, err := nextLoanStatus(from, event)
			if want, ok := table[event]; ok {
				require.NoError(t, err, "%s + %s", from, event)
				assert.Equal(t, want, next)
			} else {
				require.Error(t, err, "%s + %s should be rejected", from, event)
				assert.True(t, shared.IsBusinessRuleViolation(err))
			}
		}
	}
}

func TestLoan_CheckVersion(t *testing.T) {
	l := newTestLoan(t, valueobject.NewMoneyJPYFromInt(1000))

	assert.NoError(t, l.CheckVersion(0))
	require.NoError(t, l.ApplyPayment(valueobject.NewMoneyJPYFromInt(100)))

	err := l.CheckVersion(0)
	require.Error(t, err)
	assert.True(t, shared.IsOptimisticLockConflict(err))
}

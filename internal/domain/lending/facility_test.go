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

func testSharePies(t *testing.T) SharePies {
	t.Helper()
	return SharePies{
		{InvestorID: uuid.New(), Share: mustPct(t, "60")},
		{InvestorID: uuid.New(), Share: mustPct(t, "40")},
	}
}

func testInterestTerms(t *testing.T) InterestTerms {
	t.Helper()
	return InterestTerms{
		AnnualRate:  mustPct(t, "2.5"),
		PenaltyRate: mustPct(t, "14"),
	}
}

func newTestFacility(t *testing.T) *Facility {
	t.Helper()
	f, err := NewFacility(
		uuid.New(),
		valueobject.NewMoneyJPYFromInt(1000000),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2029, 3, 31, 0, 0, 0, 0, time.UTC),
		testInterestTerms(t),
		testSharePies(t),
	)
	require.NoError(t, err)
	return f
}

func TestNewFacility(t *testing.T) {
	f := newTestFacility(t)

	assert.Equal(t, FacilityStatusDraft, f.Status)
	assert.Equal(t, 0, f.Version)
	assert.Equal(t, valueobject.JPY, f.Currency())
	assert.Len(t, f.GetDomainEvents(), 1)
}

func TestNewFacility_Rejections(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2029, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		run  func(t *testing.T) error
	}{
		{"nil syndicate", func(t *testing.T) error {
			_, err := NewFacility(uuid.Nil, valueobject.NewMoneyJPYFromInt(1000), start, end, testInterestTerms(t), testSharePies(t))
			return err
		}},
		{"zero commitment", func(t *testing.T) error {
			_, err := NewFacility(uuid.New(), valueobject.ZeroJPY(), start, end, testInterestTerms(t), testSharePies(t))
			return err
		}},
		{"end before start", func(t *testing.T) error {
			_, err := NewFacility(uuid.New(), valueobject.NewMoneyJPYFromInt(1000), end, start, testInterestTerms(t), testSharePies(t))
			return err
		}},
		{"shares not summing to 100", func(t *testing.T) error {
			pies := SharePies{{InvestorID: uuid.New(), Share: mustPct(t, "99")}}
			_, err := NewFacility(uuid.New(), valueobject.NewMoneyJPYFromInt(1000), start, end, testInterestTerms(t), pies)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.run(t))
		})
	}
}

func TestFacility_DrawdownActivates(t *testing.T) {
	f := newTestFacility(t)

	require.NoError(t, f.MarkDrawdownExecuted())
	assert.Equal(t, FacilityStatusActive, f.Status)
	assert.Equal(t, 1, f.Version)

	// a second drawdown against the same facility is rejected
	err := f.MarkDrawdownExecuted()
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))
	assert.Equal(t, FacilityStatusActive, f.Status)
}

func TestFacility_RevertToDraft(t *testing.T) {
	f := newTestFacility(t)
	require.NoError(t, f.MarkDrawdownExecuted())

	// guard: drawdowns still attached
	err := f.RevertToDraft(2)
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))
	assert.Equal(t, FacilityStatusActive, f.Status)

	require.NoError(t, f.RevertToDraft(0))
	assert.Equal(t, FacilityStatusDraft, f.Status)

	// reverting a DRAFT facility is undefined
	assert.Error(t, f.RevertToDraft(0))
}

func TestFacility_Complete(t *testing.T) {
	f := newTestFacility(t)

	// completing a DRAFT facility is undefined
	require.Error(t, f.Complete(0))

	require.NoError(t, f.MarkDrawdownExecuted())

	err := f.Complete(1)
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRuleViolation(err))

	require.NoError(t, f.Complete(0))
	assert.Equal(t, FacilityStatusCompleted, f.Status)
	assert.True(t, f.Status.IsTerminal())

	// terminal: nothing further is accepted
	assert.Error(t, f.MarkDrawdownExecuted())
	assert.Error(t, f.RevertToDraft(0))
}

func TestFacility_UpdateStructure(t *testing.T) {
	f := newTestFacility(t)
	newPies := SharePies{{InvestorID: uuid.New(), Share: mustPct(t, "100")}}
	newCommitment := valueobject.NewMoneyJPYFromInt(2000000)
	newEnd := f.EndDate.AddDate(1, 0, 0)

	require.NoError(t, f.UpdateStructure(newCommitment, f.StartDate, newEnd, testInterestTerms(t), newPies))
	assert.True(t, f.Commitment.Equals(newCommitment))
	assert.Len(t, f.SharePies, 1)

	// once ACTIVE the structure is frozen
	require.NoError(t, f.MarkDrawdownExecuted())
	err := f.UpdateStructure(newCommitment, f.StartDate, newEnd, testInterestTerms(t), newPies)
	require.Error(t, err)
	assert.Equal(t, shared.CodeImmutableField, shared.CodeOf(err))
}

func TestFacility_CheckVersion(t *testing.T) {
	f := newTestFacility(t)

	assert.NoError(t, f.CheckVersion(0))

	require.NoError(t, f.MarkDrawdownExecuted())
	err := f.CheckVersion(0)
	require.Error(t, err)
	assert.True(t, shared.IsOptimisticLockConflict(err))
	assert.NoError(t, f.CheckVersion(1))
}

func TestFacilityTransitionTable(t *testing.T) {
	events := []FacilityLifecycleEvent{
		FacilityEventDrawdownExecuted,
		FacilityEventRevertToDraft,
		FacilityEventAllLoansRepaid,
	}
	allowed := map[FacilityStatus]map[FacilityLifecycleEvent]FacilityStatus{
		FacilityStatusDraft: {
			FacilityEventDrawdownExecuted: FacilityStatusActive,
		},
		FacilityStatusActive: {
			FacilityEventRevertToDraft:  FacilityStatusDraft,
			FacilityEventAllLoansRepaid: FacilityStatusCompleted,
		},
		FacilityStatusCompleted: {},
	}

	for from, table := range allowed {
		for _, event := range events {
			next, err := nextFacilityStatus(from, event)
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

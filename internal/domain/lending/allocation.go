package lending

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// AllocateByShares splits a total amount across investors proportionally to
// their percentage shares, producing amount pies that sum to exactly the
// total. It is a pure function.
//
// Each raw allocation is the share of the total truncated to the currency's
// minor unit. The residual minor units (total minus the truncated sum) are
// then handed out one unit at a time to the entries with the largest
// truncation remainder, ties broken by ascending investor ID. The result
// deviates from exact proportionality by at most one minor unit per investor.
func AllocateByShares(total valueobject.Money, pies SharePies) (AmountPies, error) {
	if !total.IsPositive() {
		return nil, shared.NewAllocationError(fmt.Sprintf("allocation total must be positive, got %s", total))
	}
	if len(pies) == 0 {
		return nil, shared.NewAllocationError("cannot allocate across zero investors")
	}

	shares := make([]valueobject.Percentage, len(pies))
	for i, pie := range pies {
		shares[i] = pie.Share
	}
	if sum := valueobject.SumPercentages(shares); !sum.Equal(valueobject.FullShare().Decimal()) {
		return nil, shared.NewAllocationError(fmt.Sprintf("shares must sum to exactly 100%%, got %s%%", sum))
	}

	weights := make([]decimal.Decimal, len(pies))
	for i, pie := range pies {
		weights[i] = total.Amount().Mul(pie.Share.Decimal()).Div(oneHundred)
	}

	return distribute(total, pies.InvestorIDs(), weights)
}

// DistributeByAmountPies splits an amount across investors proportionally to
// their existing amount-pie weights. Used when a principal repayment is
// distributed back to the investors who funded the originating drawdown.
// The same largest-remainder rule as AllocateByShares applies, so the
// distributed sum is exact.
func DistributeByAmountPies(amount valueobject.Money, pies AmountPies) (AmountPies, error) {
	if !amount.IsPositive() {
		return nil, shared.NewAllocationError(fmt.Sprintf("distribution amount must be positive, got %s", amount))
	}
	if len(pies) == 0 {
		return nil, shared.NewAllocationError("cannot distribute across zero investors")
	}

	total, err := pies.Total(amount.Currency())
	if err != nil {
		return nil, shared.NewAllocationError(err.Error())
	}
	if !total.IsPositive() {
		return nil, shared.NewAllocationError("amount pies total must be positive")
	}

	ids := make([]uuid.UUID, len(pies))
	weights := make([]decimal.Decimal, len(pies))
	for i, pie := range pies {
		ids[i] = pie.InvestorID
		weights[i] = amount.Amount().Mul(pie.Amount.Amount()).Div(total.Amount())
	}

	return distribute(amount, ids, weights)
}

// distribute assigns exact decimal weights to whole minor units of the total:
// truncate each weight, then hand the residual minor units to the largest
// remainders, ascending key on ties.
func distribute(total valueobject.Money, keys []uuid.UUID, weights []decimal.Decimal) (AmountPies, error) {
	places := total.Currency().MinorUnitPlaces()

	allocated := make(AmountPies, len(keys))
	remainders := make([]decimal.Decimal, len(keys))
	order := make([]int, len(keys))
	residualUnits := total.MinorUnits()

	for i := range keys {
		truncatedDec := weights[i].Truncate(places)
		truncated, err := valueobject.NewMoney(truncatedDec, total.Currency())
		if err != nil {
			return nil, shared.NewAllocationError(err.Error())
		}
		allocated[i] = AmountPie{InvestorID: keys[i], Amount: truncated}
		remainders[i] = weights[i].Sub(truncatedDec)
		order[i] = i
		residualUnits -= truncated.MinorUnits()
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := remainders[order[a]], remainders[order[b]]
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return keys[order[a]].String() < keys[order[b]].String()
	})

	one := total.OneMinorUnit()
	for u := int64(0); u < residualUnits; u++ {
		idx := order[u%int64(len(order))]
		allocated[idx].Amount = allocated[idx].Amount.MustAdd(one)
	}

	// The construction guarantees exactness; recompute as a hard check so a
	// violated sum can never leave this function unnoticed.
	sum, err := allocated.Total(total.Currency())
	if err != nil {
		return nil, shared.NewAllocationError(err.Error())
	}
	if !sum.Equals(total) {
		return nil, shared.NewAllocationError(fmt.Sprintf("allocation produced %s, expected exactly %s", sum, total))
	}
	return allocated, nil
}

package lending

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// SharePie is one investor's percentage ownership of a facility's commitment
type SharePie struct {
	InvestorID uuid.UUID              `json:"investor_id"`
	Share      valueobject.Percentage `json:"share"`
}

// SharePies is the full ownership split of a facility. A valid split is
// non-empty, has no duplicate investors, and its shares sum to exactly 100%.
type SharePies []SharePie

// Validate checks the share-pie invariant
func (p SharePies) Validate() error {
	if len(p) == 0 {
		return shared.NewBusinessRuleViolation("facility must have at least one share pie")
	}

	seen := make(map[uuid.UUID]struct{}, len(p))
	shares := make([]valueobject.Percentage, 0, len(p))
	for _, pie := range p {
		if pie.InvestorID == uuid.Nil {
			return shared.NewBusinessRuleViolation("share pie investor ID cannot be empty")
		}
		if _, dup := seen[pie.InvestorID]; dup {
			return shared.NewBusinessRuleViolation(fmt.Sprintf("duplicate investor %s in share pies", pie.InvestorID))
		}
		seen[pie.InvestorID] = struct{}{}
		shares = append(shares, pie.Share)
	}

	if sum := valueobject.SumPercentages(shares); !sum.Equal(valueobject.FullShare().Decimal()) {
		return shared.NewBusinessRuleViolation(fmt.Sprintf("share pies must sum to exactly 100%%, got %s%%", sum))
	}
	return nil
}

// Value implements driver.Valuer for JSONB storage
func (p SharePies) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *SharePies) Scan(value any) error {
	return scanJSONB(value, p, "SharePies")
}

// InvestorIDs returns the investor IDs in pie order
func (p SharePies) InvestorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p))
	for i, pie := range p {
		ids[i] = pie.InvestorID
	}
	return ids
}

// AmountPie is one investor's realized cash share of a drawdown
type AmountPie struct {
	InvestorID uuid.UUID         `json:"investor_id"`
	Amount     valueobject.Money `json:"amount"`
}

// AmountPies is the full cash split of one drawdown. Its amounts sum to
// exactly the drawdown amount - no leftover, no overage.
type AmountPies []AmountPie

// Value implements driver.Valuer for JSONB storage
func (p AmountPies) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *AmountPies) Scan(value any) error {
	return scanJSONB(value, p, "AmountPies")
}

func scanJSONB(value, dest any, typeName string) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan " + typeName + ": unsupported type")
	}

	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dest)
}

// Total sums all pie amounts in the given currency. An empty pie set totals
// to zero in that currency.
func (p AmountPies) Total(currency valueobject.Currency) (valueobject.Money, error) {
	total := valueobject.Zero(currency)
	for _, pie := range p {
		var err error
		total, err = total.Add(pie.Amount)
		if err != nil {
			return valueobject.Money{}, err
		}
	}
	return total, nil
}

// ValidateAgainst checks that the pies sum to exactly the expected total.
// Used for caller-supplied override allocations.
func (p AmountPies) ValidateAgainst(total valueobject.Money) error {
	if len(p) == 0 {
		return shared.NewAllocationError("amount pies cannot be empty")
	}

	seen := make(map[uuid.UUID]struct{}, len(p))
	for _, pie := range p {
		if pie.InvestorID == uuid.Nil {
			return shared.NewAllocationError("amount pie investor ID cannot be empty")
		}
		if _, dup := seen[pie.InvestorID]; dup {
			return shared.NewAllocationError(fmt.Sprintf("duplicate investor %s in amount pies", pie.InvestorID))
		}
		seen[pie.InvestorID] = struct{}{}
		if pie.Amount.IsNegative() {
			return shared.NewAllocationError(fmt.Sprintf("amount pie for investor %s is negative", pie.InvestorID))
		}
	}

	sum, err := p.Total(total.Currency())
	if err != nil {
		return shared.NewAllocationError(err.Error())
	}
	if !sum.Equals(total) {
		return shared.NewAllocationError(fmt.Sprintf("amount pies sum to %s, expected exactly %s", sum, total))
	}
	return nil
}

// AmountFor returns the pie amount for the given investor, or false when the
// investor holds no share of the drawdown.
func (p AmountPies) AmountFor(investorID uuid.UUID) (valueobject.Money, bool) {
	for _, pie := range p {
		if pie.InvestorID == investorID {
			return pie.Amount, true
		}
	}
	return valueobject.Money{}, false
}

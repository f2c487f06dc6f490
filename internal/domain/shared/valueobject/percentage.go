package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// hundred is the full share total every ownership split must reach exactly
var hundred = decimal.NewFromInt(100)

// Percentage is an immutable value object representing an exact percentage
// in the closed range [0, 100]. Ownership shares are expressed with it, and
// share sets are only valid when their percentages sum to exactly 100.
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage creates a Percentage, rejecting values outside [0, 100]
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() {
		return Percentage{}, fmt.Errorf("percentage cannot be negative: %s", value)
	}
	if value.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("percentage cannot exceed 100: %s", value)
	}
	return Percentage{value: value}, nil
}

// NewPercentageFromString creates a Percentage from a string representation
func NewPercentageFromString(value string) (Percentage, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Percentage{}, fmt.Errorf("invalid percentage string: %w", err)
	}
	return NewPercentage(d)
}

// NewPercentageFromInt creates a Percentage from an int64
func NewPercentageFromInt(value int64) (Percentage, error) {
	return NewPercentage(decimal.NewFromInt(value))
}

// MustPercentage creates a Percentage, panicking on invalid input.
// Intended for constants and tests.
func MustPercentage(value string) Percentage {
	p, err := NewPercentageFromString(value)
	if err != nil {
		panic(err)
	}
	return p
}

// ZeroPercent returns a zero Percentage
func ZeroPercent() Percentage {
	return Percentage{value: decimal.Zero}
}

// FullShare returns the 100% Percentage
func FullShare() Percentage {
	return Percentage{value: hundred}
}

// Decimal returns the decimal value in [0, 100]
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

// Add returns the sum of both percentages.
// The sum may not exceed 100.
func (p Percentage) Add(other Percentage) (Percentage, error) {
	return NewPercentage(p.value.Add(other.value))
}

// Equals returns true if both percentages are exactly equal
func (p Percentage) Equals(other Percentage) bool {
	return p.value.Equal(other.value)
}

// IsZero returns true if the percentage is exactly zero
func (p Percentage) IsZero() bool {
	return p.value.IsZero()
}

// IsFull returns true if the percentage is exactly 100
func (p Percentage) IsFull() bool {
	return p.value.Equal(hundred)
}

// String returns the percentage as a string, e.g. "33.34%"
func (p Percentage) String() string {
	return p.value.String() + "%"
}

// MarshalJSON implements json.Marshaler
func (p Percentage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Percentage) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid percentage: %w", err)
	}
	parsed, err := NewPercentage(d)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (p Percentage) Value() (driver.Value, error) {
	return p.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *Percentage) Scan(value any) error {
	if value == nil {
		p.value = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Percentage", value)
	}

	d, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	p.value = d
	return nil
}

// SumPercentages adds a list of percentages without the [0,100] cap on the
// intermediate results, returning the raw total. Used by share validation,
// which must see an over-100 sum to report it.
func SumPercentages(percentages []Percentage) decimal.Decimal {
	total := decimal.Zero
	for _, p := range percentages {
		total = total.Add(p.value)
	}
	return total
}

package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	JPY Currency = "JPY" // Japanese Yen (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	CNY Currency = "CNY" // Chinese Yuan
	HKD Currency = "HKD" // Hong Kong Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = JPY

// minorUnitPlaces maps each supported currency to its number of minor-unit
// decimal places. Allocation exactness depends on every rounding operation
// using these places consistently.
var minorUnitPlaces = map[Currency]int32{
	JPY: 0,
	USD: 2,
	EUR: 2,
	GBP: 2,
	CNY: 2,
	HKD: 2,
}

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	_, ok := minorUnitPlaces[c]
	return ok
}

// MinorUnitPlaces returns the number of decimal places of the currency's
// minor unit (0 for JPY, 2 for USD)
func (c Currency) MinorUnitPlaces() int32 {
	places, ok := minorUnitPlaces[c]
	if !ok {
		return 2
	}
	return places
}

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
// Arithmetic is exact decimal; binary floating point is never used.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("unsupported currency: %s", currency)
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromInt creates Money from an int64 value
func NewMoneyFromInt(amount int64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount), currency)
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyJPY creates Money in JPY (Japanese Yen)
func NewMoneyJPY(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: JPY}
}

// NewMoneyJPYFromInt creates Money in JPY from int64
func NewMoneyJPYFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: JPY}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroJPY returns a zero-value Money in JPY
func ZeroJPY() Money {
	return Zero(JPY)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts.
// Returns error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference.
// Returns error if currencies don't match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Sub(other.amount),
		currency: m.currency,
	}, nil
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply returns a new Money multiplied by the given factor.
// The result is not rounded; callers settle to the minor unit explicitly.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(factor),
		currency: m.currency,
	}
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{
		amount:   m.amount.Neg(),
		currency: m.currency,
	}
}

// Abs returns a new Money with the absolute value
func (m Money) Abs() Money {
	return Money{
		amount:   m.amount.Abs(),
		currency: m.currency,
	}
}

// ScaleByPercentage returns percent of this Money rounded half-up to the
// currency's minor unit. This is the single rounding rule used everywhere
// interest or shares are computed.
func (m Money) ScaleByPercentage(percent Percentage) Money {
	scaled := m.amount.Mul(percent.Decimal()).Div(decimal.NewFromInt(100))
	return Money{
		amount:   scaled.Round(m.currency.MinorUnitPlaces()),
		currency: m.currency,
	}
}

// ScaleByPercentageTruncated returns percent of this Money truncated to the
// currency's minor unit. The allocation engine truncates first and then
// distributes the residual minor units so totals stay exact.
func (m Money) ScaleByPercentageTruncated(percent Percentage) Money {
	scaled := m.amount.Mul(percent.Decimal()).Div(decimal.NewFromInt(100))
	return Money{
		amount:   scaled.Truncate(m.currency.MinorUnitPlaces()),
		currency: m.currency,
	}
}

// RoundToMinorUnit returns a new Money rounded half-up to the currency's minor unit
func (m Money) RoundToMinorUnit() Money {
	return Money{
		amount:   m.amount.Round(m.currency.MinorUnitPlaces()),
		currency: m.currency,
	}
}

// TruncateToMinorUnit returns a new Money truncated to the currency's minor unit
func (m Money) TruncateToMinorUnit() Money {
	return Money{
		amount:   m.amount.Truncate(m.currency.MinorUnitPlaces()),
		currency: m.currency,
	}
}

// MinorUnits returns the amount expressed in whole minor units
// (e.g. 12.34 USD -> 1234, 500 JPY -> 500). The amount must already be
// settled to the minor unit; any finer fraction is truncated.
func (m Money) MinorUnits() int64 {
	factor := decimal.New(1, m.currency.MinorUnitPlaces())
	return m.amount.Mul(factor).Truncate(0).IntPart()
}

// OneMinorUnit returns a Money of exactly one minor unit in this currency
func (m Money) OneMinorUnit() Money {
	return Money{
		amount:   decimal.New(1, -m.currency.MinorUnitPlaces()),
		currency: m.currency,
	}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThan returns true if this Money is less than the other.
// Returns error if currencies don't match.
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.LessThan(other.amount), nil
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.GreaterThan(other.amount), nil
}

// GreaterThanOrEqual returns true if this Money is greater than or equal to the other
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.GreaterThanOrEqual(other.amount), nil
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.MinorUnitPlaces()), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Fields are assigned directly
// without going through NewMoney; strict validation belongs to the caller.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the amount only; currency lives in its own column.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner for database retrieval. Only the amount is
// scanned; the currency defaults to DefaultCurrency unless already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = DefaultCurrency
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

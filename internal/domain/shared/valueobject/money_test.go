package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency Currency
		wantErr  bool
	}{
		{"valid JPY", decimal.NewFromInt(1000), JPY, false},
		{"valid USD", decimal.RequireFromString("99.99"), USD, false},
		{"negative amount allowed", decimal.NewFromInt(-50), EUR, false},
		{"empty currency", decimal.NewFromInt(1), Currency(""), true},
		{"unsupported currency", decimal.NewFromInt(1), Currency("XXX"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoney(tt.amount, tt.currency)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, m.Amount().Equal(tt.amount))
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestCurrency_MinorUnitPlaces(t *testing.T) {
	assert.Equal(t, int32(0), JPY.MinorUnitPlaces())
	assert.Equal(t, int32(2), USD.MinorUnitPlaces())
	assert.Equal(t, int32(2), EUR.MinorUnitPlaces())
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyJPYFromInt(600)
	b := NewMoneyJPYFromInt(400)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(NewMoneyJPYFromInt(1000)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(NewMoneyJPYFromInt(200)))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	jpy := NewMoneyJPYFromInt(100)
	usd, err := NewMoneyFromString("100", USD)
	require.NoError(t, err)

	_, err = jpy.Add(usd)
	assert.Error(t, err)

	_, err = jpy.Subtract(usd)
	assert.Error(t, err)

	_, err = jpy.LessThan(usd)
	assert.Error(t, err)

	assert.False(t, jpy.Equals(usd))
}

func TestMoney_ScaleByPercentage(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		curr    Currency
		percent string
		want    string
	}{
		{"60% of 100000 JPY", "100000", JPY, "60", "60000"},
		{"40% of 100000 JPY", "100000", JPY, "40", "40000"},
		{"33.33% of 100.00 USD rounds half-up", "100.00", USD, "33.33", "33.33"},
		{"one third of 100 JPY rounds half-up", "100", JPY, "33.335", "33"},
		{"half minor unit rounds up", "1", USD, "12.5", "0.13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, tt.curr)
			require.NoError(t, err)
			p := MustPercentage(tt.percent)
			got := m.ScaleByPercentage(p)
			want, err := NewMoneyFromString(tt.want, tt.curr)
			require.NoError(t, err)
			assert.True(t, got.Equals(want), "got %s want %s", got, want)
		})
	}
}

func TestMoney_ScaleByPercentageTruncated(t *testing.T) {
	m, err := NewMoneyFromString("100.00", USD)
	require.NoError(t, err)

	// 33.33% of 100.00 is exactly 33.33; 33.335% truncates the residual cent fraction
	got := m.ScaleByPercentageTruncated(MustPercentage("33.335"))
	want, _ := NewMoneyFromString("33.33", USD)
	assert.True(t, got.Equals(want))
}

func TestMoney_MinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		curr   Currency
		want   int64
	}{
		{"12.34", USD, 1234},
		{"0.01", USD, 1},
		{"500", JPY, 500},
		{"100000", JPY, 100000},
	}

	for _, tt := range tests {
		m, err := NewMoneyFromString(tt.amount, tt.curr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.MinorUnits())
	}
}

func TestMoney_OneMinorUnit(t *testing.T) {
	usd, _ := NewMoneyFromString("10", USD)
	oneCent := usd.OneMinorUnit()
	assert.Equal(t, "0.01 USD", oneCent.String())

	jpy := NewMoneyJPYFromInt(10)
	oneYen := jpy.OneMinorUnit()
	assert.True(t, oneYen.Equals(NewMoneyJPYFromInt(1)))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m, err := NewMoneyFromString("1234.56", USD)
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("1500"))
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(1500)))

	var nilMoney Money
	require.NoError(t, nilMoney.Scan(nil))
	assert.True(t, nilMoney.IsZero())

	var bad Money
	assert.Error(t, bad.Scan(42))
}

package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/money"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		currency string
		places   int32
		known    bool
	}{
		{"EUR", 2, true},
		{"USD", 2, true},
		{"JPY", 0, true},
		{"VND", 0, true},
		{"BHD", 3, true},
		{"KWD", 3, true},
		{"XXX", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			places, known := money.MinorUnits(tt.currency)
			assert.Equal(t, tt.places, places)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestKnownCurrency(t *testing.T) {
	assert.True(t, money.KnownCurrency("EUR"))
	assert.False(t, money.KnownCurrency("eur"))
	assert.False(t, money.KnownCurrency("ABC"))
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"2.675", "2.68"},
		{"2.665", "2.67"},
		{"-2.675", "-2.68"},
		{"2.674", "2.67"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d := money.Round(decimal.RequireFromString(tt.in), 2, money.RoundHalfAwayFromZero)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, d.String())
		})
	}
}

func TestRound_HalfEven(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"2.675", "2.68"},
		{"2.665", "2.66"},
		{"2.685", "2.68"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d := money.Round(decimal.RequireFromString(tt.in), 2, money.RoundHalfEven)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, d.String())
		})
	}
}

func TestFromString(t *testing.T) {
	d, err := money.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("123456.78")))

	_, err = money.FromString("not-a-number")
	require.Error(t, err)
}

func TestMustFromString(t *testing.T) {
	d := money.MustFromString("999.99")
	assert.True(t, d.Equal(decimal.RequireFromString("999.99")))

	assert.Panics(t, func() {
		money.MustFromString("invalid")
	})
}

func TestSum(t *testing.T) {
	values := []decimal.Decimal{
		decimal.RequireFromString("1.10"),
		decimal.RequireFromString("2.20"),
		decimal.RequireFromString("3.30"),
	}
	assert.True(t, money.Sum(values).Equal(decimal.RequireFromString("6.60")))
	assert.True(t, money.Sum(nil).IsZero())
}

func TestWithinTolerance(t *testing.T) {
	a := decimal.RequireFromString("100.00")

	assert.True(t, money.WithinTolerance(a, decimal.RequireFromString("100.00"), 2))
	assert.True(t, money.WithinTolerance(a, decimal.RequireFromString("100.01"), 2))
	assert.True(t, money.WithinTolerance(a, decimal.RequireFromString("99.99"), 2))
	assert.False(t, money.WithinTolerance(a, decimal.RequireFromString("100.02"), 2))

	// Zero-decimal currencies tolerate a whole unit.
	assert.True(t, money.WithinTolerance(decimal.NewFromInt(1000), decimal.NewFromInt(1001), 0))
	assert.False(t, money.WithinTolerance(decimal.NewFromInt(1000), decimal.NewFromInt(1002), 0))
}

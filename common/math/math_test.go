package math

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalCompoundAnnualGrowthRate(t *testing.T) {
	t.Parallel()
	_, err := DecimalCompoundAnnualGrowthRate(decimal.Zero, decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, errZeroValue)
	_, err = DecimalCompoundAnnualGrowthRate(decimal.NewFromInt(-1), decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, errNegativeValue)
	_, err = DecimalCompoundAnnualGrowthRate(decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, errNonPositiveInterval)

	cagr, err := DecimalCompoundAnnualGrowthRate(decimal.NewFromInt(100), decimal.NewFromInt(121), decimal.NewFromInt(1), decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cagr.InexactFloat64(), 1e-9)

	cagr, err = DecimalCompoundAnnualGrowthRate(decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.NewFromInt(365), decimal.NewFromInt(365))
	require.NoError(t, err)
	assert.InDelta(t, -0.5, cagr.InexactFloat64(), 1e-9)
}

func TestDecimalPercentageGainOrLoss(t *testing.T) {
	t.Parallel()
	_, err := DecimalPercentageGainOrLoss(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, errZeroValue)
	r, err := DecimalPercentageGainOrLoss(decimal.NewFromInt(110), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.RequireFromString("0.1")))
}

func TestDecimalArithmeticAverage(t *testing.T) {
	t.Parallel()
	_, err := DecimalArithmeticAverage(nil)
	assert.ErrorIs(t, err, errNoValues)
	avg, err := DecimalArithmeticAverage([]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(6)})
	require.NoError(t, err)
	assert.True(t, avg.Equal(decimal.NewFromInt(3)))
}

func TestDecimalRunningMaximum(t *testing.T) {
	t.Parallel()
	in := []decimal.Decimal{decimal.NewFromInt(5), decimal.NewFromInt(3), decimal.NewFromInt(7), decimal.NewFromInt(6)}
	expected := []int64{5, 5, 7, 7}
	got := DecimalRunningMaximum(in)
	require.Len(t, got, len(expected))
	for i := range expected {
		assert.Truef(t, got[i].Equal(decimal.NewFromInt(expected[i])), "index %d", i)
	}
	assert.Empty(t, DecimalRunningMaximum(nil))
}

func TestDecimalMinimum(t *testing.T) {
	t.Parallel()
	_, _, err := DecimalMinimum(nil)
	assert.ErrorIs(t, err, errNoValues)
	v, idx, err := DecimalMinimum([]decimal.Decimal{decimal.NewFromInt(2), decimal.NewFromInt(-4), decimal.NewFromInt(-4)})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.True(t, v.Equal(decimal.NewFromInt(-4)))
}

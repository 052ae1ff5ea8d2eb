package math

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	errZeroValue           = errors.New("cannot calculate with zero value")
	errNegativeValue       = errors.New("received negative number")
	errNoValues            = errors.New("no values")
	errNonPositiveInterval = errors.New("number of intervals must be positive")
)

// DecimalCompoundAnnualGrowthRate calculates CAGR as a ratio.
// Using years, intervals per year would be 1 and number of intervals would be the number of years
// Using days, intervals per year would be 365 and number of intervals would be the number of days
func DecimalCompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals decimal.Decimal) (decimal.Decimal, error) {
	if openValue.IsZero() {
		return decimal.Zero, fmt.Errorf("%w open value", errZeroValue)
	}
	if openValue.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w open value %v", errNegativeValue, openValue)
	}
	if numberOfIntervals.LessThanOrEqual(decimal.Zero) || intervalsPerYear.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errNonPositiveInterval
	}
	growth := closeValue.Div(openValue)
	if growth.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w close value %v", errNegativeValue, closeValue)
	}
	exp := intervalsPerYear.Div(numberOfIntervals).InexactFloat64()
	k := math.Pow(growth.InexactFloat64(), exp)
	if math.IsInf(k, 0) || math.IsNaN(k) {
		return decimal.Zero, fmt.Errorf("cagr %v out of range", k)
	}
	return decimal.NewFromFloat(k).Sub(decimal.NewFromInt(1)), nil
}

// DecimalPercentageGainOrLoss returns the ratio rise over a certain period
func DecimalPercentageGainOrLoss(priceNow, priceThen decimal.Decimal) (decimal.Decimal, error) {
	if priceThen.IsZero() {
		return decimal.Zero, errZeroValue
	}
	return priceNow.Sub(priceThen).Div(priceThen), nil
}

// DecimalArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func DecimalArithmeticAverage(values []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, errNoValues
	}
	return decimal.Sum(decimal.Zero, values...).Div(decimal.NewFromInt(int64(len(values)))), nil
}

// DecimalRunningMaximum returns the running maximum of values up to and
// including each index
func DecimalRunningMaximum(values []decimal.Decimal) []decimal.Decimal {
	resp := make([]decimal.Decimal, len(values))
	for i := range values {
		if i == 0 || values[i].GreaterThan(resp[i-1]) {
			resp[i] = values[i]
			continue
		}
		resp[i] = resp[i-1]
	}
	return resp
}

// DecimalMinimum returns the smallest value and its index
func DecimalMinimum(values []decimal.Decimal) (decimal.Decimal, int, error) {
	if len(values) == 0 {
		return decimal.Zero, -1, errNoValues
	}
	lowest, idx := values[0], 0
	for i := 1; i < len(values); i++ {
		if values[i].LessThan(lowest) {
			lowest, idx = values[i], i
		}
	}
	return lowest, idx, nil
}

package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/smacross"
	libcommon "github.com/thrasher-corp/barsim/common"
)

// sweepHolder builds a single symbol which rises, falls then recovers so
// moving average crossovers trade in both directions
func sweepHolder(t *testing.T) *data.Holder {
	t.Helper()
	closes := []float64{
		100, 101, 103, 106, 110, 115, 118, 120, 119, 116,
		112, 107, 103, 100, 98, 97, 99, 102, 106, 111,
		115, 118, 117, 113, 108, 104, 101, 103, 107, 112,
	}
	bars := make([]data.Bar, len(closes))
	for i := range closes {
		open := closes[i] - 0.5
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = bar(i, open, closes[i])
	}
	h, err := data.NewHolder(map[string][]data.Bar{"XYZ": bars})
	require.NoError(t, err)
	return h
}

func sweepConfig() *config.Config {
	return &config.Config{
		StrategySettings: config.StrategySettings{
			Name: smacross.Name,
			CustomSettings: map[string]any{
				"allow-short": true,
			},
		},
		FundingSettings: config.FundingSettings{InitialCash: decimal.NewFromInt(100000)},
		DataSettings: config.DataSettings{
			Interval: "1D",
			CSVData:  &config.CSVData{Path: "in-memory"},
		},
	}
}

func TestSweepLookback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 11, SweepLookback([]float64{2, 5}, []float64{10, 4}))
	assert.Equal(t, 4, SweepLookback([]float64{2.5}, []float64{1}))
	assert.Equal(t, 1, SweepLookback(nil, nil))
}

func TestSweepValidation(t *testing.T) {
	t.Parallel()
	_, err := Sweep(context.Background(), nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	p := &SweepParams{Provider: sweepHolder(t)}
	_, err = Sweep(context.Background(), p)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	p.Config = sweepConfig()
	p.Provider = nil
	_, err = Sweep(context.Background(), p)
	assert.ErrorIs(t, err, errNilProvider)

	p.Provider = sweepHolder(t)
	_, err = Sweep(context.Background(), p)
	assert.ErrorIs(t, err, errSweepNameRequired)

	p.ParameterA = config.SweepParameter{Name: smacross.FastPeriodKey}
	p.ParameterB = config.SweepParameter{Name: smacross.SlowPeriodKey, Values: []float64{5}}
	_, err = Sweep(context.Background(), p)
	assert.ErrorIs(t, err, errNoSweepValues)
}

func TestSweep(t *testing.T) {
	t.Parallel()
	p := &SweepParams{
		Config:     sweepConfig(),
		Provider:   sweepHolder(t),
		ParameterA: config.SweepParameter{Name: smacross.FastPeriodKey, Values: []float64{2, 3}},
		ParameterB: config.SweepParameter{Name: smacross.SlowPeriodKey, Values: []float64{5, 6, 8}},
		Workers:    2,
	}
	tables, err := Sweep(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 9, tables.Lookback)
	for _, table := range [][][]statistics.Metric{tables.MaxDrawdown, tables.CAGR, tables.CAGROverMDD} {
		require.Len(t, table, 2)
		for i := range table {
			assert.Len(t, table[i], 3)
		}
	}
	for i := range tables.MaxDrawdown {
		for j := range tables.MaxDrawdown[i] {
			mdd := tables.MaxDrawdown[i][j]
			require.Truef(t, mdd.Defined, "cell %d,%d: %v", i, j, mdd.Reason)
			assert.False(t, mdd.Value.IsPositive(), "drawdown is never positive")
			assert.True(t, tables.CAGR[i][j].Defined)
		}
	}

	again, err := Sweep(context.Background(), p)
	require.NoError(t, err)
	for i := range tables.CAGR {
		for j := range tables.CAGR[i] {
			assert.True(t, tables.CAGR[i][j].Value.Equal(again.CAGR[i][j].Value), "sweeps are deterministic")
		}
	}

	p.Config.DataSettings.Lookback = 8
	tables, err = Sweep(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 8, tables.Lookback, "a configured lookback is not overridden")
}

func TestSweepCellError(t *testing.T) {
	t.Parallel()
	p := &SweepParams{
		Config:     sweepConfig(),
		Provider:   sweepHolder(t),
		ParameterA: config.SweepParameter{Name: smacross.FastPeriodKey, Values: []float64{2}},
		ParameterB: config.SweepParameter{Name: smacross.SlowPeriodKey, Values: []float64{-1}},
	}
	_, err := Sweep(context.Background(), p)
	assert.Error(t, err, "a negative period is rejected by the strategy")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.ParameterB.Values = []float64{5}
	_, err = Sweep(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

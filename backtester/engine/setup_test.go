package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/smacross"
	libcommon "github.com/thrasher-corp/barsim/common"
)

func writeTestCSV(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("date,symbol,open,high,low,close,volume\n")
	for sym, bars := range testSeries() {
		for i := range bars {
			fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s,%s\n",
				bars[i].Date.Format(libcommon.DateFormat), sym,
				bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close, bars[i].Volume)
		}
	}
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func testConfig(path string) *config.Config {
	return &config.Config{
		Nickname: "unit",
		StrategySettings: config.StrategySettings{
			Name: "buyandhold",
		},
		FundingSettings: config.FundingSettings{InitialCash: initialCash},
		DataSettings: config.DataSettings{
			Interval: "1D",
			CSVData:  &config.CSVData{Path: path},
		},
	}
}

func TestLoadData(t *testing.T) {
	t.Parallel()
	_, err := LoadData(context.Background(), nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	cfg := testConfig(writeTestCSV(t))
	h, err := LoadData(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, h.DateIndex(), 6)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, h.Symbols())

	cfg.DataSettings.StartDate = day(1)
	cfg.DataSettings.EndDate = day(3)
	h, err = LoadData(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, day(1), h.DateIndex()[0])
	assert.Len(t, h.DateIndex(), 3)

	cfg = testConfig(writeTestCSV(t))
	cfg.DataSettings.Interval = "1W"
	h, err = LoadData(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, h.DateIndex(), 1, "every test date falls in one ISO week")
	bars := h.Bars("AAA")
	require.Len(t, bars, 1)
	assert.True(t, bars[0].Open.Equal(decimal.NewFromInt(10)))
	assert.True(t, bars[0].Close.Equal(decimal.NewFromFloat(15.5)))

	cfg.DataSettings.Interval = "4H"
	_, err = LoadData(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrUnsupportedInterval)

	cfg = testConfig(filepath.Join(t.TempDir(), "missing.csv"))
	_, err = LoadData(context.Background(), cfg)
	assert.ErrorIs(t, err, libcommon.ErrFileNotFound)
}

func TestFilterDates(t *testing.T) {
	t.Parallel()
	s := testSeries()
	assert.Equal(t, s, filterDates(s, time.Time{}, time.Time{}), "open bounds return the input")

	resp := filterDates(s, day(4), time.Time{})
	assert.Len(t, resp["AAA"], 2)
	assert.Len(t, resp["CCC"], 2)
	assert.NotContains(t, resp, "BBB", "symbols without bars in range are removed")

	resp = filterDates(s, time.Time{}, day(1))
	assert.Len(t, resp["AAA"], 2)
	assert.Len(t, resp["BBB"], 2)
	assert.NotContains(t, resp, "CCC")
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	_, err := NewFromConfig(nil, nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	h := testHolder(t)
	cfg := testConfig("unused.csv")
	cfg.StrategySettings.Name = "nope"
	_, err = NewFromConfig(cfg, h)
	assert.ErrorIs(t, err, base.ErrStrategyNotFound)

	cfg = testConfig("unused.csv")
	cfg.StrategySettings.CustomSettings = map[string]any{"allocation": 2.0}
	_, err = NewFromConfig(cfg, h)
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)

	cfg = testConfig("unused.csv")
	_, err = NewFromConfig(cfg, nil)
	assert.ErrorIs(t, err, errNilProvider)

	bt, err := NewFromConfig(cfg, h)
	require.NoError(t, err)
	assert.Equal(t, "unit", bt.MetaData.Nickname)
	assert.Equal(t, 1, bt.Scheduler.Lookback())

	cfg = testConfig("unused.csv")
	cfg.StrategySettings.Name = smacross.Name
	cfg.StrategySettings.CustomSettings = map[string]any{
		smacross.FastPeriodKey: 2,
		smacross.SlowPeriodKey: 4,
	}
	bt, err = NewFromConfig(cfg, h)
	require.NoError(t, err)
	assert.Equal(t, 4, bt.Scheduler.Lookback(), "lookback defaults to the strategy requirement")

	cfg.DataSettings.Lookback = 2
	bt, err = NewFromConfig(cfg, h)
	require.NoError(t, err)
	assert.Equal(t, 2, bt.Scheduler.Lookback(), "a configured lookback is used as is")
	require.NoError(t, bt.Run(context.Background()))
}

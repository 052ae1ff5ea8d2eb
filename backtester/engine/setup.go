package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/data/csv"
	datadb "github.com/thrasher-corp/barsim/backtester/data/database"
	"github.com/thrasher-corp/barsim/backtester/data/resample"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// NewFromConfig takes a strategy config and a loaded data provider and
// returns a BackTest ready to Run
func NewFromConfig(cfg *config.Config, provider data.Provider) (*BackTest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w config", libcommon.ErrNilPointer)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newFromSettings(cfg, provider, cfg.StrategySettings.CustomSettings, cfg.DataSettings.Lookback)
}

func newFromSettings(cfg *config.Config, provider data.Provider, custom map[string]any, lookback int) (*BackTest, error) {
	strat, err := strategies.LoadStrategyByName(cfg.StrategySettings.Name)
	if err != nil {
		return nil, err
	}
	if err = strat.SetCustomSettings(custom); err != nil {
		return nil, err
	}
	if lookback == 0 {
		lookback = 1
		if req, ok := strat.(strategies.LookbackRequirer); ok && req.RequiredLookback() > lookback {
			lookback = req.RequiredLookback()
		}
	}
	bt, err := New(provider, strat, cfg.FundingSettings.InitialCash, lookback)
	if err != nil {
		return nil, err
	}
	bt.MetaData.Nickname = cfg.Nickname
	return bt, nil
}

// LoadData reads bars from the configured source, applies the date range
// and resamples to the configured interval
func LoadData(ctx context.Context, cfg *config.Config) (*data.Holder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w config", libcommon.ErrNilPointer)
	}
	interval, err := cfg.Interval()
	if err != nil {
		return nil, err
	}
	var series map[string][]data.Bar
	switch {
	case cfg.DataSettings.CSVData != nil:
		log.Infof(common.SubLoggers[common.Setup], "loading csv data from %v", cfg.DataSettings.CSVData.Path)
		series, err = csv.LoadData(cfg.DataSettings.CSVData.Path)
	case cfg.DataSettings.DatabaseData != nil:
		d := cfg.DataSettings.DatabaseData
		log.Infof(common.SubLoggers[common.Setup], "loading database data from %v table %v", d.Config.Driver, d.Table)
		series, err = datadb.LoadData(ctx, &d.Config, d.DataPath, d.Table)
	default:
		return nil, fmt.Errorf("%w data source", libcommon.ErrNilPointer)
	}
	if err != nil {
		return nil, err
	}
	series = filterDates(series, cfg.DataSettings.StartDate, cfg.DataSettings.EndDate)
	if interval != data.OneDay {
		if series, err = resample.Series(series, interval); err != nil {
			return nil, err
		}
	}
	return data.NewHolder(series)
}

// filterDates keeps bars within [start, end]. Zero bounds are open
func filterDates(series map[string][]data.Bar, start, end time.Time) map[string][]data.Bar {
	if start.IsZero() && end.IsZero() {
		return series
	}
	resp := make(map[string][]data.Bar, len(series))
	for sym, bars := range series {
		var kept []data.Bar
		for i := range bars {
			if !start.IsZero() && bars[i].Date.Before(start) {
				continue
			}
			if !end.IsZero() && bars[i].Date.After(end) {
				continue
			}
			kept = append(kept, bars[i])
		}
		if len(kept) > 0 {
			resp[sym] = kept
		}
	}
	return resp
}

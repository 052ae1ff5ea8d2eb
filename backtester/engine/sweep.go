package engine

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
	"golang.org/x/sync/errgroup"
)

// Sweep runs the strategy once per cell of the two parameter grid. Every
// cell gets its own engine so cells run concurrently, bounded by Workers.
// When the config sets no lookback, the lookback is one more than the
// largest parameter value
func Sweep(ctx context.Context, p *SweepParams) (*SweepTables, error) {
	if p == nil {
		return nil, fmt.Errorf("%w sweep params", libcommon.ErrNilPointer)
	}
	if p.Config == nil {
		return nil, fmt.Errorf("%w config", libcommon.ErrNilPointer)
	}
	if p.Provider == nil {
		return nil, errNilProvider
	}
	for _, param := range []config.SweepParameter{p.ParameterA, p.ParameterB} {
		if param.Name == "" {
			return nil, errSweepNameRequired
		}
		if len(param.Values) == 0 {
			return nil, fmt.Errorf("%w %v", errNoSweepValues, param.Name)
		}
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	lookback := p.Config.DataSettings.Lookback
	if lookback == 0 {
		lookback = SweepLookback(p.ParameterA.Values, p.ParameterB.Values)
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	rows, cols := len(p.ParameterA.Values), len(p.ParameterB.Values)
	tables := &SweepTables{
		ParameterA:  p.ParameterA,
		ParameterB:  p.ParameterB,
		Lookback:    lookback,
		MaxDrawdown: newTable(rows, cols),
		CAGR:        newTable(rows, cols),
		CAGROverMDD: newTable(rows, cols),
	}
	log.Infof(common.SubLoggers[common.Sweep], "sweeping %v x %v = %v cells with %v workers, lookback %v",
		p.ParameterA.Name, p.ParameterB.Name, rows*cols, workers, lookback)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range p.ParameterA.Values {
		for j := range p.ParameterB.Values {
			i, j := i, j
			g.Go(func() error {
				stats, reason, err := p.runCell(gctx, lookback, p.ParameterA.Values[i], p.ParameterB.Values[j])
				if err != nil {
					return fmt.Errorf("%v=%v %v=%v %w",
						p.ParameterA.Name, p.ParameterA.Values[i],
						p.ParameterB.Name, p.ParameterB.Values[j], err)
				}
				if stats == nil {
					undefined := statistics.Metric{Reason: reason}
					tables.MaxDrawdown[i][j] = undefined
					tables.CAGR[i][j] = undefined
					tables.CAGROverMDD[i][j] = undefined
					return nil
				}
				tables.MaxDrawdown[i][j] = statistics.Metric{Value: stats.MaxDrawdown, Defined: true}
				tables.CAGR[i][j] = statistics.Metric{Value: stats.CAGR, Defined: true}
				tables.CAGROverMDD[i][j] = stats.CAGROverMDD
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// runCell runs one independent engine with both parameters applied
func (p *SweepParams) runCell(ctx context.Context, lookback int, a, b float64) (*statistics.Results, string, error) {
	custom := make(map[string]any, len(p.Config.StrategySettings.CustomSettings)+2)
	for k, v := range p.Config.StrategySettings.CustomSettings {
		custom[k] = v
	}
	custom[p.ParameterA.Name] = a
	custom[p.ParameterB.Name] = b
	bt, err := newFromSettings(p.Config, p.Provider, custom, lookback)
	if err != nil {
		return nil, "", err
	}
	if err = bt.Run(ctx); err != nil {
		return nil, "", err
	}
	res, err := bt.Results()
	if err != nil {
		return nil, "", err
	}
	log.Debugf(common.SubLoggers[common.Sweep], "%v=%v %v=%v complete", p.ParameterA.Name, a, p.ParameterB.Name, b)
	return res.Statistics, res.StatisticsError, nil
}

// SweepLookback returns one more than the largest value of either range
func SweepLookback(a, b []float64) int {
	highest := math.Inf(-1)
	for _, v := range append(append([]float64{}, a...), b...) {
		if v > highest {
			highest = v
		}
	}
	if highest < 0 || math.IsInf(highest, -1) {
		return 1
	}
	return int(math.Ceil(highest)) + 1
}

func newTable(rows, cols int) [][]statistics.Metric {
	t := make([][]statistics.Metric, rows)
	for i := range t {
		t[i] = make([]statistics.Metric, cols)
	}
	return t
}

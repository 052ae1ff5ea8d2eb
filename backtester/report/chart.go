package report

import (
	"fmt"

	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	libcommon "github.com/thrasher-corp/barsim/common"
)

// createEquityChart plots total value and cash for every date
func createEquityChart(rows []ledger.ResultRow) (*Chart, error) {
	if rows == nil {
		return nil, fmt.Errorf("%w missing result series", libcommon.ErrNilPointer)
	}
	value := ChartLine{Name: "Total value", LinePlots: make([]LinePlot, len(rows))}
	cash := ChartLine{Name: "Cash", LinePlots: make([]LinePlot, len(rows))}
	for i := range rows {
		value.LinePlots[i] = LinePlot{
			Value:     rows[i].Value.InexactFloat64(),
			UnixMilli: rows[i].Date.UnixMilli(),
		}
		cash.LinePlots[i] = LinePlot{
			Value:     rows[i].Cash.InexactFloat64(),
			UnixMilli: rows[i].Date.UnixMilli(),
		}
	}
	return &Chart{
		AxisType: "linear",
		Data:     []ChartLine{value, cash},
	}, nil
}

// createUnderwaterChart plots the drawdown from the running peak as a
// percentage
func createUnderwaterChart(points []statistics.UnderwaterPoint) (*Chart, error) {
	if points == nil {
		return nil, fmt.Errorf("%w missing underwater curve", libcommon.ErrNilPointer)
	}
	line := ChartLine{Name: "Drawdown %", LinePlots: make([]LinePlot, 0, len(points))}
	for i := range points {
		if !points[i].RunningMax.IsPositive() {
			continue
		}
		dd := points[i].Value.Div(points[i].RunningMax).Sub(one).Mul(hundred)
		line.LinePlots = append(line.LinePlots, LinePlot{
			Value:     dd.InexactFloat64(),
			UnixMilli: points[i].Time.UnixMilli(),
		})
	}
	return &Chart{
		AxisType: "linear",
		Data:     []ChartLine{line},
	}, nil
}

// createRealisedPNLChart shows the running account realised PNL
func createRealisedPNLChart(history []ledger.Snapshot) (*Chart, error) {
	if history == nil {
		return nil, fmt.Errorf("%w missing account history", libcommon.ErrNilPointer)
	}
	line := ChartLine{Name: "Realised PNL", LinePlots: make([]LinePlot, len(history))}
	for i := range history {
		line.LinePlots[i] = LinePlot{
			Value:     history[i].RealisedPNL.InexactFloat64(),
			UnixMilli: history[i].Date.UnixMilli(),
		}
	}
	return &Chart{
		AxisType: "linear",
		Data:     []ChartLine{line},
	}, nil
}

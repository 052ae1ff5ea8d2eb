// Package resample converts daily bars into weekly or monthly bars
package resample

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/log"
)

type period struct {
	year int
	unit int
}

func periodOf(t time.Time, interval data.Interval) period {
	if interval == data.OneWeek {
		y, w := t.ISOWeek()
		return period{year: y, unit: w}
	}
	return period{year: t.Year(), unit: int(t.Month())}
}

// Series resamples every symbol to the interval. Each period is stamped with
// the last trading date of that period across all symbols so resampled series
// share one date index. Open is the first open, high the maximum, low the
// minimum, close the last close and volume the sum
func Series(series map[string][]data.Bar, interval data.Interval) (map[string][]data.Bar, error) {
	switch interval {
	case data.OneDay:
		resp := make(map[string][]data.Bar, len(series))
		for k, v := range series {
			resp[k] = append([]data.Bar(nil), v...)
		}
		return resp, nil
	case data.OneWeek, data.OneMonth:
	default:
		return nil, fmt.Errorf("%w '%v'", data.ErrUnsupportedInterval, interval)
	}

	labels := make(map[period]time.Time)
	for _, bars := range series {
		for i := range bars {
			d := data.NormaliseDate(bars[i].Date)
			p := periodOf(d, interval)
			if d.After(labels[p]) {
				labels[p] = d
			}
		}
	}

	resp := make(map[string][]data.Bar, len(series))
	for symbol, bars := range series {
		sorted := append([]data.Bar(nil), bars...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date)
		})
		var out []data.Bar
		var current period
		for i := range sorted {
			p := periodOf(data.NormaliseDate(sorted[i].Date), interval)
			if len(out) == 0 || p != current {
				current = p
				out = append(out, data.Bar{
					Date:   labels[p],
					Open:   sorted[i].Open,
					High:   sorted[i].High,
					Low:    sorted[i].Low,
					Close:  sorted[i].Close,
					Volume: sorted[i].Volume,
				})
				continue
			}
			agg := &out[len(out)-1]
			agg.High = decimal.Max(agg.High, sorted[i].High)
			agg.Low = decimal.Min(agg.Low, sorted[i].Low)
			agg.Close = sorted[i].Close
			agg.Volume = agg.Volume.Add(sorted[i].Volume)
		}
		resp[symbol] = out
		log.Debugf(common.SubLoggers[common.Data], "resampled %v from %d to %d %v bars", symbol, len(bars), len(out), interval)
	}
	return resp, nil
}

package statistics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	libcommon "github.com/thrasher-corp/barsim/common"
	gctmath "github.com/thrasher-corp/barsim/common/math"
	"github.com/thrasher-corp/barsim/log"
)

var one = decimal.NewFromInt(1)

// ValuesFromResults converts the ledger result series into value points
func ValuesFromResults(rows []ledger.ResultRow) []ValueAtTime {
	resp := make([]ValueAtTime, len(rows))
	for i := range rows {
		resp[i] = ValueAtTime{Time: rows[i].Date, Value: rows[i].Value}
	}
	return resp
}

// UnderwaterCurve pairs each value with the running maximum up to and
// including it
func UnderwaterCurve(values []ValueAtTime) ([]UnderwaterPoint, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w to calculate underwater curve", errReceivedNoData)
	}
	raw := make([]decimal.Decimal, len(values))
	for i := range values {
		raw[i] = values[i].Value
	}
	maxes := gctmath.DecimalRunningMaximum(raw)
	resp := make([]UnderwaterPoint, len(values))
	for i := range values {
		resp[i] = UnderwaterPoint{
			Time:       values[i].Time,
			Value:      values[i].Value,
			RunningMax: maxes[i],
		}
	}
	return resp, nil
}

// Drawdown returns value / running max - 1 at each point. It fails when the
// running maximum is not positive
func Drawdown(values []ValueAtTime) ([]ValueAtTime, error) {
	curve, err := UnderwaterCurve(values)
	if err != nil {
		return nil, err
	}
	resp := make([]ValueAtTime, len(curve))
	for i := range curve {
		if !curve[i].RunningMax.IsPositive() {
			return nil, fmt.Errorf("%w at %v", errNonPositivePeak, curve[i].Time.Format(libcommon.DateFormat))
		}
		resp[i] = ValueAtTime{
			Time:  curve[i].Time,
			Value: curve[i].Value.Div(curve[i].RunningMax).Sub(one),
		}
	}
	return resp, nil
}

// MaxDrawdown returns the most negative point of a drawdown series
func MaxDrawdown(drawdown []ValueAtTime) (ValueAtTime, error) {
	raw := make([]decimal.Decimal, len(drawdown))
	for i := range drawdown {
		raw[i] = drawdown[i].Value
	}
	_, idx, err := gctmath.DecimalMinimum(raw)
	if err != nil {
		return ValueAtTime{}, fmt.Errorf("%w to calculate max drawdown", errReceivedNoData)
	}
	return drawdown[idx], nil
}

// MaxDrawdownSwing locates the peak preceding the deepest trough
func MaxDrawdownSwing(values []ValueAtTime) (Swing, error) {
	drawdown, err := Drawdown(values)
	if err != nil {
		return Swing{}, err
	}
	trough, err := MaxDrawdown(drawdown)
	if err != nil {
		return Swing{}, err
	}
	var troughIdx int
	for i := range drawdown {
		if drawdown[i].Time.Equal(trough.Time) {
			troughIdx = i
			break
		}
	}
	peakIdx := 0
	for i := 0; i <= troughIdx; i++ {
		if values[i].Value.GreaterThan(values[peakIdx].Value) {
			peakIdx = i
		}
	}
	return Swing{
		Highest:          values[peakIdx],
		Lowest:           values[troughIdx],
		DrawdownPercent:  trough.Value,
		IntervalDuration: int64(troughIdx - peakIdx),
	}, nil
}

// CAGR returns (end/start)^(1/years) - 1 where years is the calendar day
// difference over DaysPerYear
func CAGR(startValue, endValue decimal.Decimal, start, end time.Time) (decimal.Decimal, error) {
	if !end.After(start) {
		return decimal.Zero, fmt.Errorf("%w: %v to %v", errInvalidDateRange, start.Format(libcommon.DateFormat), end.Format(libcommon.DateFormat))
	}
	days := decimal.NewFromFloat(end.Sub(start).Hours() / 24)
	return gctmath.DecimalCompoundAnnualGrowthRate(startValue, endValue, decimal.NewFromInt(DaysPerYear), days)
}

// CAGROverMDD returns -CAGR / max drawdown. A zero max drawdown produces an
// undefined Metric
func CAGROverMDD(cagr, maxDrawdown decimal.Decimal) Metric {
	if maxDrawdown.IsZero() {
		return Metric{Reason: fmt.Sprintf("%v: max drawdown is zero", ErrUndefinedMetric)}
	}
	return Metric{Value: cagr.Neg().Div(maxDrawdown), Defined: true}
}

// Calculate derives every statistic from the value series. start and end are
// the strategy's effective start and end dates
func (a *Analyzer) Calculate(rows []ledger.ResultRow, start, end time.Time) (*Results, error) {
	values := ValuesFromResults(rows)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w to analyse", errReceivedNoData)
	}
	r := &Results{StartDate: start, EndDate: end}
	var err error
	if r.StartValue, err = valueAt(values, start); err != nil {
		return nil, err
	}
	if r.EndValue, err = valueAt(values, end); err != nil {
		return nil, err
	}
	if r.Underwater, err = UnderwaterCurve(values); err != nil {
		return nil, err
	}
	if r.Drawdown, err = Drawdown(values); err != nil {
		return nil, err
	}
	if r.MaxDrawdownSwing, err = MaxDrawdownSwing(values); err != nil {
		return nil, err
	}
	r.MaxDrawdown = r.MaxDrawdownSwing.DrawdownPercent
	dd := make([]decimal.Decimal, len(r.Drawdown))
	for i := range r.Drawdown {
		dd[i] = r.Drawdown[i].Value
	}
	if r.AverageDrawdown, err = gctmath.DecimalArithmeticAverage(dd); err != nil {
		return nil, err
	}
	if !r.StartValue.IsZero() {
		if r.StrategyMovement, err = gctmath.DecimalPercentageGainOrLoss(r.EndValue, r.StartValue); err != nil {
			return nil, err
		}
	}
	if r.CAGR, err = CAGR(r.StartValue, r.EndValue, start, end); err != nil {
		return nil, err
	}
	r.CAGROverMDD = CAGROverMDD(r.CAGR, r.MaxDrawdown)
	if !r.CAGROverMDD.Defined {
		log.Warnf(common.SubLoggers[common.Statistics], "CAGR/MDD %v", r.CAGROverMDD.Reason)
	}
	log.Debugf(common.SubLoggers[common.Statistics], "max drawdown %v CAGR %v", r.MaxDrawdown, r.CAGR)
	return r, nil
}

func valueAt(values []ValueAtTime, date time.Time) (decimal.Decimal, error) {
	for i := range values {
		if values[i].Time.Equal(date) {
			return values[i].Value, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w %v", errDateNotFound, date.Format(libcommon.DateFormat))
}

// OnSnapshot records the snapshot's equity
func (p *PeakTracker) OnSnapshot(s *ledger.Snapshot) error {
	if s == nil {
		return fmt.Errorf("%w snapshot", libcommon.ErrNilPointer)
	}
	p.observed++
	if p.observed == 1 || s.Equity.GreaterThan(p.peak.Value) {
		p.peak = ValueAtTime{Time: s.Date, Value: s.Equity}
		return nil
	}
	if !p.peak.Value.IsPositive() {
		return nil
	}
	dd := s.Equity.Div(p.peak.Value).Sub(one)
	if dd.LessThan(p.worst) {
		p.worst = dd
		p.worstAt = s.Date
		log.Debugf(common.SubLoggers[common.Statistics], "%v new max drawdown %v from peak on %v",
			s.Date.Format(libcommon.DateFormat), dd, p.peak.Time.Format(libcommon.DateFormat))
	}
	return nil
}

// Peak returns the highest equity observed so far
func (p *PeakTracker) Peak() ValueAtTime {
	return p.peak
}

// WorstDrawdown returns the deepest drawdown observed so far and when it
// occurred
func (p *PeakTracker) WorstDrawdown() (decimal.Decimal, time.Time) {
	return p.worst, p.worstAt
}

// Observed returns the number of snapshots seen
func (p *PeakTracker) Observed() int {
	return p.observed
}

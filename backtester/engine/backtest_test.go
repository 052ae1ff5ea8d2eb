package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/buyandhold"
	libcommon "github.com/thrasher-corp/barsim/common"
)

var (
	firstDate   = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	initialCash = decimal.NewFromInt(100000)
	errHook     = errors.New("hook failure")
)

func day(i int) time.Time {
	return firstDate.AddDate(0, 0, i)
}

func bar(i int, o, c float64) data.Bar {
	open, closing := decimal.NewFromFloat(o), decimal.NewFromFloat(c)
	return data.Bar{
		Date:   day(i),
		Open:   open,
		High:   decimal.Max(open, closing),
		Low:    decimal.Min(open, closing),
		Close:  closing,
		Volume: decimal.NewFromInt(1000),
	}
}

// testSeries has AAA on every date, BBB which delists after the fourth date
// and CCC which lists on the third
func testSeries() map[string][]data.Bar {
	s := make(map[string][]data.Bar)
	for i := 0; i < 6; i++ {
		s["AAA"] = append(s["AAA"], bar(i, 10+float64(i), 10.5+float64(i)))
	}
	for i := 0; i < 4; i++ {
		s["BBB"] = append(s["BBB"], bar(i, 20+float64(i), 20+float64(i)))
	}
	for i := 2; i < 6; i++ {
		s["CCC"] = append(s["CCC"], bar(i, 5, 5))
	}
	return s
}

func testHolder(t *testing.T) *data.Holder {
	t.Helper()
	h, err := data.NewHolder(testSeries())
	require.NoError(t, err, "NewHolder must not error")
	return h
}

type hookFunc func(ctx base.Context, dateIndex int) error

type testStrategy struct {
	begin      hookFunc
	end        hookFunc
	beginDates []time.Time
	endDates   []time.Time
	dropped    []orderbook.Order
	droppedOn  []time.Time
}

func (s *testStrategy) Name() string        { return "test" }
func (s *testStrategy) Description() string { return "records hook calls" }
func (s *testStrategy) SetDefaults()        {}

func (s *testStrategy) SetCustomSettings(map[string]any) error { return nil }

func (s *testStrategy) OnBegin(ctx base.Context) error {
	s.beginDates = append(s.beginDates, ctx.Date())
	if s.begin == nil {
		return nil
	}
	return s.begin(ctx, int(ctx.Date().Sub(firstDate).Hours()/24))
}

func (s *testStrategy) OnEnd(ctx base.Context) error {
	s.endDates = append(s.endDates, ctx.Date())
	if s.end == nil {
		return nil
	}
	return s.end(ctx, int(ctx.Date().Sub(firstDate).Hours()/24))
}

func (s *testStrategy) OnOrdersDropped(date time.Time, dropped []orderbook.Order) {
	s.droppedOn = append(s.droppedOn, date)
	s.dropped = append(s.dropped, dropped...)
}

type countingTracker struct {
	snapshots []time.Time
	fail      bool
}

func (c *countingTracker) OnSnapshot(s *ledger.Snapshot) error {
	c.snapshots = append(c.snapshots, s.Date)
	if c.fail {
		return errHook
	}
	return nil
}

func TestNew(t *testing.T) {
	t.Parallel()
	h := testHolder(t)
	_, err := New(nil, &testStrategy{}, initialCash, 1)
	assert.ErrorIs(t, err, errNilProvider)

	_, err = New(h, nil, initialCash, 1)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	_, err = New(h, &testStrategy{}, decimal.Zero, 1)
	assert.Error(t, err, "zero initial cash should error")

	_, err = New(h, &testStrategy{}, initialCash, 0)
	assert.Error(t, err, "zero lookback should error")

	_, err = New(h, &testStrategy{}, initialCash, 7)
	assert.Error(t, err, "lookback beyond the date index should error")

	bt, err := New(h, &testStrategy{}, initialCash, 1)
	require.NoError(t, err)
	assert.False(t, bt.MetaData.ID.IsNil())
	assert.Equal(t, "test", bt.MetaData.Strategy)
	assert.Len(t, bt.Trackers, 1, "peak tracker should be registered")
	assert.False(t, bt.HasRan())
	assert.False(t, bt.IsRunning())
}

func TestRunExecutesOrdersAcrossPhases(t *testing.T) {
	t.Parallel()
	strat := &testStrategy{
		begin: func(ctx base.Context, i int) error {
			if i != 0 {
				return nil
			}
			_, err := ctx.PlaceMarketOrder("AAA", decimal.NewFromInt(100), common.Open)
			return err
		},
		end: func(ctx base.Context, i int) error {
			if i != 0 {
				return nil
			}
			_, err := ctx.PlaceMarketOrder("BBB", decimal.NewFromInt(10), common.Open)
			return err
		},
	}
	bt, err := New(testHolder(t), strat, initialCash, 1)
	require.NoError(t, err)
	require.NoError(t, bt.Run(context.Background()))

	res, err := bt.Results()
	require.NoError(t, err)
	require.Len(t, res.OrderLog, 2)
	require.Len(t, res.PendingOrderLog, 2)

	aaa := res.OrderLog[0]
	assert.Equal(t, "AAA", aaa.Symbol)
	assert.Equal(t, day(0), aaa.ExecutedOn, "same phase order should execute immediately")
	assert.Equal(t, common.Open, aaa.ExecutedPhase)
	assert.True(t, aaa.ExecutionPrice.Equal(decimal.NewFromInt(10)))

	bbb := res.OrderLog[1]
	assert.Equal(t, day(0), bbb.PlacedOn)
	assert.Equal(t, common.Close, bbb.PlacedPhase)
	assert.Equal(t, day(1), bbb.ExecutedOn, "open order placed at close should execute next open")
	assert.Equal(t, common.Open, bbb.ExecutedPhase)
	assert.True(t, bbb.ExecutionPrice.Equal(decimal.NewFromInt(21)))

	require.Len(t, res.ResultSeries, 6)
	require.Len(t, res.AccountHistory, 6)
	assert.True(t, res.Initial.Equity.Equal(initialCash))
	for i := range res.AccountHistory {
		assert.Truef(t, res.AccountHistory[i].Reconciles(), "snapshot %v should reconcile", res.AccountHistory[i].Date)
		assert.Equal(t, day(i), res.ResultSeries[i].Date)
	}

	// BBB delists after the fourth date and is liquidated at its last close
	last := res.ResultSeries[5]
	assert.True(t, last.Cash.Equal(decimal.NewFromInt(99020)), last.Cash.String())
	assert.True(t, last.Value.Equal(decimal.NewFromInt(100570)), last.Value.String())
	assert.True(t, res.RealisedPNL.Equal(decimal.NewFromInt(20)), res.RealisedPNL.String())
	assert.Empty(t, res.StillPending)

	require.NotNil(t, res.Statistics, res.StatisticsError)
	assert.True(t, res.Statistics.MaxDrawdown.IsZero(), "equity only rises")
	assert.False(t, res.Statistics.CAGROverMDD.Defined, "zero drawdown leaves the ratio undefined")
	assert.Equal(t, day(0), res.StrategyStart)
	assert.Equal(t, day(5), res.StrategyEnd)

	sum := bt.GenerateSummary()
	assert.True(t, sum.MetaData.Closed)
	assert.Equal(t, 2, sum.Orders)
	assert.True(t, sum.FinalEquity.Equal(decimal.NewFromInt(100570)))
}

func TestRunDropsOrdersForDelistedSymbols(t *testing.T) {
	t.Parallel()
	strat := &testStrategy{
		end: func(ctx base.Context, i int) error {
			if i != 3 {
				return nil
			}
			_, err := ctx.PlaceMarketOrder("BBB", decimal.NewFromInt(-5), common.Open)
			return err
		},
	}
	bt, err := New(testHolder(t), strat, initialCash, 1)
	require.NoError(t, err)
	require.NoError(t, bt.Run(context.Background()))

	require.Len(t, strat.dropped, 1)
	assert.Equal(t, "BBB", strat.dropped[0].Symbol)
	assert.Equal(t, []time.Time{day(4)}, strat.droppedOn)

	res, err := bt.Results()
	require.NoError(t, err)
	assert.Len(t, res.DroppedOrders, 1)
	assert.Len(t, res.PendingOrderLog, 1)
	assert.Empty(t, res.OrderLog)
	assert.Empty(t, res.StillPending)
}

func TestRunShortPositionReconciles(t *testing.T) {
	t.Parallel()
	strat := &testStrategy{
		begin: func(ctx base.Context, i int) error {
			if i != 1 {
				return nil
			}
			_, err := ctx.PlaceMarketOrder("AAA", decimal.NewFromInt(-50), common.Close)
			return err
		},
	}
	bt, err := New(testHolder(t), strat, initialCash, 1)
	require.NoError(t, err)
	require.NoError(t, bt.Run(context.Background()))
	res, err := bt.Results()
	require.NoError(t, err)
	require.Len(t, res.OrderLog, 1)
	assert.Equal(t, common.Close, res.OrderLog[0].ExecutedPhase)
	assert.True(t, res.OrderLog[0].ExecutionPrice.Equal(decimal.NewFromFloat(11.5)))
	for i := range res.AccountHistory {
		assert.True(t, res.AccountHistory[i].Reconciles())
	}
	final := res.AccountHistory[len(res.AccountHistory)-1]
	require.Len(t, final.Liabilities, 1)
	assert.Equal(t, ledger.Short, final.Liabilities[0].Side)
	// shorted at 11.5, marked at 15.5
	assert.True(t, final.Equity.Equal(decimal.NewFromInt(99800)), final.Equity.String())
	dd, _ := bt.PeakDrawdown()
	assert.True(t, dd.IsNegative(), "rising price against a short should draw down")
}

func TestRunLookbackDelaysHooks(t *testing.T) {
	t.Parallel()
	strat := &testStrategy{
		begin: func(ctx base.Context, i int) error {
			w, err := ctx.Window("AAA")
			if err != nil {
				return err
			}
			if len(w) != 3 {
				return errHook
			}
			if ctx.IsEligible("CCC") != (i >= 4) {
				return errHook
			}
			return nil
		},
	}
	bt, err := New(testHolder(t), strat, initialCash, 3)
	require.NoError(t, err)
	require.NoError(t, bt.Run(context.Background()))
	assert.Equal(t, []time.Time{day(2), day(3), day(4), day(5)}, strat.beginDates)
	assert.Len(t, strat.endDates, 4)

	res, err := bt.Results()
	require.NoError(t, err)
	assert.Len(t, res.ResultSeries, 6, "every date is recorded")
	assert.Equal(t, day(2), res.StrategyStart)
}

func TestRunTwice(t *testing.T) {
	t.Parallel()
	bt, err := New(testHolder(t), &testStrategy{}, initialCash, 1)
	require.NoError(t, err)
	_, err = bt.Results()
	assert.ErrorIs(t, err, errRunHasNotRan)
	require.NoError(t, bt.Run(context.Background()))
	assert.True(t, bt.HasRan())
	assert.ErrorIs(t, bt.Run(context.Background()), errAlreadyRan)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	bt, err := New(testHolder(t), &testStrategy{}, initialCash, 1)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bt.Run(ctx), context.Canceled)
	assert.True(t, bt.HasRan())
	assert.NotEmpty(t, bt.MetaData.Error)
	_, err = bt.Results()
	assert.ErrorIs(t, err, errRunHasNotRan, "failed runs have no results")
}

func TestRunHookError(t *testing.T) {
	t.Parallel()
	strat := &testStrategy{
		end: func(_ base.Context, i int) error {
			if i == 2 {
				return errHook
			}
			return nil
		},
	}
	bt, err := New(testHolder(t), strat, initialCash, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, bt.Run(context.Background()), errHook)
	assert.Len(t, strat.endDates, 3)
}

func TestRunRejectsIneligibleOrder(t *testing.T) {
	t.Parallel()
	strat := &testStrategy{
		begin: func(ctx base.Context, i int) error {
			if i != 0 {
				return nil
			}
			_, err := ctx.PlaceMarketOrder("CCC", decimal.NewFromInt(1), common.Open)
			return err
		},
	}
	bt, err := New(testHolder(t), strat, initialCash, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, bt.Run(context.Background()), orderbook.ErrOrderRejected, "CCC is not listed on the first date")
}

func TestAddTracker(t *testing.T) {
	t.Parallel()
	bt, err := New(testHolder(t), &testStrategy{}, initialCash, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, bt.AddTracker(nil), libcommon.ErrNilPointer)
	c := &countingTracker{}
	require.NoError(t, bt.AddTracker(c))
	require.NoError(t, bt.Run(context.Background()))
	assert.Len(t, c.snapshots, 6, "trackers observe every date including the lookback")

	bt, err = New(testHolder(t), &testStrategy{}, initialCash, 1)
	require.NoError(t, err)
	require.NoError(t, bt.AddTracker(&countingTracker{fail: true}))
	assert.ErrorIs(t, bt.Run(context.Background()), errHook)
}

func TestRunBuyAndHold(t *testing.T) {
	t.Parallel()
	strat := &buyandhold.Strategy{}
	strat.SetDefaults()
	bt, err := New(testHolder(t), strat, initialCash, 1)
	require.NoError(t, err)
	require.NoError(t, bt.Run(context.Background()))
	res, err := bt.Results()
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderLog)
	for i := range res.AccountHistory {
		assert.True(t, res.AccountHistory[i].Reconciles())
	}
	for i := range res.OrderLog {
		assert.True(t, res.OrderLog[i].Quantity.IsPositive())
		assert.Equal(t, common.Open, res.OrderLog[i].ExecutedPhase)
	}
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()
	run := func() *Results {
		strat := &buyandhold.Strategy{}
		strat.SetDefaults()
		bt, err := New(testHolder(t), strat, initialCash, 1)
		require.NoError(t, err)
		require.NoError(t, bt.Run(context.Background()))
		res, err := bt.Results()
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	require.Equal(t, len(a.ResultSeries), len(b.ResultSeries))
	for i := range a.ResultSeries {
		assert.True(t, a.ResultSeries[i].Value.Equal(b.ResultSeries[i].Value))
		assert.True(t, a.ResultSeries[i].Cash.Equal(b.ResultSeries[i].Cash))
	}
}

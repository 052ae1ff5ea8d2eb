package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/scheduler"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// New wires a fresh scheduler, order book and ledger around the provider
// and strategy
func New(provider data.Provider, strategy strategies.Handler, initialCash decimal.Decimal, lookback int) (*BackTest, error) {
	if provider == nil {
		return nil, errNilProvider
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w strategy", libcommon.ErrNilPointer)
	}
	sched, err := scheduler.New(provider, lookback)
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(initialCash)
	if err != nil {
		return nil, err
	}
	book, err := orderbook.New(sched, provider, &ledgerExecutor{ledger: l})
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	bt := &BackTest{
		MetaData: RunMetaData{
			ID:         id,
			Strategy:   strategy.Name(),
			DateLoaded: time.Now(),
		},
		Strategy:  strategy,
		Data:      provider,
		Scheduler: sched,
		OrderBook: book,
		Ledger:    l,
		Statistic: &statistics.Analyzer{},
		peak:      &statistics.PeakTracker{},
	}
	bt.context = &SimulationContext{bt: bt}
	bt.Trackers = []statistics.Tracker{bt.peak}
	return bt, nil
}

// AddTracker registers an observer of every appended snapshot
func (bt *BackTest) AddTracker(t statistics.Tracker) error {
	if t == nil {
		return fmt.Errorf("%w tracker", libcommon.ErrNilPointer)
	}
	bt.m.Lock()
	defer bt.m.Unlock()
	bt.Trackers = append(bt.Trackers, t)
	return nil
}

// Run steps through every date of the data set. It is single threaded and
// can only be called once; cancelling ctx stops before the next date
func (bt *BackTest) Run(ctx context.Context) error {
	if bt == nil {
		return fmt.Errorf("%w BackTest", libcommon.ErrNilPointer)
	}
	bt.m.Lock()
	switch {
	case bt.running:
		bt.m.Unlock()
		return fmt.Errorf("%w %v", errRunIsRunning, bt.MetaData.ID)
	case bt.MetaData.Closed:
		bt.m.Unlock()
		return fmt.Errorf("%w %v", errAlreadyRan, bt.MetaData.ID)
	}
	ctx, cancel := context.WithCancel(ctx)
	bt.cancel = cancel
	bt.running = true
	bt.MetaData.DateStarted = time.Now()
	if bt.logHolder != nil {
		bt.logHolder.Activate()
	}
	bt.m.Unlock()

	err := bt.loop(ctx)

	bt.m.Lock()
	defer bt.m.Unlock()
	cancel()
	bt.cancel = nil
	bt.running = false
	bt.MetaData.Closed = true
	bt.MetaData.DateEnded = time.Now()
	if bt.logHolder != nil {
		bt.logHolder.DeActivate()
	}
	if err != nil {
		bt.MetaData.Error = err.Error()
		log.Errorf(common.SubLoggers[common.Engine], "run %v failed: %v", bt.MetaData.ID, err)
		return err
	}
	bt.results = bt.collect()
	log.Infof(common.SubLoggers[common.Engine], "run %v complete, final equity %v", bt.MetaData.ID, bt.Ledger.Equity())
	return nil
}

// Stop cancels a running simulation
func (bt *BackTest) Stop() {
	bt.m.Lock()
	defer bt.m.Unlock()
	if bt.cancel != nil {
		bt.cancel()
	}
}

// IsRunning returns whether Run is executing
func (bt *BackTest) IsRunning() bool {
	bt.m.Lock()
	defer bt.m.Unlock()
	return bt.running
}

// HasRan returns whether Run has finished
func (bt *BackTest) HasRan() bool {
	bt.m.Lock()
	defer bt.m.Unlock()
	return bt.MetaData.Closed
}

func (bt *BackTest) loop(ctx context.Context) error {
	log.Infof(common.SubLoggers[common.Engine], "running %v from %v, strategy starts %v",
		bt.Strategy.Name(),
		bt.Scheduler.Dates()[0].Format(libcommon.DateFormat),
		bt.Scheduler.StrategyStart().Format(libcommon.DateFormat))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		date, err := bt.Scheduler.Advance()
		if err != nil {
			if errors.Is(err, scheduler.ErrEndOfData) {
				return nil
			}
			return err
		}
		if err = bt.processDate(date); err != nil {
			return fmt.Errorf("%v %w", date.Format(libcommon.DateFormat), err)
		}
	}
}

// processDate runs both phases of a date then records the snapshot
func (bt *BackTest) processDate(date time.Time) error {
	delisted := bt.Ledger.RemoveDelisted(bt.Scheduler.IsEligible)
	if len(delisted) > 0 {
		log.Infof(common.SubLoggers[common.Engine], "%v liquidated delisted %v", date.Format(libcommon.DateFormat), delisted)
	}
	if dropped := bt.OrderBook.DropIneligible(); len(dropped) > 0 {
		bt.dropped = append(bt.dropped, dropped...)
		if l, ok := bt.Strategy.(base.OrderDropListener); ok {
			l.OnOrdersDropped(date, dropped)
		}
	}

	if err := bt.Ledger.MarkToMarket(bt.Data, date, common.Open); err != nil {
		return err
	}
	if err := bt.runPhase(common.Open, bt.Strategy.OnBegin); err != nil {
		return err
	}
	if err := bt.Scheduler.NextPhase(); err != nil {
		return err
	}
	if err := bt.Ledger.MarkToMarket(bt.Data, date, common.Close); err != nil {
		return err
	}
	if err := bt.runPhase(common.Close, bt.Strategy.OnEnd); err != nil {
		return err
	}

	snap := bt.Ledger.Snapshot(date)
	var errs error
	for i := range bt.Trackers {
		errs = libcommon.AppendError(errs, bt.Trackers[i].OnSnapshot(&snap))
	}
	return errs
}

// runPhase executes due orders, calls the hook, then executes orders the
// hook made due. Nothing happens before the strategy start date
func (bt *BackTest) runPhase(phase common.Phase, hook func(base.Context) error) error {
	if !bt.Scheduler.StrategyActive() {
		return nil
	}
	if _, err := bt.OrderBook.ScanAndExecute(phase); err != nil {
		return err
	}
	if err := hook(bt.context); err != nil {
		return fmt.Errorf("strategy %v %v hook: %w", bt.Strategy.Name(), phase, err)
	}
	_, err := bt.OrderBook.ScanAndExecute(phase)
	return err
}

func (bt *BackTest) collect() *Results {
	r := &Results{
		ID:              bt.MetaData.ID,
		Strategy:        bt.MetaData.Strategy,
		Nickname:        bt.MetaData.Nickname,
		StrategyStart:   bt.Scheduler.StrategyStart(),
		StrategyEnd:     bt.Scheduler.StrategyEnd(),
		Initial:         bt.Ledger.Initial(),
		AccountHistory:  bt.Ledger.History(),
		ResultSeries:    bt.Ledger.Results(),
		OrderLog:        bt.OrderBook.Executions(),
		PendingOrderLog: bt.OrderBook.Placements(),
		DroppedOrders:   bt.dropped,
		StillPending:    bt.OrderBook.Pending(),
		RealisedPNL:     bt.Ledger.RealisedPNL(),
	}
	stats, err := bt.Statistic.Calculate(r.ResultSeries, r.StrategyStart, r.StrategyEnd)
	if err != nil {
		r.StatisticsError = err.Error()
		log.Warnf(common.SubLoggers[common.Statistics], "run %v statistics unavailable: %v", bt.MetaData.ID, err)
	} else {
		r.Statistics = stats
	}
	return r
}

// Results returns the outputs of a completed run
func (bt *BackTest) Results() (*Results, error) {
	bt.m.Lock()
	defer bt.m.Unlock()
	if bt.results == nil {
		return nil, fmt.Errorf("%w %v", errRunHasNotRan, bt.MetaData.ID)
	}
	return bt.results, nil
}

// PeakDrawdown returns the deepest drawdown observed while running
func (bt *BackTest) PeakDrawdown() (decimal.Decimal, time.Time) {
	return bt.peak.WorstDrawdown()
}

// GenerateSummary creates a summary of the run. Equity and order counts
// are only filled once the run has completed
func (bt *BackTest) GenerateSummary() *RunSummary {
	bt.m.Lock()
	defer bt.m.Unlock()
	sum := &RunSummary{MetaData: bt.MetaData}
	if bt.results != nil {
		sum.FinalEquity = bt.Ledger.Equity()
		sum.Orders = len(bt.results.PendingOrderLog)
	}
	return sum
}

package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/scheduler"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/barsim/backtester/writer"
)

var (
	errAlreadyRan          = errors.New("run already ran")
	errRunHasNotRan        = errors.New("run hasn't ran yet")
	errRunIsRunning        = errors.New("run is already running")
	errRunNotFound         = errors.New("run not found")
	errRunAlreadyMonitored = errors.New("run already monitored")
	errCannotClear         = errors.New("cannot clear run")
	errNoLoggerSetup       = errors.New("run is missing log storage")
	errNilProvider         = errors.New("nil data provider")
	errNoSweepValues       = errors.New("sweep parameter has no values")
	errSweepNameRequired   = errors.New("sweep parameter name required")
)

// BackTest is one simulation of a strategy over a data set. Every component
// is owned by the BackTest and nothing is shared with other runs
type BackTest struct {
	MetaData  RunMetaData
	Strategy  strategies.Handler
	Data      data.Provider
	Scheduler *scheduler.Scheduler
	OrderBook *orderbook.Book
	Ledger    *ledger.Ledger
	Statistic *statistics.Analyzer
	Trackers  []statistics.Tracker
	peak      *statistics.PeakTracker
	context   *SimulationContext
	dropped   []orderbook.Order
	results   *Results
	logHolder *writer.Writer
	cancel    func()
	running   bool
	m         sync.Mutex
}

// SimulationContext is handed to strategy hooks. It reads from and submits
// orders to the BackTest that owns it
type SimulationContext struct {
	bt *BackTest
}

// ledgerExecutor settles executed orders against the ledger
type ledgerExecutor struct {
	ledger *ledger.Ledger
}

// RunMetaData contains details about a run such as when it was loaded
type RunMetaData struct {
	ID          uuid.UUID `json:"id"`
	Strategy    string    `json:"strategy"`
	Nickname    string    `json:"nickname,omitempty"`
	DateLoaded  time.Time `json:"date-loaded"`
	DateStarted time.Time `json:"date-started"`
	DateEnded   time.Time `json:"date-ended"`
	Closed      bool      `json:"closed"`
	Error       string    `json:"error,omitempty"`
}

// Results holds everything a completed run produced
type Results struct {
	ID              uuid.UUID           `json:"id"`
	Strategy        string              `json:"strategy"`
	Nickname        string              `json:"nickname,omitempty"`
	StrategyStart   time.Time           `json:"strategy-start"`
	StrategyEnd     time.Time           `json:"strategy-end"`
	Initial         ledger.Snapshot     `json:"initial"`
	AccountHistory  []ledger.Snapshot   `json:"account-history"`
	ResultSeries    []ledger.ResultRow  `json:"result-series"`
	OrderLog        []orderbook.Order   `json:"order-log"`
	PendingOrderLog []orderbook.Order   `json:"pending-order-log"`
	DroppedOrders   []orderbook.Order   `json:"dropped-orders,omitempty"`
	StillPending    []orderbook.Order   `json:"still-pending,omitempty"`
	RealisedPNL     decimal.Decimal     `json:"realised-pnl"`
	Statistics      *statistics.Results `json:"statistics,omitempty"`
	StatisticsError string              `json:"statistics-error,omitempty"`
}

// RunSummary holds a compressed view of a run
type RunSummary struct {
	MetaData    RunMetaData     `json:"metadata"`
	FinalEquity decimal.Decimal `json:"final-equity"`
	Orders      int             `json:"orders"`
}

// RunManager contains all strategy runs
type RunManager struct {
	m    sync.Mutex
	runs []*BackTest
}

// SweepParams defines a two dimensional parameter grid. Each cell runs a
// fresh engine built from Config with the two custom settings applied
type SweepParams struct {
	Config     *config.Config
	Provider   data.Provider
	ParameterA config.SweepParameter
	ParameterB config.SweepParameter
	// Workers bounds concurrent cells, zero uses one per CPU
	Workers int
}

// SweepTables are the metrics of every grid cell indexed [a][b]
type SweepTables struct {
	ParameterA  config.SweepParameter `json:"parameter-a"`
	ParameterB  config.SweepParameter `json:"parameter-b"`
	Lookback    int                   `json:"lookback"`
	MaxDrawdown [][]statistics.Metric `json:"max-drawdown"`
	CAGR        [][]statistics.Metric `json:"cagr"`
	CAGROverMDD [][]statistics.Metric `json:"cagr-over-mdd"`
}

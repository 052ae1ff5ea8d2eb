package config

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/database"
	"github.com/thrasher-corp/barsim/log"
)

// EnvPrefix is prepended to environment variables which override config
// values, eg BARSIM_FUNDING_SETTINGS_INITIAL_CASH
const EnvPrefix = "BARSIM"

var (
	// ErrUnsupportedInterval is returned when the configured bar interval
	// is not daily, weekly or monthly
	ErrUnsupportedInterval = data.ErrUnsupportedInterval

	errBadInitialCash        = errors.New("initial cash must be greater than zero")
	errNoDataSource          = errors.New("no data source set, configure csv-data or database-data")
	errMultipleDataSources   = errors.New("only one data source can be set")
	errNegativeLookback      = errors.New("lookback cannot be negative")
	errBadDate               = errors.New("start date must be before end date")
	errNoCSVPath             = errors.New("csv-data path is empty")
	errNoTable               = errors.New("database-data table is empty")
	errSweepParameterUnset   = errors.New("sweep parameter name is empty")
	errSweepParameterNoRange = errors.New("sweep parameter has no values")
	errSweepParametersEqual  = errors.New("sweep parameters must have different names")
	errNegativeWorkers       = errors.New("sweep workers cannot be negative")
)

// Config defines what is in an individual strategy config
type Config struct {
	Nickname         string           `json:"nickname"`
	Goal             string           `json:"goal"`
	StrategySettings StrategySettings `json:"strategy-settings"`
	FundingSettings  FundingSettings  `json:"funding-settings"`
	DataSettings     DataSettings     `json:"data-settings"`
	SweepSettings    *SweepSettings   `json:"sweep-settings,omitempty"`
	OutputSettings   OutputSettings   `json:"output-settings"`
	LogSettings      *log.Config      `json:"log-settings,omitempty"`
}

// StrategySettings contains what strategy to load and any overrides for
// its defaults
type StrategySettings struct {
	Name           string         `json:"name"`
	CustomSettings map[string]any `json:"custom-settings,omitempty"`
}

// FundingSettings contains the starting balance of the account
type FundingSettings struct {
	InitialCash decimal.Decimal `json:"initial-cash"`
}

// DataSettings is a container for the bar source, interval and window
type DataSettings struct {
	Interval     string        `json:"interval"`
	Lookback     int           `json:"lookback"`
	StartDate    time.Time     `json:"start-date,omitempty"`
	EndDate      time.Time     `json:"end-date,omitempty"`
	CSVData      *CSVData      `json:"csv-data,omitempty"`
	DatabaseData *DatabaseData `json:"database-data,omitempty"`
}

// CSVData defines a csv file of date,symbol,open,high,low,close,volume rows
type CSVData struct {
	Path string `json:"path"`
}

// DatabaseData defines the database and table to read bars from
type DatabaseData struct {
	Config   database.Config `json:"config"`
	Table    string          `json:"table"`
	DataPath string          `json:"data-path"`
}

// SweepSettings defines the two parameters varied across a sweep
type SweepSettings struct {
	ParameterA SweepParameter `json:"parameter-a"`
	ParameterB SweepParameter `json:"parameter-b"`
	Workers    int            `json:"workers"`
}

// SweepParameter is a named strategy custom setting and the values to try
type SweepParameter struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// OutputSettings defines where results are written
type OutputSettings struct {
	OutputPath string `json:"output-path"`
	WriteJSON  bool   `json:"write-json"`
	WriteCSV   bool   `json:"write-csv"`
	WriteHTML  bool   `json:"write-html"`
}

package common

import (
	"errors"

	"github.com/thrasher-corp/barsim/log"
)

// Phase is the sub-step of a trading date at which prices are observed and
// orders execute
type Phase uint8

// Phases in the order they occur within a date
const (
	Open Phase = iota
	Close
)

// sublogger names
const (
	Setup      = "SETUP"
	Engine     = "ENGINE"
	Scheduler  = "SCHEDULER"
	OrderBook  = "ORDERBOOK"
	Ledger     = "LEDGER"
	Strategy   = "STRATEGY"
	Statistics = "STATISTICS"
	Sweep      = "SWEEP"
	Report     = "REPORT"
	Data       = "DATA"
	Config     = "CONFIG"
)

var (
	// SubLoggers is a map of loggers to use across the backtester
	SubLoggers = map[string]*log.SubLogger{
		Setup:      nil,
		Engine:     nil,
		Scheduler:  nil,
		OrderBook:  nil,
		Ledger:     nil,
		Strategy:   nil,
		Statistics: nil,
		Sweep:      nil,
		Report:     nil,
		Data:       nil,
		Config:     nil,
	}

	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrInvalidPhase is returned for any phase other than open or close
	ErrInvalidPhase = errors.New("invalid phase")
	// ErrUnknownSymbol is returned when a symbol has no data
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrNoDataForDate is returned when a symbol has no bar on a date
	ErrNoDataForDate = errors.New("no data for date")

	errCannotGenerateFileName = errors.New("cannot generate filename")
)

// Colours defines colour types for CMD output
type Colours struct {
	Default  string
	Green    string
	White    string
	Grey     string
	DarkGrey string
	H1       string
	H2       string
	H3       string
	H4       string
	Success  string
	Info     string
	Debug    string
	Warn     string
	Error    string
}

// CMDColours is a struct which holds all the colours used in the backtester console output
var CMDColours = Colours{
	Default:  "\u001b[0m",
	Green:    "\033[38;5;157m",
	White:    "\033[38;5;255m",
	Grey:     "\033[38;5;246m",
	DarkGrey: "\033[38;5;240m",
	H1:       "\033[38;5;33m",
	H2:       "\033[38;5;39m",
	H3:       "\033[38;5;45m",
	H4:       "\033[38;5;51m",
	Success:  "\033[38;5;40m",
	Info:     "\u001B[32m",
	Debug:    "\u001B[34m",
	Warn:     "\u001B[33m",
	Error:    "\033[38;5;196m",
}

// ASCIILogo is a sweet logo that is optionally printed to the command line window
const ASCIILogo = `
    ____                   _              
   / __ )____ ______ _____(_)___ ___      
  / __  / __ '/ ___// ___/ / __ '__ \     
 / /_/ / /_/ / /   (__  ) / / / / / /     
/_____/\__,_/_/   /____/_/_/ /_/ /_/      
`

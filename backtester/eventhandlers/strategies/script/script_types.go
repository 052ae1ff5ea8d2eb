package script

import (
	"errors"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
)

const (
	// Name is the strategy name
	Name = "script"
	// SourceKey holds inline tengo source
	SourceKey = "script"
	// PathKey holds the path of a tengo source file
	PathKey     = "script-path"
	timeoutKey  = "timeout"
	description = `The script strategy runs user authored Tengo code at both phases of every date. The script sees the date, phase, eligible symbols, cash, equity, signed positions, lookback bars and any extra custom settings under params, and places market orders with order(symbol, quantity, phase)`
	fileExt     = ".tengo"
)

var (
	errNoScript       = errors.New("no script provided, set script or script-path")
	errScriptNotReady = errors.New("script has not been compiled")
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	source   []byte
	path     string
	timeout  time.Duration
	params   map[string]interface{}
	compiled *tengo.Compiled
	current  base.Context
}

package report

import (
	"errors"

	"github.com/thrasher-corp/barsim/backtester/engine"
)

var (
	errNoResults    = errors.New("no results to report")
	errNoTables     = errors.New("no sweep tables to report")
	errNoOutputPath = errors.New("output path not set")
)

// Data is handed to the html template
type Data struct {
	Results          *engine.Results
	EquityChart      *Chart
	UnderwaterChart  *Chart
	RealisedPNLChart *Chart
}

// Chart holds the lines of one html chart
type Chart struct {
	AxisType string      `json:"axis-type"`
	Data     []ChartLine `json:"data"`
}

// ChartLine is a single named series on a chart
type ChartLine struct {
	Name      string     `json:"name"`
	LinePlots []LinePlot `json:"line-plots"`
}

// LinePlot is one point of a chart line
type LinePlot struct {
	Value     float64 `json:"value"`
	UnixMilli int64   `json:"unix-milli"`
}

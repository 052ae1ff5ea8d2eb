package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/engine"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	libcommon "github.com/thrasher-corp/barsim/common"
)

var start = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

func testResults(t *testing.T) *engine.Results {
	t.Helper()
	values := []int64{1000, 1100, 990, 1200}
	rows := make([]ledger.ResultRow, len(values))
	history := make([]ledger.Snapshot, len(values))
	for i := range values {
		d := start.AddDate(0, 0, i)
		rows[i] = ledger.ResultRow{Date: d, Cash: decimal.NewFromInt(500), Value: decimal.NewFromInt(values[i])}
		history[i] = ledger.Snapshot{Date: d, Cash: decimal.NewFromInt(500), Equity: decimal.NewFromInt(values[i])}
	}
	stats, err := (&statistics.Analyzer{}).Calculate(rows, rows[0].Date, rows[len(rows)-1].Date)
	require.NoError(t, err)
	return &engine.Results{
		ID:             uuid.Must(uuid.NewV4()),
		Strategy:       "smacross",
		Nickname:       "unit-test",
		StrategyStart:  rows[0].Date,
		StrategyEnd:    rows[len(rows)-1].Date,
		Initial:        ledger.Snapshot{Cash: decimal.NewFromInt(1000), Equity: decimal.NewFromInt(1000)},
		AccountHistory: history,
		ResultSeries:   rows,
		OrderLog: []orderbook.Order{{
			ID:             0,
			Symbol:         "AAA",
			Quantity:       decimal.NewFromInt(5),
			PlacedOn:       rows[0].Date,
			PlacedPhase:    common.Close,
			Status:         orderbook.Executed,
			ExecutionPrice: decimal.NewFromInt(100),
			ExecutedOn:     rows[1].Date,
			ExecutedPhase:  common.Open,
		}},
		Statistics: stats,
	}
}

func TestWriteResults(t *testing.T) {
	t.Parallel()
	_, err := WriteResults(nil, &config.OutputSettings{})
	assert.ErrorIs(t, err, errNoResults)
	res := testResults(t)
	_, err = WriteResults(res, nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	written, err := WriteResults(res, &config.OutputSettings{})
	require.NoError(t, err)
	assert.Empty(t, written, "nothing enabled writes nothing")

	_, err = WriteResults(res, &config.OutputSettings{WriteJSON: true})
	assert.ErrorIs(t, err, errNoOutputPath)

	dir := filepath.Join(t.TempDir(), "results")
	written, err = WriteResults(res, &config.OutputSettings{
		OutputPath: dir,
		WriteJSON:  true,
		WriteCSV:   true,
		WriteHTML:  true,
	})
	require.NoError(t, err)
	require.Len(t, written, 3)
	for i := range written {
		assert.True(t, strings.HasPrefix(filepath.Base(written[i]), "unit_test_"), written[i])
	}

	b, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var decoded engine.Results
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, res.ID, decoded.ID)
	assert.Len(t, decoded.ResultSeries, 4)

	b, err = os.ReadFile(written[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "date,cash,value", lines[0])
	assert.Equal(t, "2021-01-07,500,1200", lines[4])

	b, err = os.ReadFile(written[2])
	require.NoError(t, err)
	assert.Contains(t, string(b), "smacross")
	assert.Contains(t, string(b), "Total value")
}

func TestWriteSweep(t *testing.T) {
	t.Parallel()
	_, err := WriteSweep(nil, "x", "")
	assert.ErrorIs(t, err, errNoTables)

	defined := statistics.Metric{Value: decimal.NewFromFloat(-0.25), Defined: true}
	undefined := statistics.Metric{Reason: "zero drawdown"}
	tables := &engine.SweepTables{
		ParameterA:  config.SweepParameter{Name: "fast-period", Values: []float64{2, 3}},
		ParameterB:  config.SweepParameter{Name: "slow-period", Values: []float64{5}},
		MaxDrawdown: [][]statistics.Metric{{defined}, {defined}},
		CAGR:        [][]statistics.Metric{{defined}, {defined}},
		CAGROverMDD: [][]statistics.Metric{{undefined}, {defined}},
	}
	_, err = WriteSweep(tables, "", "")
	assert.ErrorIs(t, err, errNoOutputPath)

	written, err := WriteSweep(tables, t.TempDir(), "")
	require.NoError(t, err)
	require.Len(t, written, 3)
	assert.Equal(t, "sweep_cagr_over_mdd.csv", filepath.Base(written[2]))
	b, err := os.ReadFile(written[2])
	require.NoError(t, err)
	assert.Equal(t, "fast-period\\slow-period,5\n2,\n3,-0.25\n", string(b))
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, PrintSummary(nil, nil), libcommon.ErrNilPointer)
	var buf bytes.Buffer
	assert.ErrorIs(t, PrintSummary(&buf, nil), errNoResults)

	res := testResults(t)
	require.NoError(t, PrintSummary(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "Final equity: 1,200.00")
	assert.Contains(t, out, "Orders placed: 0, executed: 1")
	assert.Contains(t, out, "Max drawdown: -0.1")

	buf.Reset()
	res.Statistics = nil
	res.StatisticsError = "no data"
	require.NoError(t, PrintSummary(&buf, res))
	assert.Contains(t, buf.String(), "Statistics unavailable: no data")
}

func TestFormatMetric(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "undefined", formatMetric(statistics.Metric{}))
	assert.Equal(t, "undefined (zero drawdown)", formatMetric(statistics.Metric{Reason: "zero drawdown"}))
	assert.Equal(t, "1.2346", formatMetric(statistics.Metric{Value: decimal.NewFromFloat(1.23456), Defined: true}))
}

func TestCharts(t *testing.T) {
	t.Parallel()
	_, err := createEquityChart(nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)
	_, err = createUnderwaterChart(nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)
	_, err = createRealisedPNLChart(nil)
	assert.ErrorIs(t, err, libcommon.ErrNilPointer)

	res := testResults(t)
	c, err := createEquityChart(res.ResultSeries)
	require.NoError(t, err)
	require.Len(t, c.Data, 2)
	assert.Equal(t, 1200.0, c.Data[0].LinePlots[3].Value)
	assert.Equal(t, res.ResultSeries[3].Date.UnixMilli(), c.Data[0].LinePlots[3].UnixMilli)

	c, err = createUnderwaterChart(res.Statistics.Underwater)
	require.NoError(t, err)
	require.Len(t, c.Data, 1)
	assert.InDelta(t, -10.0, c.Data[0].LinePlots[2].Value, 1e-9)

	c, err = createRealisedPNLChart(res.AccountHistory)
	require.NoError(t, err)
	assert.Len(t, c.Data[0].LinePlots, 4)
}

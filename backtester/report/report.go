// Package report writes run and sweep outputs to disk and the console
package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/engine"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/statistics"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/common/file"
	"github.com/thrasher-corp/barsim/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed tpl.gohtml
var htmlTemplate string

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
		"json": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			return template.JS(b), err //nolint:gosec // marshalled chart data only
		},
		"date": func(v any) string {
			if t, ok := v.(interface{ Format(string) string }); ok {
				return t.Format(libcommon.DateFormat)
			}
			return fmt.Sprint(v)
		},
		"metric": formatMetric,
	}).Parse(htmlTemplate))
)

// WriteResults writes the JSON, CSV and HTML outputs enabled in settings
// and returns the paths written
func WriteResults(res *engine.Results, settings *config.OutputSettings) ([]string, error) {
	if res == nil {
		return nil, errNoResults
	}
	if settings == nil {
		return nil, fmt.Errorf("%w output settings", libcommon.ErrNilPointer)
	}
	if !settings.WriteJSON && !settings.WriteCSV && !settings.WriteHTML {
		return nil, nil
	}
	if settings.OutputPath == "" {
		return nil, errNoOutputPath
	}
	name := runName(res)
	var written []string
	if settings.WriteJSON {
		path, err := outputFile(settings.OutputPath, name, "json")
		if err != nil {
			return written, err
		}
		b, err := json.MarshalIndent(res, "", " ")
		if err != nil {
			return written, err
		}
		if err = file.Write(path, b); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if settings.WriteCSV {
		path, err := outputFile(settings.OutputPath, name, "csv")
		if err != nil {
			return written, err
		}
		if err = file.WriteAsCSV(path, resultRecords(res)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if settings.WriteHTML {
		path, err := outputFile(settings.OutputPath, name, "html")
		if err != nil {
			return written, err
		}
		if err = writeHTML(path, res); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	for i := range written {
		log.Infof(common.SubLoggers[common.Report], "wrote %v", written[i])
	}
	return written, nil
}

func runName(res *engine.Results) string {
	name := res.Nickname
	if name == "" {
		name = res.Strategy
	}
	return strings.ReplaceAll(name, "-", "_") + "_" + strings.ReplaceAll(res.ID.String(), "-", "")
}

func outputFile(dir, name, extension string) (string, error) {
	fileName, err := common.GenerateFileName(name, extension)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// resultRecords is the cash and value series as csv records
func resultRecords(res *engine.Results) [][]string {
	records := make([][]string, 0, len(res.ResultSeries)+1)
	records = append(records, []string{"date", "cash", "value"})
	for i := range res.ResultSeries {
		records = append(records, []string{
			res.ResultSeries[i].Date.Format(libcommon.DateFormat),
			res.ResultSeries[i].Cash.String(),
			res.ResultSeries[i].Value.String(),
		})
	}
	return records
}

func writeHTML(path string, res *engine.Results) error {
	d := &Data{Results: res}
	var err error
	if d.EquityChart, err = createEquityChart(res.ResultSeries); err != nil {
		return err
	}
	if d.RealisedPNLChart, err = createRealisedPNLChart(res.AccountHistory); err != nil {
		return err
	}
	if res.Statistics != nil {
		if d.UnderwaterChart, err = createUnderwaterChart(res.Statistics.Underwater); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, d); err != nil {
		return err
	}
	return file.Write(path, buf.Bytes())
}

// WriteSweep writes each sweep table as a csv grid. Rows are parameter A
// values and columns parameter B values
func WriteSweep(tables *engine.SweepTables, dir, name string) ([]string, error) {
	if tables == nil {
		return nil, errNoTables
	}
	if dir == "" {
		return nil, errNoOutputPath
	}
	if name == "" {
		name = "sweep"
	}
	outputs := []struct {
		suffix string
		table  [][]statistics.Metric
	}{
		{"max_drawdown", tables.MaxDrawdown},
		{"cagr", tables.CAGR},
		{"cagr_over_mdd", tables.CAGROverMDD},
	}
	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path, err := outputFile(dir, name+"_"+o.suffix, "csv")
		if err != nil {
			return written, err
		}
		if err = file.WriteAsCSV(path, sweepRecords(tables, o.table)); err != nil {
			return written, err
		}
		log.Infof(common.SubLoggers[common.Report], "wrote %v", path)
		written = append(written, path)
	}
	return written, nil
}

// sweepRecords renders a table with a header row of parameter B values and
// a leading column of parameter A values. Undefined cells are left empty
func sweepRecords(tables *engine.SweepTables, table [][]statistics.Metric) [][]string {
	header := make([]string, 0, len(tables.ParameterB.Values)+1)
	header = append(header, tables.ParameterA.Name+`\`+tables.ParameterB.Name)
	for _, v := range tables.ParameterB.Values {
		header = append(header, strconv.FormatFloat(v, 'f', -1, 64))
	}
	records := [][]string{header}
	for i, a := range tables.ParameterA.Values {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(a, 'f', -1, 64))
		for j := range tables.ParameterB.Values {
			var cell string
			if i < len(table) && j < len(table[i]) && table[i][j].Defined {
				cell = table[i][j].Value.String()
			}
			row = append(row, cell)
		}
		records = append(records, row)
	}
	return records
}

// PrintSummary writes a human readable summary of a run to w
func PrintSummary(w io.Writer, res *engine.Results) error {
	if w == nil {
		return fmt.Errorf("%w writer", libcommon.ErrNilPointer)
	}
	if res == nil {
		return errNoResults
	}
	p := message.NewPrinter(language.English)
	initial := res.Initial.Equity.InexactFloat64()
	var final float64
	if len(res.ResultSeries) > 0 {
		final = res.ResultSeries[len(res.ResultSeries)-1].Value.InexactFloat64()
	}
	lines := []string{
		p.Sprintf("%s------------------Summary-----------------------------%s", common.CMDColours.H1, common.CMDColours.Default),
		p.Sprintf("Run: %v", res.ID),
		p.Sprintf("Strategy: %v", res.Strategy),
		p.Sprintf("Period: %v to %v", res.StrategyStart.Format(libcommon.DateFormat), res.StrategyEnd.Format(libcommon.DateFormat)),
		p.Sprintf("Initial equity: %.2f", initial),
		p.Sprintf("Final equity: %.2f", final),
		p.Sprintf("Realised PNL: %.2f", res.RealisedPNL.InexactFloat64()),
		p.Sprintf("Orders placed: %d, executed: %d, dropped: %d, pending: %d",
			len(res.PendingOrderLog), len(res.OrderLog), len(res.DroppedOrders), len(res.StillPending)),
	}
	if res.Statistics != nil {
		lines = append(lines,
			p.Sprintf("Max drawdown: %s", formatMetric(statistics.Metric{Value: res.Statistics.MaxDrawdown, Defined: true})),
			p.Sprintf("CAGR: %s", formatMetric(statistics.Metric{Value: res.Statistics.CAGR, Defined: true})),
			p.Sprintf("CAGR/MDD: %s", formatMetric(res.Statistics.CAGROverMDD)),
		)
	} else {
		lines = append(lines, p.Sprintf("%sStatistics unavailable: %v%s", common.CMDColours.Error, res.StatisticsError, common.CMDColours.Default))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func formatMetric(m statistics.Metric) string {
	if !m.Defined {
		if m.Reason == "" {
			return "undefined"
		}
		return "undefined (" + m.Reason + ")"
	}
	return m.Value.Round(4).String()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/config"
	"github.com/thrasher-corp/barsim/backtester/data/csv"
	datadb "github.com/thrasher-corp/barsim/backtester/data/database"
	"github.com/thrasher-corp/barsim/backtester/engine"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/barsim/backtester/report"
	"github.com/thrasher-corp/barsim/database"
	"github.com/thrasher-corp/barsim/log"
	"github.com/thrasher-corp/barsim/signaler"
	"github.com/urfave/cli/v2"
)

const verboseLevels = "INFO|WARN|DEBUG|ERROR"

var errNoSweepSettings = errors.New("config has no sweep-settings")

var (
	configPath   string
	outputPath   string
	verbose      bool
	colourOutput bool
)

func main() {
	app := cli.NewApp()
	app.Name = "barsim"
	app.Usage = "bar stepwise strategy backtester"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "enables debug logging for every sub logger",
			Destination: &verbose,
		},
		&cli.BoolFlag{
			Name:        "colouroutput",
			Value:       true,
			Usage:       "if enabled, will print in colours",
			Destination: &colourOutput,
		},
	}
	configFlag := &cli.StringFlag{
		Name:        "configpath",
		Aliases:     []string{"c"},
		Value:       filepath.Join("config", "examples", "smacross.json"),
		Usage:       "the config containing strategy, data and output settings",
		Destination: &configPath,
	}
	outputFlag := &cli.StringFlag{
		Name:        "outputpath",
		Aliases:     []string{"o"},
		Usage:       "overrides the config output-path",
		Destination: &outputPath,
	}
	app.Before = setupLogger
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "runs a single backtest from a config",
			Flags:  []cli.Flag{configFlag, outputFlag},
			Action: runBacktest,
		},
		{
			Name:   "sweep",
			Usage:  "runs the config strategy across its sweep-settings parameter grid",
			Flags:  []cli.Flag{configFlag, outputFlag},
			Action: runSweep,
		},
		{
			Name:   "strategies",
			Usage:  "lists all available strategies",
			Action: listStrategies,
		},
		{
			Name:  "import",
			Usage: "stores a csv of daily bars in a database table",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "csv", Usage: "path to a date,symbol,open,high,low,close,volume csv", Required: true},
				&cli.StringFlag{Name: "driver", Value: database.DBSQLite3, Usage: "sqlite3 or postgres"},
				&cli.StringFlag{Name: "database", Value: "barsim.db", Usage: "sqlite file name or postgres database"},
				&cli.StringFlag{Name: "datapath", Value: ".", Usage: "directory holding the sqlite file"},
				&cli.StringFlag{Name: "host", Value: "localhost"},
				&cli.UintFlag{Name: "port", Value: 5432},
				&cli.StringFlag{Name: "username"},
				&cli.StringFlag{Name: "password"},
				&cli.StringFlag{Name: "sslmode", Value: "disable"},
				&cli.StringFlag{Name: "table", Value: "bars"},
			},
			Action: importBars,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signaler.WaitForInterrupt()
		log.Warnln(log.Global, "interrupt received, stopping")
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(_ *cli.Context) error {
	if !colourOutput {
		common.PurgeColours()
	}
	logCfg := log.GenDefaultSettings()
	if verbose {
		logCfg.Level = verboseLevels
	}
	if err := log.SetupGlobalLogger(logCfg); err != nil {
		return err
	}
	return common.RegisterBacktesterSubLoggers()
}

// loadConfig reads the config and applies any log settings it carries
func loadConfig() (*config.Config, error) {
	cfg, err := config.ReadConfigFromFile(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.LogSettings != nil {
		if verbose {
			cfg.LogSettings.Level = verboseLevels
		}
		if err = log.SetupGlobalLogger(cfg.LogSettings); err != nil {
			return nil, err
		}
	}
	if outputPath != "" {
		cfg.OutputSettings.OutputPath = outputPath
	}
	return cfg, nil
}

func runBacktest(c *cli.Context) error {
	fmt.Println(common.Logo())
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.PrintSetting()
	holder, err := engine.LoadData(c.Context, cfg)
	if err != nil {
		return err
	}
	bt, err := engine.NewFromConfig(cfg, holder)
	if err != nil {
		return err
	}
	runs := engine.SetupRunManager()
	if err = runs.AddRun(bt); err != nil {
		return err
	}
	id := bt.MetaData.ID
	defer func() {
		if clearErr := runs.ClearRun(id); clearErr != nil {
			log.Errorln(common.SubLoggers[common.Engine], clearErr)
		}
	}()
	if err = runs.StartRun(c.Context, id); err != nil {
		return err
	}
	res, err := runs.GetResults(id)
	if err != nil {
		return err
	}
	if err = report.PrintSummary(os.Stdout, res); err != nil {
		return err
	}
	_, err = report.WriteResults(res, &cfg.OutputSettings)
	return err
}

func runSweep(c *cli.Context) error {
	fmt.Println(common.Logo())
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.SweepSettings == nil {
		return errNoSweepSettings
	}
	cfg.PrintSetting()
	holder, err := engine.LoadData(c.Context, cfg)
	if err != nil {
		return err
	}
	tables, err := engine.Sweep(c.Context, &engine.SweepParams{
		Config:     cfg,
		Provider:   holder,
		ParameterA: cfg.SweepSettings.ParameterA,
		ParameterB: cfg.SweepSettings.ParameterB,
		Workers:    cfg.SweepSettings.Workers,
	})
	if err != nil {
		return err
	}
	printSweep(tables)
	if cfg.OutputSettings.OutputPath == "" {
		return nil
	}
	name := cfg.Nickname
	if name == "" {
		name = cfg.StrategySettings.Name
	}
	_, err = report.WriteSweep(tables, cfg.OutputSettings.OutputPath, strings.ReplaceAll(name, "-", "_")+"_sweep")
	return err
}

func printSweep(tables *engine.SweepTables) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%v\t%v\tMDD\tCAGR\tCAGR/MDD\n", tables.ParameterA.Name, tables.ParameterB.Name)
	for i, a := range tables.ParameterA.Values {
		for j, b := range tables.ParameterB.Values {
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", a, b,
				cell(tables.MaxDrawdown[i][j].Value.StringFixed(4), tables.MaxDrawdown[i][j].Defined),
				cell(tables.CAGR[i][j].Value.StringFixed(4), tables.CAGR[i][j].Defined),
				cell(tables.CAGROverMDD[i][j].Value.StringFixed(4), tables.CAGROverMDD[i][j].Defined))
		}
	}
	if err := w.Flush(); err != nil {
		log.Errorln(common.SubLoggers[common.Report], err)
	}
}

func cell(v string, defined bool) string {
	if !defined {
		return "undefined"
	}
	return v
}

func listStrategies(_ *cli.Context) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	strats := strategies.GetStrategies()
	for i := range strats {
		fmt.Fprintf(w, "%v\t%v\n", strats[i].Name(), strats[i].Description())
	}
	return w.Flush()
}

func importBars(c *cli.Context) error {
	bars, err := csv.LoadData(c.String("csv"))
	if err != nil {
		return err
	}
	dbCfg := &database.Config{
		Enabled: true,
		Verbose: verbose,
		Driver:  c.String("driver"),
		ConnectionDetails: database.ConnectionDetails{
			Host:     c.String("host"),
			Port:     uint16(c.Uint("port")),
			Username: c.String("username"),
			Password: c.String("password"),
			Database: c.String("database"),
			SSLMode:  c.String("sslmode"),
		},
	}
	db, err := datadb.Connect(dbCfg, c.String("datapath"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.CloseConnection(); closeErr != nil {
			log.Errorln(common.SubLoggers[common.Data], closeErr)
		}
	}()
	if err = datadb.StoreData(c.Context, db, c.String("table"), bars); err != nil {
		return err
	}
	log.Infof(common.SubLoggers[common.Data], "stored %d symbols in table %v", len(bars), c.String("table"))
	return nil
}

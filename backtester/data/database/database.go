package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/database"
	"github.com/thrasher-corp/barsim/database/drivers/postgres"
	sqlite "github.com/thrasher-corp/barsim/database/drivers/sqlite3"
	"github.com/thrasher-corp/barsim/log"
)

var errEmptyTable = errors.New("table name is empty")

// Connect opens a connection using the configured driver
func Connect(cfg *database.Config, dataPath string) (*database.Instance, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w database config", libcommon.ErrNilPointer)
	}
	switch strings.ToLower(cfg.Driver) {
	case database.DBSQLite, database.DBSQLite3:
		return sqlite.Connect(cfg, dataPath)
	case database.DBPostgreSQL:
		return postgres.Connect(cfg)
	default:
		return nil, fmt.Errorf("%w '%v'", database.ErrUnsupportedDriver, cfg.Driver)
	}
}

// LoadData connects, reads every bar in the table and disconnects
func LoadData(ctx context.Context, cfg *database.Config, dataPath, table string) (map[string][]data.Bar, error) {
	db, err := Connect(cfg, dataPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := db.CloseConnection(); closeErr != nil {
			log.Errorln(common.SubLoggers[common.Data], closeErr)
		}
	}()
	return LoadFromInstance(ctx, db, table)
}

// LoadFromInstance reads every bar in the table from an open connection
func LoadFromInstance(ctx context.Context, db *database.Instance, table string) (map[string][]data.Bar, error) {
	if table == "" {
		return nil, errEmptyTable
	}
	rows, err := db.SelectBars(ctx, table)
	if err != nil {
		return nil, err
	}
	resp := make(map[string][]data.Bar)
	for i := range rows {
		b, err := rowToBar(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("table %v row %d %w", table, i, err)
		}
		resp[rows[i].Symbol] = append(resp[rows[i].Symbol], b)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w in table %v", data.ErrNoData, table)
	}
	log.Infof(common.SubLoggers[common.Data], "loaded %d bars for %d symbols from table %v", len(rows), len(resp), table)
	return resp, nil
}

// StoreData creates the table if needed and inserts every bar
func StoreData(ctx context.Context, db *database.Instance, table string, bars map[string][]data.Bar) error {
	if table == "" {
		return errEmptyTable
	}
	if len(bars) == 0 {
		return data.ErrNoData
	}
	if err := db.CreateBarTable(ctx, table); err != nil {
		return err
	}
	symbols := make([]string, 0, len(bars))
	for s := range bars {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	var rows []database.BarRow
	for _, s := range symbols {
		for i := range bars[s] {
			b := &bars[s][i]
			rows = append(rows, database.BarRow{
				Date:   data.NormaliseDate(b.Date).Format(libcommon.DateFormat),
				Symbol: s,
				Open:   b.Open.String(),
				High:   b.High.String(),
				Low:    b.Low.String(),
				Close:  b.Close.String(),
				Volume: b.Volume.String(),
			})
		}
	}
	return db.InsertBars(ctx, table, rows)
}

func rowToBar(r *database.BarRow) (data.Bar, error) {
	var b data.Bar
	d, err := time.Parse(libcommon.DateFormat, r.Date)
	if err != nil {
		return b, err
	}
	b.Date = d
	values := []string{r.Open, r.High, r.Low, r.Close, r.Volume}
	fields := []*decimal.Decimal{&b.Open, &b.High, &b.Low, &b.Close, &b.Volume}
	for i := range fields {
		*fields[i], err = decimal.NewFromString(values[i])
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thrasher-corp/barsim/log"
)

// DatabaseLogger is the sub logger for database connections and queries
var DatabaseLogger *log.SubLogger

func init() {
	var err error
	DatabaseLogger, err = log.NewSubLogger("DATABASE")
	if err != nil {
		panic(err)
	}
}

// SetConfig safely sets the instance's config with some basic locks and checks
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return errNilInstance
	}
	if cfg == nil {
		return errNilConfig
	}
	i.m.Lock()
	i.config = cfg
	i.m.Unlock()
	return nil
}

// SetSQLiteConnection safely sets the instance's connection to use SQLite
func (i *Instance) SetSQLiteConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(1)
	return nil
}

// SetPostgresConnection safely sets the instance's connection to use Postgres
func (i *Instance) SetPostgresConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	if err := con.Ping(); err != nil {
		return fmt.Errorf("%w %v", ErrFailedToConnect, err)
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(2)
	i.SQL.SetMaxIdleConns(1)
	i.SQL.SetConnMaxLifetime(time.Hour)
	return nil
}

// SetConnected safely sets the instance's connected status
func (i *Instance) SetConnected(v bool) {
	i.m.Lock()
	i.connected = v
	i.m.Unlock()
}

// CloseConnection safely disconnects the instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return errNilSQL
	}
	i.connected = false
	return i.SQL.Close()
}

// IsConnected safely checks the SQL connection status
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// GetConfig safely returns a copy of the config
func (i *Instance) GetConfig() *Config {
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return nil
	}
	cpy := *i.config
	return &cpy
}

// Ping pings the database
func (i *Instance) Ping() error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.Ping()
}

// GetSQL returns the connection if connected
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if !i.connected || i.SQL == nil {
		return nil, errNilSQL
	}
	return i.SQL, nil
}

// IsPostgres reports whether the configured driver is postgres
func (i *Instance) IsPostgres() bool {
	cfg := i.GetConfig()
	return cfg != nil && cfg.Driver == DBPostgreSQL
}

// CreateBarTable creates the named bar table if it is missing
func (i *Instance) CreateBarTable(ctx context.Context, table string) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	query := fmt.Sprintf(barSchema, quoteIdentifier(table))
	if i.verbose() {
		log.Debugf(DatabaseLogger, "SQL: %s", query)
	}
	_, err = db.ExecContext(ctx, query)
	return err
}

// InsertBars stores rows in the named bar table within a single transaction
func (i *Instance) InsertBars(ctx context.Context, table string, rows []BarRow) error {
	if len(rows) == 0 {
		return errNoRows
	}
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(insertBar, quoteIdentifier(table), i.placeholders(7))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return rollback(tx, err)
	}
	defer stmt.Close()
	for x := range rows {
		_, err = stmt.ExecContext(ctx,
			rows[x].Date,
			rows[x].Symbol,
			rows[x].Open,
			rows[x].High,
			rows[x].Low,
			rows[x].Close,
			rows[x].Volume)
		if err != nil {
			return rollback(tx, err)
		}
	}
	return tx.Commit()
}

// SelectBars returns every row of the named table ordered by date then symbol
func (i *Instance) SelectBars(ctx context.Context, table string) ([]BarRow, error) {
	db, err := i.GetSQL()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(selectBars, quoteIdentifier(table))
	if i.verbose() {
		log.Debugf(DatabaseLogger, "SQL: %s", query)
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []BarRow
	for rows.Next() {
		var r BarRow
		if err = rows.Scan(&r.Date, &r.Symbol, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, err
		}
		resp = append(resp, r)
	}
	return resp, rows.Err()
}

func (i *Instance) placeholders(n int) string {
	var s string
	for x := 1; x <= n; x++ {
		if x > 1 {
			s += ", "
		}
		if i.IsPostgres() {
			s += fmt.Sprintf("$%d", x)
		} else {
			s += "?"
		}
	}
	return s
}

func rollback(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		return fmt.Errorf("%w rollback failed: %v", err, rbErr)
	}
	return err
}

func (i *Instance) verbose() bool {
	cfg := i.GetConfig()
	return cfg != nil && cfg.Verbose
}

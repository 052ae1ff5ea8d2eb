package sqlite

import (
	"database/sql"
	"path/filepath"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/database"
)

// Connect opens a connection to sqlite database and returns the connected instance
func Connect(cfg *database.Config, dataPath string) (*database.Instance, error) {
	if cfg == nil {
		return nil, database.ErrNoDatabaseProvided
	}
	if cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	databaseFullLocation := cfg.Database
	if dataPath != "" && !filepath.IsAbs(cfg.Database) {
		databaseFullLocation = filepath.Join(dataPath, cfg.Database)
	}
	dbConn, err := sql.Open("sqlite3", databaseFullLocation)
	if err != nil {
		return nil, err
	}
	if err = dbConn.Ping(); err != nil {
		return nil, libcommon.AppendError(err, dbConn.Close())
	}
	i := &database.Instance{DataPath: dataPath}
	if err = i.SetConfig(cfg); err != nil {
		return nil, err
	}
	if err = i.SetSQLiteConnection(dbConn); err != nil {
		return nil, err
	}
	i.SetConnected(true)
	return i, nil
}

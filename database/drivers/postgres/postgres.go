package postgres

import (
	"database/sql"
	"fmt"

	// import postgres driver
	_ "github.com/lib/pq"
	"github.com/thrasher-corp/barsim/database"
)

// Connect opens a connection to a postgres database and returns the connected instance
func Connect(cfg *database.Config) (*database.Instance, error) {
	if cfg == nil || cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	configDSN := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode)

	db, err := sql.Open(database.DBPostgreSQL, configDSN)
	if err != nil {
		return nil, err
	}
	i := &database.Instance{}
	if err = i.SetConfig(cfg); err != nil {
		return nil, err
	}
	if err = i.SetPostgresConnection(db); err != nil {
		return nil, err
	}
	i.SetConnected(true)
	return i, nil
}

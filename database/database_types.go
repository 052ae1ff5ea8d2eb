package database

import (
	"database/sql"
	"errors"
	"sync"
)

// Supported database drivers
const (
	DBSQLite     = "sqlite"
	DBSQLite3    = "sqlite3"
	DBPostgreSQL = "postgres"
)

var (
	// ErrNoDatabaseProvided is returned when no database name is configured
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrDatabaseSupportDisabled is returned when the config has database support disabled
	ErrDatabaseSupportDisabled = errors.New("database support disabled")
	// ErrFailedToConnect is returned when a connection cannot be established
	ErrFailedToConnect = errors.New("database failed to connect")
	// ErrUnsupportedDriver is returned for any driver other than sqlite3 or postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("received nil config")
	errNilSQL      = errors.New("database SQL connection is nil")
	errNoRows      = errors.New("no rows to insert")
)

// Instance holds the database connection and its config
type Instance struct {
	SQL       *sql.DB
	DataPath  string
	config    *Config
	connected bool
	m         sync.RWMutex
}

// Config holds all database configurable options including enable/disabled & DSN settings
type Config struct {
	Enabled bool   `json:"enabled"`
	Verbose bool   `json:"verbose"`
	Driver  string `json:"driver"`
	ConnectionDetails
}

// ConnectionDetails holds DSN information
type ConnectionDetails struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// BarRow is a single stored daily bar
type BarRow struct {
	Date   string
	Symbol string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
	defaultLevels   = "INFO|DEBUG|WARN|ERROR"
)

var (
	// mu guards logger and every registered sub logger's levels and output
	mu     = &sync.RWMutex{}
	logger = newLogger(nil)
	// extraWriters receive every staged log line regardless of sub logger
	extraWriters = &multiWriter{}
)

// Config is the log-settings section of a backtester config. The embedded
// SubLoggerConfig sets the level and output of every sub logger which is not
// listed in SubLoggers
type Config struct {
	Enabled *bool `json:"enabled"`
	SubLoggerConfig
	AdvancedSettings advancedSettings  `json:"advanced-settings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty"`
}

type advancedSettings struct {
	ShowLogSystemName *bool   `json:"show-log-system-name"`
	Spacer            string  `json:"spacer"`
	TimeStampFormat   string  `json:"timestamp-format"`
	Headers           headers `json:"headers"`
}

type headers struct {
	Info  string `json:"info"`
	Warn  string `json:"warn"`
	Debug string `json:"debug"`
	Error string `json:"error"`
}

// SubLoggerConfig selects levels and outputs, both pipe separated, for one
// named sub logger
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty"`
	Level  string `json:"level"`
	Output string `json:"output"`
}

// Logger is the resolved line format shared by all sub loggers
type Logger struct {
	ShowLogSystemName bool
	TimestampFormat   string
	Spacer            string
	InfoHeader        string
	DebugHeader       string
	WarnHeader        string
	ErrorHeader       string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

// multiWriter fans a line out to every writer, stopping at the first failure
type multiWriter struct {
	mu      sync.Mutex
	writers []io.Writer
}

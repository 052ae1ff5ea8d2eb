package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errEmptyLoggerName = errors.New("cannot have empty logger name")
	// ErrSubLoggerAlreadyRegistered is returned when a sub logger name is reused
	ErrSubLoggerAlreadyRegistered = errors.New("sub logger already registered")
)

// NewSubLogger allows for a new sub logger to be registered.
func NewSubLogger(name string) (*SubLogger, error) {
	if name == "" {
		return nil, errEmptyLoggerName
	}
	name = strings.ToUpper(name)
	mu.RLock()
	if _, ok := subLoggers[name]; ok {
		mu.RUnlock()
		return nil, fmt.Errorf("'%v' %w", name, ErrSubLoggerAlreadyRegistered)
	}
	mu.RUnlock()
	return registerNewSubLogger(name), nil
}

// SetOutput overrides the default output with a new writer
func (sl *SubLogger) SetOutput(o io.Writer) {
	mu.Lock()
	sl.output = o
	mu.Unlock()
}

// SetLevels overrides the default levels with new levels; levelception
func (sl *SubLogger) SetLevels(newLevels Levels) {
	mu.Lock()
	sl.levels = newLevels
	mu.Unlock()
}

// GetLevels returns current functional log levels
func (sl *SubLogger) GetLevels() Levels {
	mu.RLock()
	defer mu.RUnlock()
	return sl.levels
}

// Name returns the registered name of the sub logger
func (sl *SubLogger) Name() string {
	return sl.name
}

func registerNewSubLogger(name string) *SubLogger {
	mu.Lock()
	defer mu.Unlock()
	if sl, ok := subLoggers[name]; ok {
		return sl
	}
	sl := &SubLogger{
		name:   name,
		output: os.Stdout,
		levels: splitLevel(defaultLevels),
	}
	subLoggers[name] = sl
	return sl
}

func init() {
	Global = registerNewSubLogger("LOG")
}

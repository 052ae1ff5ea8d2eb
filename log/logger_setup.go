package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errConfigNil             = errors.New("log config is nil")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(outputWriters[x]) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "discard", "":
			writer = io.Discard
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() *Config {
	enabled := true
	showName := true
	return &Config{
		Enabled: &enabled,
		SubLoggerConfig: SubLoggerConfig{
			Level:  defaultLevels,
			Output: "console",
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: &showName,
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c *Config) Logger {
	if c == nil {
		c = GenDefaultSettings()
	}
	showName := c.AdvancedSettings.ShowLogSystemName != nil && *c.AdvancedSettings.ShowLogSystemName
	return Logger{
		ShowLogSystemName: showName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
	}
}

// SetupGlobalLogger applies the config to the logger and every registered sub
// logger. Per-sublogger settings override the global level and output.
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errConfigNil
	}
	globalOutput, err := getWriters(&c.SubLoggerConfig)
	if err != nil {
		return err
	}
	globalLevels := splitLevel(c.Level)
	if c.Enabled != nil && !*c.Enabled {
		globalLevels = Levels{}
	}

	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(c)
	for _, sl := range subLoggers {
		sl.levels = globalLevels
		sl.output = globalOutput
	}
	for x := range c.SubLoggers {
		sl, ok := subLoggers[strings.ToUpper(c.SubLoggers[x].Name)]
		if !ok {
			return fmt.Errorf("%w: %v", errSubLoggerNotFound, c.SubLoggers[x].Name)
		}
		output, err := getWriters(&c.SubLoggers[x])
		if err != nil {
			return err
		}
		sl.output = output
		sl.levels = splitLevel(c.SubLoggers[x].Level)
	}
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(enabledLevels[x]) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

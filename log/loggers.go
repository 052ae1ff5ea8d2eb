package log

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to StageLogEvent
func Info(sl *SubLogger, data string) {
	sl.stage(levelInfo, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface sends to StageLogEvent
func Infoln(sl *SubLogger, v ...any) {
	sl.stage(levelInfo, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Infof(sl *SubLogger, data string, v ...any) {
	sl.stage(levelInfo, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to StageLogEvent
func Debug(sl *SubLogger, data string) {
	sl.stage(levelDebug, func() string { return data })
}

// Debugln takes a pointer subLogger struct, string and interface sends to StageLogEvent
func Debugln(sl *SubLogger, v ...any) {
	sl.stage(levelDebug, func() string { return fmt.Sprint(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Debugf(sl *SubLogger, data string, v ...any) {
	sl.stage(levelDebug, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to StageLogEvent
func Warn(sl *SubLogger, data string) {
	sl.stage(levelWarn, func() string { return data })
}

// Warnln takes a pointer subLogger struct & interface formats and sends to StageLogEvent
func Warnln(sl *SubLogger, v ...any) {
	sl.stage(levelWarn, func() string { return fmt.Sprint(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Warnf(sl *SubLogger, data string, v ...any) {
	sl.stage(levelWarn, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & interface formats and sends to StageLogEvent
func Error(sl *SubLogger, data string) {
	sl.stage(levelError, func() string { return data })
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to StageLogEvent
func Errorln(sl *SubLogger, v ...any) {
	sl.stage(levelError, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Errorf(sl *SubLogger, data string, v ...any) {
	sl.stage(levelError, func() string { return fmt.Sprintf(data, v...) })
}

type level uint8

const (
	levelInfo level = iota
	levelDebug
	levelWarn
	levelError
)

func (l level) enabled(levels Levels) bool {
	switch l {
	case levelInfo:
		return levels.Info
	case levelDebug:
		return levels.Debug
	case levelWarn:
		return levels.Warn
	case levelError:
		return levels.Error
	}
	return false
}

func (l level) header(lg *Logger) string {
	switch l {
	case levelInfo:
		return lg.InfoHeader
	case levelDebug:
		return lg.DebugHeader
	case levelWarn:
		return lg.WarnHeader
	default:
		return lg.ErrorHeader
	}
}

// stage formats and writes a log line if the level is enabled. The data func
// is only evaluated when something will be written.
func (sl *SubLogger) stage(l level, data func() string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	if !l.enabled(sl.levels) {
		return
	}
	line := logger.format(l.header(&logger), sl.name, data())
	if sl.output != nil {
		if _, err := io.WriteString(sl.output, line); err != nil {
			displayError(err)
		}
	}
	if _, err := io.WriteString(extraWriters, line); err != nil {
		displayError(err)
	}
}

func (lg *Logger) format(header, name, data string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(lg.Spacer)
	if lg.TimestampFormat != "" {
		b.WriteString(time.Now().Format(lg.TimestampFormat))
		b.WriteString(lg.Spacer)
	}
	if lg.ShowLogSystemName {
		b.WriteString(name)
		b.WriteString(lg.Spacer)
	}
	b.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

func displayError(err error) {
	if err != nil {
		fmt.Printf("Logger write error: %v\n", err)
	}
}

package log

import "io"

var (
	subLoggers = map[string]*SubLogger{}

	// Global is the sub logger for output which belongs to no component
	Global *SubLogger
)

// SubLogger is a named log stream with its own levels and output. A nil
// SubLogger discards everything
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

package writer

import (
	"errors"
	"strings"
	"sync"
)

var errIDNotSet = errors.New("id not set")

// Writer stores log lines emitted while a run is active so they can be
// reported alongside the run's results. It is attached to the logger with
// log.AddWriter
type Writer struct {
	runID    string
	logs     []string
	isActive bool
	m        sync.Mutex
}

// SetupWriter returns an inactive writer for the run
func SetupWriter(id string) (*Writer, error) {
	if id == "" {
		return nil, errIDNotSet
	}
	return &Writer{runID: id}, nil
}

// Activate starts capturing logs
func (w *Writer) Activate() {
	w.m.Lock()
	w.isActive = true
	w.m.Unlock()
}

// DeActivate prevents any new logs being written to the writer
func (w *Writer) DeActivate() {
	w.m.Lock()
	w.isActive = false
	w.m.Unlock()
}

// IsActive returns whether logs are being captured
func (w *Writer) IsActive() bool {
	w.m.Lock()
	defer w.m.Unlock()
	return w.isActive
}

// ID returns the run the writer belongs to
func (w *Writer) ID() string {
	return w.runID
}

// Write stores a copy of p if the writer is active
func (w *Writer) Write(p []byte) (n int, err error) {
	w.m.Lock()
	defer w.m.Unlock()
	if !w.isActive || len(p) == 0 {
		return len(p), nil
	}
	w.logs = append(w.logs, string(p))
	return len(p), nil
}

// String returns the accumulated logs
func (w *Writer) String() string {
	w.m.Lock()
	defer w.m.Unlock()
	var sb strings.Builder
	for i := range w.logs {
		sb.WriteString(w.logs[i])
	}
	return sb.String()
}

// Lines returns how many writes were captured
func (w *Writer) Lines() int {
	w.m.Lock()
	defer w.m.Unlock()
	return len(w.logs)
}

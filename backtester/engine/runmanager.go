package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/writer"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// SetupRunManager creates a run manager to allow the backtester to manage multiple strategies
func SetupRunManager() *RunManager {
	return &RunManager{}
}

// AddRun adds a run to the manager and attaches a log writer to it
func (r *RunManager) AddRun(b *BackTest) error {
	if r == nil {
		return fmt.Errorf("%w RunManager", libcommon.ErrNilPointer)
	}
	if b == nil {
		return fmt.Errorf("%w BackTest", libcommon.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.runs {
		if r.runs[i].MetaData.ID == b.MetaData.ID {
			return fmt.Errorf("%w %s %s", errRunAlreadyMonitored, b.MetaData.ID, b.MetaData.Strategy)
		}
	}
	w, err := writer.SetupWriter(b.MetaData.ID.String())
	if err != nil {
		return err
	}
	if err = log.AddWriter(w); err != nil {
		return err
	}
	b.logHolder = w
	r.runs = append(r.runs, b)
	return nil
}

// List details all runs
func (r *RunManager) List() ([]*RunSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", libcommon.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	resp := make([]*RunSummary, len(r.runs))
	for i := range r.runs {
		resp[i] = r.runs[i].GenerateSummary()
	}
	return resp, nil
}

// GetSummary returns details about a run
func (r *RunManager) GetSummary(id uuid.UUID) (*RunSummary, error) {
	b, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return b.GenerateSummary(), nil
}

// GetResults returns the outputs of a completed run
func (r *RunManager) GetResults(id uuid.UUID) (*Results, error) {
	b, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return b.Results()
}

// StartRun executes a run synchronously
func (r *RunManager) StartRun(ctx context.Context, id uuid.UUID) error {
	b, err := r.find(id)
	if err != nil {
		return err
	}
	switch {
	case b.IsRunning():
		return fmt.Errorf("%w %v", errRunIsRunning, id)
	case b.HasRan():
		return fmt.Errorf("%w %v", errAlreadyRan, id)
	}
	return b.Run(ctx)
}

// StartAllRuns executes every run that has not yet ran, one after another,
// and returns their summaries. Run failures are joined
func (r *RunManager) StartAllRuns(ctx context.Context) ([]*RunSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", libcommon.ErrNilPointer)
	}
	r.m.Lock()
	runs := make([]*BackTest, len(r.runs))
	copy(runs, r.runs)
	r.m.Unlock()
	var resp []*RunSummary
	var errs error
	for i := range runs {
		if runs[i].IsRunning() || runs[i].HasRan() {
			continue
		}
		if err := runs[i].Run(ctx); err != nil {
			errs = libcommon.AppendError(errs, fmt.Errorf("%v %w", runs[i].MetaData.ID, err))
		}
		resp = append(resp, runs[i].GenerateSummary())
	}
	return resp, errs
}

// StopRun cancels a running simulation
func (r *RunManager) StopRun(id uuid.UUID) error {
	b, err := r.find(id)
	if err != nil {
		return err
	}
	switch {
	case b.IsRunning():
		b.Stop()
		return nil
	case b.HasRan():
		return fmt.Errorf("%w %v", errAlreadyRan, id)
	default:
		return fmt.Errorf("%w %v", errRunHasNotRan, id)
	}
}

// ClearRun removes a run from memory
func (r *RunManager) ClearRun(id uuid.UUID) error {
	if r == nil {
		return fmt.Errorf("%w RunManager", libcommon.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.runs {
		if r.runs[i].MetaData.ID != id {
			continue
		}
		if r.runs[i].IsRunning() {
			return fmt.Errorf("%w %v, currently running. Stop it first", errCannotClear, id)
		}
		if r.runs[i].logHolder != nil {
			if err := log.RemoveWriter(r.runs[i].logHolder); err != nil && !errors.Is(err, log.ErrWriterNotFound) {
				return err
			}
		}
		r.runs = append(r.runs[:i], r.runs[i+1:]...)
		log.Debugf(common.SubLoggers[common.Engine], "cleared run %v", id)
		return nil
	}
	return fmt.Errorf("%s %w", id, errRunNotFound)
}

// ReportLogs returns the logs captured while a run executed
func (r *RunManager) ReportLogs(id uuid.UUID) (string, error) {
	b, err := r.find(id)
	if err != nil {
		return "", err
	}
	if b.logHolder == nil {
		return "", fmt.Errorf("%s %w", id, errNoLoggerSetup)
	}
	log.Debugf(common.SubLoggers[common.Engine], "run %v captured %d log lines", id, b.logHolder.Lines())
	return b.logHolder.String(), nil
}

func (r *RunManager) find(id uuid.UUID) (*BackTest, error) {
	if r == nil {
		return nil, fmt.Errorf("%w RunManager", libcommon.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.runs {
		if r.runs[i].MetaData.ID == id {
			return r.runs[i], nil
		}
	}
	return nil, fmt.Errorf("%s %w", id, errRunNotFound)
}

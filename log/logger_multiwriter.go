package log

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

var (
	// ErrWriterNotFound is returned when removing a writer which was never added
	ErrWriterNotFound      = errors.New("io.Writer not found")
	errWriterAlreadyLoaded = errors.New("io.Writer already loaded")
	errWriterIsNil         = errors.New("io.Writer is nil")
)

// MultiWriter returns a multiWriter holding the supplied writers
func MultiWriter(writers ...io.Writer) (*multiWriter, error) {
	mw := &multiWriter{}
	for x := range writers {
		if err := mw.Add(writers[x]); err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// Add registers a writer. The same writer cannot be added twice
func (mw *multiWriter) Add(w io.Writer) error {
	if w == nil {
		return errWriterIsNil
	}
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if slices.Contains(mw.writers, w) {
		return errWriterAlreadyLoaded
	}
	mw.writers = append(mw.writers, w)
	return nil
}

// Remove unregisters a writer, keeping the order of the rest
func (mw *multiWriter) Remove(w io.Writer) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	i := slices.Index(mw.writers, w)
	if i < 0 {
		return ErrWriterNotFound
	}
	mw.writers = slices.Delete(mw.writers, i, i+1)
	return nil
}

// Write holds the lock for the whole fan out so lines never interleave
func (mw *multiWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	for _, w := range mw.writers {
		n, err := w.Write(p)
		switch {
		case err != nil:
			return n, fmt.Errorf("%T %w", w, err)
		case n != len(p):
			return n, fmt.Errorf("%T %w", w, io.ErrShortWrite)
		}
	}
	return len(p), nil
}

// AddWriter attaches a writer which receives every enabled log line from
// every sub logger
func AddWriter(w io.Writer) error {
	return extraWriters.Add(w)
}

// RemoveWriter detaches a writer previously attached with AddWriter
func RemoveWriter(w io.Writer) error {
	return extraWriters.Remove(w)
}
